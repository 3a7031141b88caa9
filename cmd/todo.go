package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/bnema/roomtodo/internal/domain"
	"github.com/spf13/cobra"
)

func newAddCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add <text>",
		Short: "Add a todo to the current room",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.TrimSpace(strings.Join(args, " "))
			if len(text) > domain.MaxTodoTextLength {
				return fmt.Errorf("todo text exceeds %d characters", domain.MaxTodoTextLength)
			}

			room, err := app.resolveRoom(cmd.Context())
			if err != nil {
				return err
			}
			todo, err := app.client.CreateTodo(cmd.Context(), room.ID, text)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Added %s\t%s\n", todo.ID, todo.Text)
			return nil
		},
	}
}

func newListCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the todos in the current room",
		RunE: func(cmd *cobra.Command, _ []string) error {
			room, err := app.resolveRoom(cmd.Context())
			if err != nil {
				return err
			}
			todos, err := app.client.ListTodos(cmd.Context(), room.ID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "%s (%s)\n", room.Name, room.ID)
			if len(todos) == 0 {
				_, _ = fmt.Fprintln(out, "No todos yet. Add your first one with 'roomtodo add'.")
				return nil
			}
			for _, todo := range todos {
				check := " "
				if todo.Completed {
					check = "x"
				}
				_, _ = fmt.Fprintf(out, "[%s] %s\t%s\n", check, todo.ID, todo.Text)
			}
			return nil
		},
	}
}

func newToggleCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <todo-id>",
		Short: "Toggle a todo's completion state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			room, err := app.resolveRoom(cmd.Context())
			if err != nil {
				return err
			}
			current, err := findTodo(cmd.Context(), app, room.ID, domain.TodoID(args[0]))
			if err != nil {
				return err
			}
			updated, err := app.client.UpdateTodo(cmd.Context(), room.ID, current.ID, domain.TodoUpdate{
				Text:      current.Text,
				Completed: !current.Completed,
			})
			if err != nil {
				return err
			}

			state := "open"
			if updated.Completed {
				state = "done"
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Marked %s as %s\n", updated.ID, state)
			return nil
		},
	}
}

func newEditCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "edit <todo-id> <text>",
		Short: "Replace a todo's text",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.TrimSpace(strings.Join(args[1:], " "))
			if len(text) > domain.MaxTodoTextLength {
				return fmt.Errorf("todo text exceeds %d characters", domain.MaxTodoTextLength)
			}
			if text == "" {
				return domain.ErrEmptyTodoText
			}

			room, err := app.resolveRoom(cmd.Context())
			if err != nil {
				return err
			}
			current, err := findTodo(cmd.Context(), app, room.ID, domain.TodoID(args[0]))
			if err != nil {
				return err
			}
			updated, err := app.client.UpdateTodo(cmd.Context(), room.ID, current.ID, domain.TodoUpdate{
				Text:      text,
				Completed: current.Completed,
			})
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\t%s\n", updated.ID, updated.Text)
			return nil
		},
	}
}

func newRemoveCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <todo-id>",
		Short: "Delete a todo from the current room",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			room, err := app.resolveRoom(cmd.Context())
			if err != nil {
				return err
			}
			if err := app.client.DeleteTodo(cmd.Context(), room.ID, domain.TodoID(args[0])); err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		},
	}
}

func findTodo(ctx context.Context, app *app, roomID domain.RoomID, id domain.TodoID) (domain.Todo, error) {
	todos, err := app.client.ListTodos(ctx, roomID)
	if err != nil {
		return domain.Todo{}, err
	}
	for _, todo := range todos {
		if todo.ID == id {
			return todo, nil
		}
	}
	return domain.Todo{}, domain.ErrTodoNotFound
}
