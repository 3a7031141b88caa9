package cmd

import (
	"fmt"
	"strings"

	"github.com/bnema/roomtodo/internal/domain"
	"github.com/spf13/cobra"
)

func newRoomCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "room",
		Short: "Create, join and leave shared rooms",
	}

	cmd.AddCommand(
		newRoomCreateCmd(app),
		newRoomJoinCmd(app),
		newRoomLeaveCmd(app),
		newRoomShowCmd(app),
	)

	return cmd
}

func newRoomCreateCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "create <name>",
		Short: "Create a new room and join it",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.TrimSpace(strings.Join(args, " "))
			if len(name) > domain.MaxRoomNameLength {
				return fmt.Errorf("room name exceeds %d characters", domain.MaxRoomNameLength)
			}

			room, err := app.client.CreateRoom(cmd.Context(), name)
			if err != nil {
				return err
			}
			if err := app.session.SetCurrentRoom(room.ID); err != nil {
				return fmt.Errorf("persist session room: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Created room %q\n", room.Name)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Share this id so others can join: %s\n", room.ID)
			return nil
		},
	}
}

func newRoomJoinCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "join <room-id>",
		Short: "Join an existing room by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := domain.RoomID(strings.TrimSpace(args[0]))

			room, err := app.client.GetRoom(cmd.Context(), id)
			if err != nil {
				return err
			}
			if err := app.session.SetCurrentRoom(room.ID); err != nil {
				return fmt.Errorf("persist session room: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Joined room %q (%s)\n", room.Name, room.ID)
			return nil
		},
	}
}

func newRoomLeaveCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "leave",
		Short: "Leave the current room",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.session.Clear(); err != nil {
				return fmt.Errorf("clear session room: %w", err)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Left the room")
			return nil
		},
	}
}

func newRoomShowCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the current room",
		RunE: func(cmd *cobra.Command, _ []string) error {
			room, err := app.resolveRoom(cmd.Context())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", room.ID, room.Name)
			return nil
		},
	}
}
