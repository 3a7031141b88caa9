package cmd

import (
	"fmt"

	"github.com/bnema/roomtodo/internal/adapters/render/live"
	"github.com/bnema/roomtodo/internal/domain"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func newWatchCmd(app *app) *cobra.Command {
	var roomFlag string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow the current room's todo list live",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			var room domain.Room
			if roomFlag != "" {
				joined, err := app.controller.JoinRoom(ctx, domain.RoomID(roomFlag))
				if err != nil {
					return err
				}
				room = joined
			} else {
				resumed, ok, err := app.controller.ResumeRoom(ctx)
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("no room joined; run 'roomtodo room join <id>' or pass --room")
				}
				room = resumed
			}
			defer app.controller.Close()

			p := tea.NewProgram(
				live.NewModel(app.controller, room),
				tea.WithContext(ctx),
				tea.WithOutput(cmd.OutOrStdout()),
			)
			app.controller.OnChange(func() {
				p.Send(live.ListChangedMsg{})
			})
			defer app.controller.OnChange(nil)

			_, err := p.Run()
			return err
		},
	}

	cmd.Flags().StringVar(&roomFlag, "room", "", "room id to watch (defaults to the joined room)")
	return cmd
}
