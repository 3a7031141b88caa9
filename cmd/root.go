package cmd

import "github.com/spf13/cobra"

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "roomtodo",
		Short:         "Collaborative room-scoped todo lists from the terminal",
		Long:          "roomtodo keeps a shared todo list per room: create or join a room by id, add and toggle todos, and watch changes from other members arrive live.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	app, err := wireApp()
	if err != nil {
		rootCmd.RunE = func(_ *cobra.Command, _ []string) error {
			return err
		}
		return rootCmd
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newRoomCmd(app),
		newAddCmd(app),
		newListCmd(app),
		newToggleCmd(app),
		newEditCmd(app),
		newRemoveCmd(app),
		newWatchCmd(app),
		newDevServerCmd(app),
	)

	return rootCmd
}
