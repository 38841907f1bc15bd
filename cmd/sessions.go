package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ismailkaraca/kohasayim/internal/store"
)

func newSessionsCmd() *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Manage stored counting sessions",
	}
	cmd.PersistentFlags().StringVar(&dbPath, "db", defaultDBPath(), "Session database path")

	list := &cobra.Command{
		Use:   "list",
		Short: "List stored sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			sessionStore, err := store.Open(dbPath)
			if err != nil {
				return err
			}
			defer sessionStore.Close()

			sessions, err := sessionStore.List(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(sessions) == 0 {
				fmt.Fprintln(out, "No stored sessions.")
				return nil
			}
			for _, s := range sessions {
				location := s.LocationCode
				if location == "" {
					location = "-"
				}
				fmt.Fprintf(out, "%s  library=%s location=%s events=%d  %s\n",
					s.ID, s.LibraryCode, location, s.EventCount, s.Name)
			}
			return nil
		},
	}

	remove := &cobra.Command{
		Use:   "delete <session-id>",
		Short: "Delete a stored session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sessionStore, err := store.Open(dbPath)
			if err != nil {
				return err
			}
			defer sessionStore.Close()

			if err := sessionStore.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted session %s\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(list)
	cmd.AddCommand(remove)

	return cmd
}
