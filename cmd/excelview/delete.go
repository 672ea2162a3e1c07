package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ideamans/excelview"
)

var errNotConfirmed = errors.New("refusing to delete without confirmation: pass --yes when stdin is not a terminal")

func newDeleteCmd(a *app) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <file-id>",
		Short: "Delete a stored file and all of its rows",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fileID := args[0]
			if a.settings.UID == "" {
				return excelview.ErrAuthRequired
			}

			ctx := cmd.Context()
			engine, store, err := a.openEngine(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			file, err := store.GetFile(ctx, a.settings.UID, fileID)
			if err != nil {
				return fmt.Errorf("delete %s: %w", fileID, err)
			}

			if !yes {
				if !a.isTerminal() {
					return errNotConfirmed
				}
				ok, err := confirm(cmd, fmt.Sprintf("Delete %s (%s) and all of its rows? This cannot be undone. [y/N] ", file.FileName, fileID))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
					return nil
				}
			}

			if err := engine.Remove(ctx, a.settings.UID, fileID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s (%s)\n", file.FileName, fileID)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return storeCommand(cmd)
}

// confirm asks prompt on stderr and reads a yes/no answer from stdin
func confirm(cmd *cobra.Command, prompt string) (bool, error) {
	fmt.Fprint(cmd.ErrOrStderr(), prompt)

	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return false, fmt.Errorf("read confirmation: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
