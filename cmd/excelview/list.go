package main

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

// fileJSON is the --json shape of one FileRecord
type fileJSON struct {
	ID         string   `json:"id"`
	FileName   string   `json:"fileName"`
	UploadDate string   `json:"uploadDate"`
	Headers    []string `json:"headers"`
}

func newListCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List uploaded files, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			engine, store, err := a.openEngine(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			files, err := engine.ListFiles(ctx, a.settings.UID)
			if err != nil {
				return err
			}

			if !asJSON {
				return renderFiles(cmd.OutOrStdout(), files)
			}

			out := make([]fileJSON, len(files))
			for i, f := range files {
				out[i] = fileJSON{
					ID:         f.ID,
					FileName:   f.FileName,
					UploadDate: f.UploadDate.String(),
					Headers:    f.Headers,
				}
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return storeCommand(cmd)
}
