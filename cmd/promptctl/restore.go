package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"promptvault-backend/internal/export"
	"promptvault-backend/internal/services"

	"github.com/spf13/cobra"
)

var restoreIn string

var restoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Merge a JSON backup file into a user's library",
	Long: `restore imports a backup produced by "promptctl backup" or the API.
Categories, tags and expert roles whose names already exist are reused.
Nothing is deleted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var r io.Reader = os.Stdin
		if restoreIn != "-" {
			f, err := os.Open(restoreIn)
			if err != nil {
				return err
			}
			defer f.Close()
			r = f
		}

		app, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		result, err := restoreBackup(cmd.Context(), app.Library.Backups, userID, r)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "imported %d prompts, %d categories, %d tags, %d expert roles (%d reused)\n",
			result.Prompts, result.Categories, result.Tags, result.ExpertRoles, result.Reused)
		for _, f := range result.Failed {
			fmt.Fprintf(os.Stderr, "  failed %s %q: %s\n", f.Kind, f.Name, f.Error)
		}
		return nil
	},
}

func init() {
	restoreCmd.Flags().StringVar(&restoreIn, "in", "-", "backup file, - for stdin")
}

func restoreBackup(ctx context.Context, backups *services.BackupService, userID uint, r io.Reader) (*services.ImportResult, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	b, err := export.ParseImport(data)
	if err != nil {
		return nil, err
	}
	return backups.Import(ctx, userID, b)
}
