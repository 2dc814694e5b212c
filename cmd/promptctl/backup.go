package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"promptvault-backend/internal/export"
	"promptvault-backend/internal/services"

	"github.com/spf13/cobra"
)

var backupOut string

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Write a user's library to a JSON backup file",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		out, err := createOutput(backupOut)
		if err != nil {
			return err
		}
		defer out.Close()

		b, err := writeBackup(cmd.Context(), app.Library.Backups, userID, out)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "backed up %d prompts, %d categories, %d tags, %d expert roles\n",
			len(b.Prompts), len(b.Categories), len(b.Tags), len(b.ExpertRoles))
		return nil
	},
}

func init() {
	backupCmd.Flags().StringVar(&backupOut, "out", "-", "output file, - for stdout")
}

func writeBackup(ctx context.Context, backups *services.BackupService, userID uint, w io.Writer) (*export.Backup, error) {
	b, err := backups.Export(ctx, userID)
	if err != nil {
		return nil, err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(b); err != nil {
		return nil, err
	}
	return b, nil
}
