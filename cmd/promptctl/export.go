package main

import (
	"fmt"
	"io"
	"os"

	"promptvault-backend/internal/export"
	"promptvault-backend/internal/models"
	"promptvault-backend/internal/store"

	"github.com/spf13/cobra"
)

var (
	exportFormat    string
	exportOut       string
	exportMetadata  bool
	exportVariables bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write every prompt outside the trash into a ZIP archive",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := export.ParseFormat(exportFormat)
		if err != nil {
			return err
		}

		app, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		registry := store.NewRegistry(app.Library.Sources())
		defer registry.Close()
		s, err := registry.Acquire(userID)
		if err != nil {
			return err
		}

		out, err := createOutput(exportOut)
		if err != nil {
			return err
		}
		defer out.Close()

		n, err := exportArchive(s, format, export.Options{
			IncludeMetadata:  exportMetadata,
			IncludeVariables: exportVariables,
		}, out)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "exported %d prompts\n", n)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "markdown", "file format: markdown, json or text")
	exportCmd.Flags().StringVar(&exportOut, "out", "prompts.zip", "output archive, - for stdout")
	exportCmd.Flags().BoolVar(&exportMetadata, "metadata", true, "include metadata")
	exportCmd.Flags().BoolVar(&exportVariables, "variables", true, "include variables")
}

func exportArchive(s *store.Store, format export.Format, opts export.Options, w io.Writer) (int, error) {
	prompts := s.FilteredPrompts(models.Filters{}, models.DefaultSort)
	if err := export.Bundle(w, prompts, format, s, opts); err != nil {
		return 0, err
	}
	return len(prompts), nil
}
