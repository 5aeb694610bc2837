package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
)

func newExtractCommand(a *app) *cobra.Command {
	var input string
	var output string

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Decode a local .jwpub archive into an output directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(input); err != nil {
				return fmt.Errorf("input file: %w", err)
			}

			parser, err := a.newParser()
			if err != nil {
				return err
			}

			start := time.Now()
			m, err := parser.Parse(cmd.Context(), input, output)
			if err != nil {
				return err
			}

			manifestPath := filepath.Join(output, "manifest.json")
			if err := writeManifestJSON(manifestPath, m); err != nil {
				return err
			}

			a.log.Info("extraction complete",
				"input", input,
				"manifest", manifestPath,
				"documents", len(m.Documents),
				"duration_ms", time.Since(start).Milliseconds(),
			)
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "Path to the .jwpub file")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output directory")
	cmd.MarkFlagRequired("input")
	cmd.MarkFlagRequired("output")

	return cmd
}

func writeManifestJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}
