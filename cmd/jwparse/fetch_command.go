package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/neri-gut/jwparse/internal/discovery"
)

func newFetchCommand(a *app) *cobra.Command {
	var pub string
	var lang string
	var issue string
	var output string
	var extract bool

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Discover and download a publication archive from the CDN",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := os.MkdirAll(output, 0o755); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}

			client := discovery.NewClient(a.cfg.CDNBaseURL)
			defer client.Close()

			url, err := client.FindURL(cmd.Context(), pub, lang, issue)
			if err != nil {
				return err
			}
			a.log.Info("publication located", "pub", pub, "lang", lang, "url", url)

			dest := filepath.Join(output, fmt.Sprintf("%s_%s_%s.jwpub", pub, lang, issue))
			if err := client.Download(cmd.Context(), url, dest); err != nil {
				return err
			}
			a.log.Info("archive downloaded", "path", dest)

			if !extract {
				return nil
			}

			parser, err := a.newParser()
			if err != nil {
				return err
			}
			m, err := parser.Parse(cmd.Context(), dest, output)
			if err != nil {
				return err
			}
			manifestPath := filepath.Join(output, "manifest.json")
			if err := writeManifestJSON(manifestPath, m); err != nil {
				return err
			}
			a.log.Info("extraction complete", "manifest", manifestPath, "documents", len(m.Documents))
			return nil
		},
	}

	cmd.Flags().StringVar(&pub, "pub", "", "Publication symbol (e.g. mwb)")
	cmd.Flags().StringVar(&lang, "lang", "", "Language code (e.g. S)")
	cmd.Flags().StringVar(&issue, "issue", "", "Issue code (e.g. 202507)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output directory")
	cmd.Flags().BoolVar(&extract, "extract", false, "Extract the archive after downloading")
	cmd.MarkFlagRequired("pub")
	cmd.MarkFlagRequired("lang")
	cmd.MarkFlagRequired("output")

	return cmd
}
