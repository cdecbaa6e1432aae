package main

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/pacha/internal/datasync"
	"github.com/at-ishikawa/pacha/internal/dictionary"
	"github.com/at-ishikawa/pacha/internal/pdf"
)

const (
	formatYAML     = "yaml"
	formatMarkdown = "markdown"
	formatPDF      = "pdf"

	defaultExportTitle = "Malayalam–English Dictionary"
)

func newExportCommand() *cobra.Command {
	var format string
	var output string
	var title string
	var templatePath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export every dictionary entry as YAML, Markdown or PDF",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			switch format {
			case formatYAML, formatMarkdown:
			case formatPDF:
				if output == "" || output == "-" {
					return fmt.Errorf("--output is required for the pdf format")
				}
			default:
				return fmt.Errorf("unsupported format %q: use yaml, markdown or pdf", format)
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			db, err := openStore(ctx, cfg.Database)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			entries, err := datasync.NewExporter(dictionary.NewDBEntryRepository(db)).Export(ctx)
			if err != nil {
				return fmt.Errorf("export entries: %w", err)
			}

			if format == formatPDF {
				var markdown bytes.Buffer
				if err := datasync.WriteMarkdown(&markdown, title, templatePath, entries); err != nil {
					return fmt.Errorf("datasync.WriteMarkdown() > %w", err)
				}
				path, err := pdf.Render(markdown.Bytes(), output)
				if err != nil {
					return fmt.Errorf("pdf.Render() > %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %d entries to %s\n", len(entries), path)
				return nil
			}

			var w io.Writer = cmd.OutOrStdout()
			if output != "" && output != "-" {
				file, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("os.Create(%s) > %w", output, err)
				}
				defer func() { _ = file.Close() }()
				w = file
			}

			switch format {
			case formatMarkdown:
				err = datasync.WriteMarkdown(w, title, templatePath, entries)
			default:
				err = datasync.WriteYAML(w, entries)
			}
			if err != nil {
				return fmt.Errorf("write %s: %w", format, err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", formatYAML, "Output format: yaml, markdown or pdf")
	cmd.Flags().StringVarP(&output, "output", "o", "-", "Output file path, - for stdout")
	cmd.Flags().StringVar(&title, "title", defaultExportTitle, "Document title for markdown and pdf")
	cmd.Flags().StringVar(&templatePath, "template", "", "Markdown template overriding the embedded one")
	return cmd
}
