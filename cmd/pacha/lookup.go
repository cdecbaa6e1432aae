package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/at-ishikawa/pacha/internal/cli"
	"github.com/at-ishikawa/pacha/internal/lookup"
	"github.com/at-ishikawa/pacha/internal/search"
)

var _ pflag.Value = (*search.Mode)(nil)

func newLookupCommand() *cobra.Command {
	var interactive bool
	var serverURL string
	mode := search.ModeAny

	cmd := &cobra.Command{
		Use:   "lookup [word]",
		Short: "Look up a word on a running dictionary server",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if serverURL != "" {
				cfg.Client.BaseURL = serverURL
			}

			client := lookup.NewClient(cfg.Client)
			defer func() {
				_ = client.Close()
			}()

			if interactive {
				return cli.NewInteractiveLookupCLI(
					client,
					lookup.SessionOptions{
						Debounce: cfg.Web.Debounce,
						Timeout:  cfg.Web.RequestTimeout,
					},
					os.Stdin,
					cmd.OutOrStdout(),
				).Run(cmd.Context(), mode)
			}

			if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
				return fmt.Errorf("a word is required unless --interactive is set")
			}
			entries, err := client.Search(cmd.Context(), search.Query{Text: args[0], Mode: mode})
			if err != nil {
				return fmt.Errorf("client.Search() > %w", err)
			}

			renderer := cli.NewRenderer(cmd.OutOrStdout())
			if len(entries) == 0 {
				renderer.Render(lookup.Snapshot{State: lookup.StateEmpty})
				return nil
			}
			renderer.RenderEntries(entries)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Read words from stdin and look them up as you type")
	cmd.Flags().StringVar(&serverURL, "server", "", "Server base URL, overrides client.base_url")
	cmd.Flags().Var(&mode, "mode", "Search mode: any, ml (Malayalam → English) or en (English → Malayalam)")
	return cmd
}
