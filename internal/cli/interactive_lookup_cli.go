package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/at-ishikawa/pacha/internal/lookup"
	"github.com/at-ishikawa/pacha/internal/search"
)

const interactiveHelp = `Type a word and press enter to look it up.
  :mode any|ml|en   switch search direction
  :quit             exit`

// InteractiveLookupCLI feeds stdin lines into a lookup session and prints every state change.
type InteractiveLookupCLI struct {
	searcher search.Searcher
	options  lookup.SessionOptions
	reader   *bufio.Reader
	renderer *Renderer
	out      io.Writer
}

func NewInteractiveLookupCLI(
	searcher search.Searcher,
	options lookup.SessionOptions,
	in io.Reader,
	out io.Writer,
) *InteractiveLookupCLI {
	return &InteractiveLookupCLI{
		searcher: searcher,
		options:  options,
		reader:   bufio.NewReader(in),
		renderer: NewRenderer(out),
		out:      out,
	}
}

// Run reads lines until EOF, :quit or an interrupt.
// A word still waiting for its debounce is looked up before Run returns on EOF or :quit.
func (cli *InteractiveLookupCLI) Run(ctx context.Context, mode search.Mode) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt)
	defer cancel()

	options := cli.options
	options.OnChange = cli.renderer.Render
	session := lookup.NewSession(cli.searcher, options)
	defer session.Close()
	session.SetMode(mode)

	fmt.Fprintln(cli.out, interactiveHelp)

	lines := make(chan string)
	errCh := make(chan error, 1)
	go func() {
		defer close(lines)
		for {
			line, err := cli.reader.ReadString('\n')
			if line != "" {
				select {
				case lines <- strings.TrimRight(line, "\r\n"):
				case <-ctx.Done():
					return
				}
			}
			if err == io.EOF {
				return
			}
			if err != nil {
				errCh <- fmt.Errorf("reader.ReadString() > %w", err)
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			fmt.Fprintln(cli.out, "Received interrupt signal, exiting...")
			return nil
		case err := <-errCh:
			return err
		case line, ok := <-lines:
			if !ok {
				session.Flush()
				return nil
			}
			quit, err := cli.handleLine(session, line)
			if err != nil {
				fmt.Fprintln(cli.out, err)
				continue
			}
			if quit {
				session.Flush()
				return nil
			}
		}
	}
}

func (cli *InteractiveLookupCLI) handleLine(session *lookup.Session, line string) (bool, error) {
	command, ok := strings.CutPrefix(strings.TrimSpace(line), ":")
	if !ok {
		session.Input(line)
		return false, nil
	}

	name, arg, _ := strings.Cut(command, " ")
	switch name {
	case "q", "quit":
		return true, nil
	case "mode":
		mode, err := search.ParseMode(arg)
		if err != nil {
			return false, fmt.Errorf("search.ParseMode() > %w", err)
		}
		session.SetMode(mode)
		fmt.Fprintf(cli.out, "mode: %s\n", mode.Label())
		return false, nil
	default:
		return false, fmt.Errorf("unknown command %q\n%s", name, interactiveHelp)
	}
}
