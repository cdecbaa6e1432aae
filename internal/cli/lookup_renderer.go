// Package cli renders dictionary lookups in a terminal.
package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/at-ishikawa/pacha/internal/dictionary"
	"github.com/at-ishikawa/pacha/internal/lookup"
)

// Renderer prints lookup states and entries.
type Renderer struct {
	out    io.Writer
	bold   *color.Color
	italic *color.Color
	faint  *color.Color
	red    *color.Color
}

func NewRenderer(out io.Writer) *Renderer {
	return &Renderer{
		out:    out,
		bold:   color.New(color.Bold),
		italic: color.New(color.Italic),
		faint:  color.New(color.Faint),
		red:    color.New(color.FgRed),
	}
}

// Render prints a session snapshot. Idle prints nothing.
func (r *Renderer) Render(snapshot lookup.Snapshot) {
	switch snapshot.State {
	case lookup.StateSearching:
		_, _ = r.faint.Fprintf(r.out, "searching %q (%s)...\n", snapshot.Query, snapshot.Mode.Label())
	case lookup.StateResults:
		r.RenderEntries(snapshot.Results)
	case lookup.StateEmpty:
		fmt.Fprintln(r.out, "No results found")
	case lookup.StateError:
		fmt.Fprint(r.out, "❌ ")
		_, _ = r.red.Fprintln(r.out, snapshot.Message)
	}
}

// RenderEntries prints entries with numbered senses.
func (r *Renderer) RenderEntries(entries []dictionary.Entry) {
	for _, entry := range entries {
		fmt.Fprint(r.out, r.bold.Sprint(entry.Headword))
		if len(entry.PartsOfSpeech) > 0 {
			fmt.Fprintf(r.out, " %s", r.italic.Sprint(strings.Join(entry.PartsOfSpeech, ", ")))
		}
		fmt.Fprintln(r.out)
		for i, sense := range entry.Senses {
			fmt.Fprintf(r.out, "   %d. %s\n", i+1, sense)
		}
	}
}
