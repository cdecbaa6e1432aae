// Package datasync provides import/export orchestration between seed files and the entry store.
package datasync

import (
	"context"
	"fmt"
	"io"
	"slices"

	"github.com/at-ishikawa/pacha/internal/assets"
	"github.com/at-ishikawa/pacha/internal/dictionary"
)

// ImportResult tracks counts for each import outcome.
type ImportResult struct {
	New     int
	Skipped int
	Updated int
	Invalid int
}

// ImportOptions controls import behavior.
type ImportOptions struct {
	DryRun         bool
	UpdateExisting bool
}

// Importer writes seed entries to the store.
type Importer struct {
	repo      dictionary.EntryRepository
	validator *Validator
	writer    io.Writer
}

// NewImporter creates a new Importer that reports progress to writer.
func NewImporter(repo dictionary.EntryRepository, writer io.Writer) *Importer {
	return &Importer{
		repo:      repo,
		validator: NewValidator(),
		writer:    writer,
	}
}

// ImportEntries imports entries in order. Invalid entries and repeated headwords
// are reported and skipped; store errors abort the import.
func (imp *Importer) ImportEntries(ctx context.Context, entries []dictionary.Entry, opts ImportOptions) (*ImportResult, error) {
	var result ImportResult
	seen := make(map[string]bool, len(entries))

	for i := range entries {
		entry := entries[i]
		entry.Normalize()

		if err := imp.validator.ValidateEntry(entry); err != nil {
			fmt.Fprintf(imp.writer, "  [INVALID]  entry #%d %q: %v\n", i+1, entry.Headword, err)
			result.Invalid++
			continue
		}
		if seen[entry.Headword] {
			fmt.Fprintf(imp.writer, "  [SKIP]  %q (duplicate in file)\n", entry.Headword)
			result.Skipped++
			continue
		}
		seen[entry.Headword] = true

		existing, err := imp.repo.FindByHeadword(ctx, entry.Headword)
		if err != nil {
			return nil, fmt.Errorf("FindByHeadword(%s) > %w", entry.Headword, err)
		}

		if existing == nil {
			if !opts.DryRun {
				if err := imp.repo.Create(ctx, &entry); err != nil {
					return nil, fmt.Errorf("Create(%s) > %w", entry.Headword, err)
				}
			}
			fmt.Fprintf(imp.writer, "  [NEW]  %q\n", entry.Headword)
			result.New++
			continue
		}

		if !opts.UpdateExisting || sameContent(*existing, entry) {
			fmt.Fprintf(imp.writer, "  [SKIP]  %q\n", entry.Headword)
			result.Skipped++
			continue
		}

		existing.PartsOfSpeech = entry.PartsOfSpeech
		existing.Senses = entry.Senses
		if !opts.DryRun {
			if err := imp.repo.Update(ctx, existing); err != nil {
				return nil, fmt.Errorf("Update(%s) > %w", entry.Headword, err)
			}
		}
		fmt.Fprintf(imp.writer, "  [UPDATE]  %q\n", entry.Headword)
		result.Updated++
	}

	return &result, nil
}

func sameContent(a, b dictionary.Entry) bool {
	return slices.Equal(a.PartsOfSpeech, b.PartsOfSpeech) && slices.Equal(a.Senses, b.Senses)
}

// Exporter reads entries back out of the store.
type Exporter struct {
	repo dictionary.EntryRepository
}

// NewExporter creates a new Exporter.
func NewExporter(repo dictionary.EntryRepository) *Exporter {
	return &Exporter{repo: repo}
}

// Export reads all entries in store order.
func (e *Exporter) Export(ctx context.Context) ([]dictionary.Entry, error) {
	entries, err := e.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("repo.FindAll() > %w", err)
	}
	return entries, nil
}

// WriteMarkdown renders entries with the dictionary template at templatePath,
// or the embedded one when templatePath is empty.
func WriteMarkdown(w io.Writer, title, templatePath string, entries []dictionary.Entry) error {
	data := assets.DictionaryTemplate{
		Title:   title,
		Entries: make([]assets.DictionaryEntry, len(entries)),
	}
	for i, e := range entries {
		data.Entries[i] = assets.DictionaryEntry{
			Headword:      e.Headword,
			PartsOfSpeech: e.PartsOfSpeech,
			Senses:        e.Senses,
		}
	}
	if err := assets.WriteDictionary(w, templatePath, data); err != nil {
		return fmt.Errorf("assets.WriteDictionary() > %w", err)
	}
	return nil
}
