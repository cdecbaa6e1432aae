package datasync

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/at-ishikawa/pacha/internal/dictionary"
)

// SeedFile is the on-disk format of a dictionary seed.
type SeedFile struct {
	Entries []dictionary.Entry `yaml:"entries"`
}

// ReadSeedFile reads the entries of a seed file. Unknown keys are rejected.
func ReadSeedFile(path string) ([]dictionary.Entry, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("os.ReadFile(%s) > %w", path, err)
	}
	entries, err := DecodeSeed(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("DecodeSeed(%s) > %w", path, err)
	}
	return entries, nil
}

// DecodeSeed decodes a seed document from r.
func DecodeSeed(r io.Reader) ([]dictionary.Entry, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var seed SeedFile
	if err := dec.Decode(&seed); err != nil {
		if errors.Is(err, io.EOF) {
			return []dictionary.Entry{}, nil
		}
		return nil, fmt.Errorf("dec.Decode() > %w", err)
	}
	if seed.Entries == nil {
		seed.Entries = []dictionary.Entry{}
	}
	return seed.Entries, nil
}

// WriteYAML encodes entries in the seed format. Parts of speech are always written as lists.
func WriteYAML(w io.Writer, entries []dictionary.Entry) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(SeedFile{Entries: entries}); err != nil {
		return fmt.Errorf("enc.Encode() > %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("enc.Close() > %w", err)
	}
	return nil
}
