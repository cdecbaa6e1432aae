package dictionary

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Entry is a single dictionary record: a headword with its parts of speech and senses.
type Entry struct {
	ID            int64         `db:"id" yaml:"-" json:"-"`
	Headword      string        `db:"headword" yaml:"headword" json:"headword" validate:"required"`
	PartsOfSpeech PartsOfSpeech `db:"-" yaml:"pos,omitempty" json:"pos"`
	Senses        []string      `db:"-" yaml:"senses" json:"senses" validate:"dive,required"`
	CreatedAt     time.Time     `db:"created_at" yaml:"-" json:"-"`
	UpdatedAt     time.Time     `db:"updated_at" yaml:"-" json:"-"`
}

// Normalize trims text fields and drops blank parts of speech and senses.
func (e *Entry) Normalize() {
	e.Headword = strings.TrimSpace(e.Headword)
	e.PartsOfSpeech = e.PartsOfSpeech.normalize()

	senses := make([]string, 0, len(e.Senses))
	for _, s := range e.Senses {
		if s = strings.TrimSpace(s); s != "" {
			senses = append(senses, s)
		}
	}
	e.Senses = senses
}

// Clone returns a copy of e that shares no slices with it.
func (e Entry) Clone() Entry {
	e.PartsOfSpeech = slices.Clone(e.PartsOfSpeech)
	e.Senses = slices.Clone(e.Senses)
	return e
}

// CloneEntries deep-copies entries. A nil slice stays nil.
func CloneEntries(entries []Entry) []Entry {
	if entries == nil {
		return nil
	}
	cloned := make([]Entry, len(entries))
	for i, entry := range entries {
		cloned[i] = entry.Clone()
	}
	return cloned
}

// PartsOfSpeech is an ordered list of part-of-speech tags.
// It decodes from either a single tag or a list of tags, and always encodes as a list.
type PartsOfSpeech []string

func (p PartsOfSpeech) normalize() PartsOfSpeech {
	result := make(PartsOfSpeech, 0, len(p))
	seen := make(map[string]bool, len(p))
	for _, tag := range p {
		tag = strings.TrimSpace(tag)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		result = append(result, tag)
	}
	return result
}

// UnmarshalYAML accepts `pos: noun` as well as `pos: [noun, verb]`.
func (p *PartsOfSpeech) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			*p = nil
			return nil
		}
		*p = PartsOfSpeech{node.Value}
		return nil
	case yaml.SequenceNode:
		var tags []string
		if err := node.Decode(&tags); err != nil {
			return fmt.Errorf("node.Decode(pos) > %w", err)
		}
		*p = tags
		return nil
	default:
		return fmt.Errorf("pos must be a string or a list of strings, line %d", node.Line)
	}
}

// UnmarshalJSON accepts `"noun"` as well as `["noun", "verb"]`.
func (p *PartsOfSpeech) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*p = nil
		return nil
	}

	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*p = PartsOfSpeech{single}
		return nil
	}

	var tags []string
	if err := json.Unmarshal(data, &tags); err != nil {
		return fmt.Errorf("pos must be a string or a list of strings: %w", err)
	}
	*p = tags
	return nil
}

// MarshalJSON never emits null so clients can always iterate the list.
func (p PartsOfSpeech) MarshalJSON() ([]byte, error) {
	if p == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(p))
}
