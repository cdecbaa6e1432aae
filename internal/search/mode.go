package search

import (
	"errors"
	"fmt"
	"strings"

	"github.com/at-ishikawa/pacha/internal/dictionary"
)

// Mode selects the language direction of a search.
type Mode string

const (
	// ModeAny matches the headword or any sense.
	ModeAny Mode = "any"
	// ModeMalayalam matches headwords only.
	ModeMalayalam Mode = "ml"
	// ModeEnglish matches senses only.
	ModeEnglish Mode = "en"
)

// Modes lists every supported mode in display order.
var Modes = []Mode{ModeAny, ModeMalayalam, ModeEnglish}

var ErrInvalidMode = errors.New("invalid search mode")

// ParseMode parses a mode name. An empty string means ModeAny.
func ParseMode(s string) (Mode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ModeAny, nil
	}
	mode := Mode(s)
	if !mode.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
	return mode, nil
}

func (m Mode) Valid() bool {
	switch m {
	case ModeAny, ModeMalayalam, ModeEnglish:
		return true
	}
	return false
}

// Label is the human readable name shown in the UIs.
func (m Mode) Label() string {
	switch m {
	case ModeMalayalam:
		return "Malayalam → English"
	case ModeEnglish:
		return "English → Malayalam"
	default:
		return "Both"
	}
}

func (m Mode) fields() dictionary.SearchFields {
	switch m {
	case ModeMalayalam:
		return dictionary.FieldHeadword
	case ModeEnglish:
		return dictionary.FieldSenses
	default:
		return dictionary.FieldsAll
	}
}

// String implements pflag.Value.
func (m Mode) String() string {
	if m == "" {
		return string(ModeAny)
	}
	return string(m)
}

// Set implements pflag.Value.
func (m *Mode) Set(s string) error {
	mode, err := ParseMode(s)
	if err != nil {
		return err
	}
	*m = mode
	return nil
}

// Type implements pflag.Value.
func (m *Mode) Type() string {
	return "mode"
}
