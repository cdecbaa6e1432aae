package datasync

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/at-ishikawa/pacha/internal/dictionary"
)

// ValidationError describes a problem with one entry of a seed.
type ValidationError struct {
	Index    int
	Headword string
	Message  string
	Severity string // "error" or "warning"
}

func (e ValidationError) Error() string {
	location := fmt.Sprintf("entry #%d", e.Index+1)
	if e.Headword != "" {
		location += fmt.Sprintf(" (%s)", e.Headword)
	}
	return fmt.Sprintf("%s: %s", location, e.Message)
}

// ValidationResult collects the errors and warnings of a seed.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationError
}

func (r *ValidationResult) HasErrors() bool {
	return len(r.Errors) > 0
}

func (r *ValidationResult) addError(err ValidationError) {
	err.Severity = "error"
	r.Errors = append(r.Errors, err)
}

func (r *ValidationResult) addWarning(err ValidationError) {
	err.Severity = "warning"
	r.Warnings = append(r.Warnings, err)
}

// Validator checks seed entries before they are imported.
type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{validate: validate}
}

// ValidateEntry validates a single normalized entry.
func (v *Validator) ValidateEntry(entry dictionary.Entry) error {
	if err := v.validate.Struct(entry); err != nil {
		var fieldErrors validator.ValidationErrors
		if errors.As(err, &fieldErrors) {
			messages := make([]string, 0, len(fieldErrors))
			for _, fe := range fieldErrors {
				messages = append(messages, fmt.Sprintf("%s is %s", fe.Field(), fe.Tag()))
			}
			return errors.New(strings.Join(messages, ", "))
		}
		return fmt.Errorf("validate.Struct() > %w", err)
	}
	return nil
}

// Validate checks every entry. Entries are normalized on a copy, so the input is not modified.
func (v *Validator) Validate(entries []dictionary.Entry) *ValidationResult {
	result := &ValidationResult{}
	seen := make(map[string]int, len(entries))

	for i, raw := range entries {
		entry := raw
		entry.PartsOfSpeech = append(dictionary.PartsOfSpeech(nil), raw.PartsOfSpeech...)
		entry.Senses = append([]string(nil), raw.Senses...)
		entry.Normalize()

		if err := v.ValidateEntry(entry); err != nil {
			result.addError(ValidationError{Index: i, Headword: entry.Headword, Message: err.Error()})
			continue
		}
		if first, ok := seen[entry.Headword]; ok {
			result.addError(ValidationError{
				Index:    i,
				Headword: entry.Headword,
				Message:  fmt.Sprintf("duplicate headword, first defined in entry #%d", first+1),
			})
			continue
		}
		seen[entry.Headword] = i

		if len(entry.Senses) == 0 {
			result.addWarning(ValidationError{Index: i, Headword: entry.Headword, Message: "no senses"})
		}
		if dropped := len(raw.Senses) - len(entry.Senses); dropped > 0 {
			result.addWarning(ValidationError{Index: i, Headword: entry.Headword, Message: fmt.Sprintf("%d blank senses dropped", dropped)})
		}
	}
	return result
}
