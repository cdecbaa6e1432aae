// Package assets holds the embedded templates used to render exported dictionaries.
package assets

import (
	_ "embed"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/template"
)

const fallbackDictionaryTemplateName = "dictionary.md.go.tmpl"

//go:embed templates/dictionary.md.go.tmpl
var fallbackDictionaryTemplate string

// DictionaryTemplate is the top-level data passed to dictionary templates.
type DictionaryTemplate struct {
	Title   string
	Entries []DictionaryEntry
}

// DictionaryEntry is a single entry as seen by templates.
type DictionaryEntry struct {
	Headword      string
	PartsOfSpeech []string
	Senses        []string
}

// ParseDictionaryTemplate parses templatePath, falling back to the embedded
// template when the file is missing or invalid.
func ParseDictionaryTemplate(templatePath string) (*template.Template, error) {
	return parseTemplateWithFallback(templatePath, fallbackDictionaryTemplateName, fallbackDictionaryTemplate)
}

// WriteDictionary renders data as Markdown to output.
func WriteDictionary(output io.Writer, templatePath string, data DictionaryTemplate) error {
	tmpl, err := ParseDictionaryTemplate(templatePath)
	if err != nil {
		return fmt.Errorf("ParseDictionaryTemplate() > %w", err)
	}
	if err := tmpl.Execute(output, data); err != nil {
		return fmt.Errorf("tmpl.Execute() > %w", err)
	}
	return nil
}

func parseTemplateWithFallback(templatePath, fallbackName, fallbackTemplate string) (*template.Template, error) {
	funcMap := template.FuncMap{
		"join": strings.Join,
		"inc": func(i int) int {
			return i + 1
		},
	}

	if templatePath != "" {
		if _, err := os.Stat(templatePath); err == nil {
			tmpl, err := template.New(filepath.Base(templatePath)).
				Funcs(funcMap).
				ParseFiles(templatePath)
			if err == nil {
				return tmpl, nil
			}
			slog.Default().Warn("failed to parse a templatePath",
				slog.String("templatePath", templatePath),
				slog.Any("error", err),
			)
		}
	}

	tmpl, err := template.New(fallbackName).
		Funcs(funcMap).
		Parse(fallbackTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse embedded template: %w", err)
	}
	return tmpl, nil
}
