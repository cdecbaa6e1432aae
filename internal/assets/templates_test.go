package assets

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDictionaryTemplate(t *testing.T) {
	data := DictionaryTemplate{
		Title: "Malayalam Dictionary",
		Entries: []DictionaryEntry{
			{Headword: "maram", PartsOfSpeech: []string{"noun"}, Senses: []string{"tree", "wood"}},
			{Headword: "vellam", Senses: []string{"water"}},
		},
	}

	tests := []struct {
		name         string
		templatePath string

		wantTemplateName     string
		wantTemplateContents string
	}{
		{
			name: "uses filesystem template when available",
			templatePath: func(t *testing.T) string {
				templatePath := filepath.Join(t.TempDir(), "custom.md.go.tmpl")
				content := `{{ range .Entries }}{{ .Headword }}={{ join .Senses "/" }};{{ end }}`
				require.NoError(t, os.WriteFile(templatePath, []byte(content), 0644))
				return templatePath
			}(t),
			wantTemplateName:     "custom.md.go.tmpl",
			wantTemplateContents: "maram=tree/wood;vellam=water;",
		},
		{
			name:                 "uses embedded template when file doesn't exist",
			templatePath:         "/non/existent/invalid.md.go.tmpl",
			wantTemplateName:     "dictionary.md.go.tmpl",
			wantTemplateContents: "# Malayalam Dictionary\n\n## maram\n\n_noun_\n\n1. tree\n2. wood\n\n## vellam\n\n1. water\n\n",
		},
		{
			name:                 "uses embedded template when path is empty",
			templatePath:         "",
			wantTemplateName:     "dictionary.md.go.tmpl",
			wantTemplateContents: "# Malayalam Dictionary\n\n## maram\n\n_noun_\n\n1. tree\n2. wood\n\n## vellam\n\n1. water\n\n",
		},
		{
			name: "uses embedded template when filesystem template is invalid",
			templatePath: func(t *testing.T) string {
				templatePath := filepath.Join(t.TempDir(), "invalid.md.go.tmpl")
				require.NoError(t, os.WriteFile(templatePath, []byte(`Bad: {{ .Unclosed`), 0644))
				return templatePath
			}(t),
			wantTemplateName:     "dictionary.md.go.tmpl",
			wantTemplateContents: "# Malayalam Dictionary\n\n## maram\n\n_noun_\n\n1. tree\n2. wood\n\n## vellam\n\n1. water\n\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDictionaryTemplate(tt.templatePath)
			require.NoError(t, err)
			assert.Equal(t, tt.wantTemplateName, got.Name())

			var buf bytes.Buffer
			require.NoError(t, got.Execute(&buf, data))
			assert.Equal(t, tt.wantTemplateContents, buf.String())
		})
	}
}

func TestWriteDictionary(t *testing.T) {
	var buf bytes.Buffer
	err := WriteDictionary(&buf, "", DictionaryTemplate{
		Title:   "Empty",
		Entries: nil,
	})
	require.NoError(t, err)
	assert.Equal(t, "# Empty\n\n", buf.String())
}
