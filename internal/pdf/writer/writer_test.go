package writer

import (
	"bytes"
	"strings"
	"testing"

	lpdf "github.com/ledongthuc/pdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/locadoc/locadoc/internal/pdf/xref"
)

func extractText(t *testing.T, b []byte) string {
	t.Helper()
	r, err := lpdf.NewReader(bytes.NewReader(b), int64(len(b)))
	require.NoError(t, err)
	page := r.Page(1)
	require.False(t, page.V.IsNull())
	text, err := page.GetPlainText(nil)
	require.NoError(t, err)
	return text
}

func TestWrite_OffsetsExact(t *testing.T) {
	tests := []struct {
		name string
		doc  Document
	}{
		{
			name: "title only",
			doc:  Document{Title: "QUITTANCE DE LOYER"},
		},
		{
			name: "full document",
			doc: Document{
				Title:    "CONTRAT DE LOCATION",
				Subtitle: "Bail d'habitation",
				Sections: []string{"Locataire : Jean Dupont", "Loyer : 950,00 €"},
			},
		},
		{
			name: "empty sections list",
			doc:  Document{Title: "T", Sections: []string{}},
		},
		{
			name: "empty document",
			doc:  Document{},
		},
		{
			name: "delimiters in text",
			doc:  Document{Title: `Bail (meublé) \ annexe`, Sections: []string{"Clause : voir (page 2)"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := Write(tt.doc)
			require.NoError(t, err)
			require.NoError(t, xref.Verify(b))

			table, err := xref.Parse(b)
			require.NoError(t, err)
			assert.Len(t, table.Entries, 6)
			assert.True(t, table.Entries[0].Free, "entry 0 must be the free head")
			assert.Equal(t, 6, table.Size)
			assert.Equal(t, 1, table.Root)
		})
	}
}

func TestWrite_TextContent(t *testing.T) {
	b, err := Write(Document{
		Title:    "CONTRAT DE LOCATION",
		Subtitle: "Bail d'habitation",
		Sections: []string{"Locataire : Jean Dupont", "Adresse : 12 rue de la Paix"},
	})
	require.NoError(t, err)

	text := extractText(t, b)
	assert.Contains(t, text, "CONTRAT DE LOCATION")
	assert.Contains(t, text, "Jean Dupont")
	assert.Contains(t, text, "12 rue de la Paix")
}

func TestWrite_EscapesDelimiters(t *testing.T) {
	b, err := Write(Document{Title: `Bail (2024) \ original`})
	require.NoError(t, err)
	require.NoError(t, xref.Verify(b))

	content := string(b)
	assert.Contains(t, content, `\(2024\)`)
	assert.Contains(t, content, `\\`)
	assert.Contains(t, extractText(t, b), "Bail")
}

func TestWrite_TruncatesToSinglePage(t *testing.T) {
	sections := make([]string, 200)
	for i := range sections {
		sections[i] = "Section : contenu de remplissage pour dépasser largement la hauteur de page"
	}
	b, err := Write(Document{Title: "ÉTAT DES LIEUX", Sections: sections})
	require.NoError(t, err)
	require.NoError(t, xref.Verify(b))

	// No pagination: one page object, whatever the content volume.
	assert.Equal(t, 1, strings.Count(string(b), "/Type /Page "))
}

func TestWrap(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		column int
		want   []string
	}{
		{"empty", "", 10, nil},
		{"fits", "un deux", 20, []string{"un deux"}},
		{"breaks on words", "un deux trois", 7, []string{"un deux", "trois"}},
		{"long word kept intact", "supercalifragilistic", 5, []string{"supercalifragilistic"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, wrap(tt.text, tt.column))
		})
	}
}

func TestHeaderPattern(t *testing.T) {
	m := headerRe.FindStringSubmatch("Locataire : Jean Dupont")
	require.NotNil(t, m)
	assert.Equal(t, "Locataire", m[1])
	assert.Equal(t, "Jean Dupont", m[2])

	m = headerRe.FindStringSubmatch("État des lieux : entrée")
	require.NotNil(t, m)
	assert.Equal(t, "État des lieux", m[1])

	assert.Nil(t, headerRe.FindStringSubmatch("pas de titre ici"))
	assert.Nil(t, headerRe.FindStringSubmatch(""))
}
