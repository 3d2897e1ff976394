package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtract(t *testing.T) {
	markup := `<h1>CONTRAT DE LOCATION</h1>` +
		`<h2>Bail d'habitation</h2>` +
		`<div class="section">Locataire : <strong>Jean Dupont</strong></div>` +
		`<div class="section">Loyer : 950,00 €</div>`

	c := Extract(markup, "Document")
	assert.Equal(t, "CONTRAT DE LOCATION", c.Title)
	assert.Equal(t, "Bail d'habitation", c.Subtitle)
	assert.Equal(t, []string{"Locataire : Jean Dupont", "Loyer : 950,00 €"}, c.Sections)
}

func TestExtract_FallbackTitle(t *testing.T) {
	c := Extract(`<div class="section">contenu</div>`, "QUITTANCE DE LOYER")
	assert.Equal(t, "QUITTANCE DE LOYER", c.Title)
	assert.Empty(t, c.Subtitle)
	assert.Equal(t, []string{"contenu"}, c.Sections)
}

func TestExtract_Entities(t *testing.T) {
	c := Extract(`<h1>a&amp;b &lt;c&gt; &quot;d&quot; e&#39;f</h1>`, "")
	assert.Equal(t, `a&b <c> "d" e'f`, c.Title)
}

func TestExtract_UnknownEntityCollapsesToSpace(t *testing.T) {
	c := Extract(`<h1>prix&euro;total</h1>`, "")
	assert.Equal(t, "prix total", c.Title)

	// Never panics on numeric or exotic entities either.
	c = Extract(`<h1>a&#8364;b&copy;c</h1>`, "")
	assert.Equal(t, "a b c", c.Title)
}

func TestExtract_NbspAndWhitespaceNormalization(t *testing.T) {
	c := Extract("<h1>  Jean&nbsp;&nbsp;Dupont \n</h1>", "")
	assert.Equal(t, "Jean Dupont", c.Title)
}

func TestExtract_SectionsInDocumentOrder(t *testing.T) {
	markup := `<div class="section">B</div><h1>T</h1><div class="section">A</div><div class="section">C</div>`
	c := Extract(markup, "")
	assert.Equal(t, []string{"B", "A", "C"}, c.Sections)
}

func TestExtract_EmptyMarkup(t *testing.T) {
	c := Extract("", "fallback")
	assert.Equal(t, "fallback", c.Title)
	assert.Empty(t, c.Sections)
}
