package services

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resumatch/internal/models"
)

// buildDOCX assembles a minimal DOCX archive around the given
// WordprocessingML body.
func buildDOCX(t *testing.T, body string) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)

	f, err := w.Create("word/document.xml")
	require.NoError(t, err)

	doc := `<?xml version="1.0" encoding="UTF-8"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">` +
		`<w:body>` + body + `</w:body></w:document>`
	_, err = f.Write([]byte(doc))
	require.NoError(t, err)

	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestExtractDOCXParagraphs(t *testing.T) {
	e := NewTextExtractor()

	data := buildDOCX(t,
		`<w:p><w:r><w:t>Jane Doe</w:t></w:r></w:p>`+
			`<w:p><w:r><w:t>5 years of Go experience</w:t></w:r><w:r><w:t xml:space="preserve"> at Acme</w:t></w:r></w:p>`+
			`<w:p><w:r><w:t>B.Tech</w:t></w:r></w:p>`)

	got := e.ExtractText(data, models.FormatDOCX)
	assert.Equal(t, "Jane Doe\n5 years of Go experience at Acme\nB.Tech", got)
}

func TestExtractDOCXTabsAndBreaks(t *testing.T) {
	e := NewTextExtractor()

	data := buildDOCX(t,
		`<w:p><w:r><w:t>Skills</w:t></w:r><w:r><w:tab/></w:r><w:r><w:t>Go</w:t></w:r></w:p>`+
			`<w:p><w:r><w:t>line one</w:t><w:br/><w:t>line two</w:t></w:r></w:p>`)

	got := e.ExtractText(data, models.FormatDOCX)
	assert.Equal(t, "Skills\tGo\nline one\nline two", got)
}

func TestExtractDOCXIgnoresTextOutsideParagraphs(t *testing.T) {
	e := NewTextExtractor()

	// Section properties and other non-paragraph nodes contribute
	// nothing.
	data := buildDOCX(t, `<w:sectPr><w:t>not content</w:t></w:sectPr><w:p><w:r><w:t>only this</w:t></w:r></w:p>`)

	got := e.ExtractText(data, models.FormatDOCX)
	assert.Equal(t, "only this", got)
}

func TestExtractCorruptInputYieldsEmptyText(t *testing.T) {
	e := NewTextExtractor()

	garbage := []byte("this is neither a zip nor a pdf")

	assert.Equal(t, "", e.ExtractText(garbage, models.FormatDOCX))
	assert.Equal(t, "", e.ExtractText(garbage, models.FormatPDF))
	assert.Equal(t, "", e.ExtractText(nil, models.FormatPDF))
	assert.Equal(t, "", e.ExtractText(garbage, models.DocumentFormat("odt")))
}

func TestExtractDOCXWithoutDocumentXML(t *testing.T) {
	e := NewTextExtractor()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	f, err := w.Create("word/styles.xml")
	require.NoError(t, err)
	_, err = f.Write([]byte("<w:styles/>"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	assert.Equal(t, "", e.ExtractText(buf.Bytes(), models.FormatDOCX))
}

func TestCleanText(t *testing.T) {
	in := "  Jane Doe  \n\n\n 5 years \n\t\n B.Tech \n"
	assert.Equal(t, "Jane Doe\n5 years\nB.Tech", CleanText(in))
	assert.Equal(t, "", CleanText("   \n \t "))
}
