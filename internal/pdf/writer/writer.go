// Package writer builds minimal single-page PDF documents from scratch,
// without a PDF library: a fixed five-object table (catalog, page tree, page,
// font, content stream), a byte-accurate cross-reference table and a trailer.
// It is the default renderer used whenever no fillable template is supplied.
package writer

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// Document is the plain-text content laid out on the page.
type Document struct {
	Title    string
	Subtitle string
	Sections []string
}

// Page geometry in PDF units (1/72 inch), US Letter.
const (
	pageWidth  = 612
	pageHeight = 792

	marginLeft   = 50
	marginBottom = 50
	topBaseline  = 742

	titleSize    = 18
	subtitleSize = 12
	headerSize   = 11
	bodySize     = 10

	titleLeading    = 30
	subtitleLeading = 22
	headerLeading   = 18
	bodyLeading     = 14

	// Greedy whole-word wrap column. Helvetica metrics are not measured,
	// which makes this an approximation rather than a typographic guarantee.
	wrapColumn = 78
)

// headerRe captures a leading capitalized run followed by a colon, which the
// renderers use to mark a section header ("Locataire : Jean Dupont").
var headerRe = regexp.MustCompile(`^([0-9A-ZÀ-Þ][\p{L}\d'’ .\-]{0,60}?)\s*:\s*(.*)$`)

// win1252 transcodes UTF-8 into the single-byte encoding declared on the
// Helvetica font object. Unmappable runes degrade to the substitute byte
// instead of corrupting the content stream.
var win1252 = encoding.ReplaceUnsupported(charmap.Windows1252.NewEncoder())

type textLine struct {
	text string
	size int
	y    int
}

// Write serializes the document into a self-contained PDF byte buffer.
// Content that would overflow the single page is silently truncated.
func Write(doc Document) ([]byte, error) {
	lines, err := layout(doc)
	if err != nil {
		return nil, err
	}

	program := contentStream(lines)

	b := newBuilder()
	b.header("%PDF-1.4\n")
	b.appendObject(1, "<< /Type /Catalog /Pages 2 0 R >>")
	b.appendObject(2, "<< /Type /Pages /Kids [3 0 R] /Count 1 >>")
	b.appendObject(3, fmt.Sprintf(
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 %d %d] /Resources << /Font << /F1 4 0 R >> >> /Contents 5 0 R >>",
		pageWidth, pageHeight))
	b.appendObject(4, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>")
	b.appendObject(5, fmt.Sprintf("<< /Length %d >>\nstream\n%sendstream", len(program), program))
	return b.finish(), nil
}

// layout walks the document top-down and assigns a baseline to every line.
// Lines that would land below the bottom margin are dropped.
func layout(doc Document) ([]textLine, error) {
	var lines []textLine
	y := topBaseline

	emit := func(text string, size, leading int) error {
		if y < marginBottom {
			return nil
		}
		encoded, err := encodeText(text)
		if err != nil {
			return fmt.Errorf("encode %q: %w", text, err)
		}
		lines = append(lines, textLine{text: encoded, size: size, y: y})
		y -= leading
		return nil
	}

	if doc.Title != "" {
		if err := emit(doc.Title, titleSize, titleLeading); err != nil {
			return nil, err
		}
	}
	if doc.Subtitle != "" {
		if err := emit(doc.Subtitle, subtitleSize, subtitleLeading); err != nil {
			return nil, err
		}
	}

	for _, section := range doc.Sections {
		section = strings.TrimSpace(section)
		if section == "" {
			continue
		}
		body := section
		if m := headerRe.FindStringSubmatch(section); m != nil {
			if err := emit(m[1]+" :", headerSize, headerLeading); err != nil {
				return nil, err
			}
			body = m[2]
		}
		for _, wrapped := range wrap(body, wrapColumn) {
			if err := emit(wrapped, bodySize, bodyLeading); err != nil {
				return nil, err
			}
		}
	}

	return lines, nil
}

// contentStream emits one strictly forward text block per line: begin-text,
// set-font, absolute move, show-text, end-text.
func contentStream(lines []textLine) string {
	var sb strings.Builder
	for _, l := range lines {
		fmt.Fprintf(&sb, "BT\n/F1 %d Tf\n%d %d Td\n(%s) Tj\nET\n", l.size, marginLeft, l.y, l.text)
	}
	return sb.String()
}

// encodeText transcodes to WinAnsi and escapes the characters that are
// significant inside a string literal. Line breaks collapse to spaces.
func encodeText(s string) (string, error) {
	s = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(s)
	encoded, err := win1252.String(s)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	for i := 0; i < len(encoded); i++ {
		switch c := encoded[i]; c {
		case '\\':
			sb.WriteString(`\\`)
		case '(':
			sb.WriteString(`\(`)
		case ')':
			sb.WriteString(`\)`)
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String(), nil
}

// wrap splits text greedily on whole words. Words longer than the column are
// kept intact; there is no hyphenation.
func wrap(text string, column int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	var out []string
	line := words[0]
	for _, w := range words[1:] {
		if len(line)+1+len(w) > column {
			out = append(out, line)
			line = w
			continue
		}
		line += " " + w
	}
	return append(out, line)
}

// builder accumulates serialized objects, recording each object's start
// offset at append time so the cross-reference table needs no arithmetic.
type builder struct {
	buf     bytes.Buffer
	offsets []int
}

func newBuilder() *builder {
	return &builder{}
}

func (b *builder) header(h string) {
	b.buf.WriteString(h)
}

func (b *builder) appendObject(num int, body string) {
	b.offsets = append(b.offsets, b.buf.Len())
	fmt.Fprintf(&b.buf, "%d 0 obj\n%s\nendobj\n", num, body)
}

// finish writes the cross-reference table (entry 0 is the mandatory free
// head) and the trailer, then returns the complete file.
func (b *builder) finish() []byte {
	xrefOffset := b.buf.Len()
	fmt.Fprintf(&b.buf, "xref\n0 %d\n", len(b.offsets)+1)
	b.buf.WriteString("0000000000 65535 f \n")
	for _, off := range b.offsets {
		fmt.Fprintf(&b.buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&b.buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n",
		len(b.offsets)+1, xrefOffset)
	return b.buf.Bytes()
}
