package document

import "strings"

// Element is one node of the document tree. The set of implementations is
// closed: Paragraph, Header, Table, Image and Footer.
type Element interface {
	// Markdown renders the element as Markdown text.
	Markdown() string
	// SemanticContent is the text used for embedding and splitting. Images
	// prefer alternative text over OCR text; footers contribute nothing.
	SemanticContent() string

	isElement()
}

// Paragraph is a plain block of text.
type Paragraph struct {
	Text string
}

func (p Paragraph) Markdown() string        { return p.Text }
func (p Paragraph) SemanticContent() string { return p.Text }
func (p Paragraph) isElement()              {}

// Header is a section heading at a given level (1-based).
type Header struct {
	Level int
	Text  string
}

func (h Header) Markdown() string {
	level := h.Level
	if level < 1 {
		level = 1
	}
	return strings.Repeat("#", level) + " " + h.Text
}

func (h Header) SemanticContent() string { return h.Text }
func (h Header) isElement()              {}

// Footer is page footer text. It renders but carries no semantic content, so
// chunkers skip it.
type Footer struct {
	Text string
}

func (f Footer) Markdown() string        { return f.Text }
func (f Footer) SemanticContent() string { return "" }
func (f Footer) isElement()              {}

// Image holds alternative text, OCR text and the raw bytes of an image.
type Image struct {
	AltText   string
	OCRText   string
	Raw       []byte
	MediaType string
}

func (i Image) Markdown() string {
	if i.AltText != "" {
		return "![" + i.AltText + "]"
	}
	return i.OCRText
}

// SemanticContent prefers alternative text over OCR text.
func (i Image) SemanticContent() string {
	if i.AltText != "" {
		return i.AltText
	}
	return i.OCRText
}

func (i Image) isElement() {}
