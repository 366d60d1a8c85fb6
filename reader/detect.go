package reader

import (
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"documents-chunker/document"
)

// Format is the detected input format.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
	FormatText     Format = "text"
)

// DetectFormat determines the input format from the file extension, falling
// back to content sniffing for extensionless input.
func DetectFormat(path string, data []byte) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return FormatMarkdown
	case ".html", ".htm":
		return FormatHTML
	case ".txt":
		return FormatText
	}

	mime := mimetype.Detect(data)
	switch {
	case mime.Is("text/html"):
		return FormatHTML
	case mime.Is("text/markdown"):
		return FormatMarkdown
	default:
		return FormatText
	}
}

// Parse builds a document from raw bytes in the given format.
func Parse(src []byte, format Format, id string) (*document.Document, error) {
	switch format {
	case FormatHTML:
		return NewHTML().Parse(src, id)
	case FormatMarkdown:
		return NewMarkdown().Parse(src, id)
	default:
		return parseText(src, id), nil
	}
}

// parseText treats double newlines as paragraph breaks.
func parseText(src []byte, id string) *document.Document {
	if id == "" {
		id = uuid.NewString()
	}

	section := &document.Section{}
	for _, para := range strings.Split(string(src), "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		section.Elements = append(section.Elements, document.Paragraph{Text: para})
	}

	doc := &document.Document{ID: id}
	if len(section.Elements) > 0 {
		doc.Sections = append(doc.Sections, section)
	}
	return doc
}
