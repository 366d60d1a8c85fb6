package document

import "strings"

// Table is a grid of cell elements. The first row is the header row. Cells
// may themselves be any element, including images.
type Table struct {
	Rows [][]Element
}

// RowCount returns the number of rows including the header row.
func (t Table) RowCount() int { return len(t.Rows) }

// HeaderMarkdown renders the header row plus the separator row. Chunkers
// repeat this prefix in every chunk that carries data rows of the table.
func (t Table) HeaderMarkdown() string {
	if len(t.Rows) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(renderRow(t.Rows[0]))
	sb.WriteByte('\n')
	sb.WriteString(separatorRow(len(t.Rows[0])))
	return sb.String()
}

// RowMarkdown renders a single row by index.
func (t Table) RowMarkdown(i int) string {
	if i < 0 || i >= len(t.Rows) {
		return ""
	}
	return renderRow(t.Rows[i])
}

// Markdown renders the full table.
func (t Table) Markdown() string {
	if len(t.Rows) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(t.HeaderMarkdown())
	for i := 1; i < len(t.Rows); i++ {
		sb.WriteByte('\n')
		sb.WriteString(renderRow(t.Rows[i]))
	}
	return sb.String()
}

// SemanticContent of a table is its full Markdown rendering.
func (t Table) SemanticContent() string { return t.Markdown() }

func (t Table) isElement() {}

func renderRow(cells []Element) string {
	var sb strings.Builder
	sb.WriteByte('|')
	for _, cell := range cells {
		sb.WriteByte(' ')
		sb.WriteString(cellText(cell))
		sb.WriteString(" |")
	}
	return sb.String()
}

func separatorRow(cols int) string {
	var sb strings.Builder
	sb.WriteByte('|')
	for i := 0; i < cols; i++ {
		sb.WriteString(" --- |")
	}
	return sb.String()
}

// cellText flattens a cell's semantic content onto a single escaped line so
// the pipe grid stays intact.
func cellText(cell Element) string {
	text := cell.SemanticContent()
	text = strings.ReplaceAll(text, "\n", " ")
	text = strings.ReplaceAll(text, "|", "\\|")
	return strings.TrimSpace(text)
}
