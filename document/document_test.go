package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentStream(t *testing.T) {
	t.Run("elements before children, in source order", func(t *testing.T) {
		doc := &Document{
			ID: "doc-1",
			Sections: []*Section{
				{
					Elements: []Element{
						Header{Level: 1, Text: "Intro"},
						Paragraph{Text: "first"},
					},
					Children: []*Section{
						{Elements: []Element{Paragraph{Text: "nested"}}},
					},
				},
				{Elements: []Element{Paragraph{Text: "second"}}},
			},
		}

		var got []string
		stream := doc.Content()
		for el, ok := stream.Next(); ok; el, ok = stream.Next() {
			got = append(got, el.SemanticContent())
		}
		assert.Equal(t, []string{"Intro", "first", "nested", "second"}, got)
	})

	t.Run("empty document yields nothing", func(t *testing.T) {
		doc := &Document{ID: "empty"}
		_, ok := doc.Content().Next()
		assert.False(t, ok)
		assert.Empty(t, doc.FlattenedContent())
	})

	t.Run("flattened content matches stream", func(t *testing.T) {
		doc := &Document{
			Sections: []*Section{
				{
					Elements: []Element{Paragraph{Text: "a"}},
					Children: []*Section{
						{
							Elements: []Element{Paragraph{Text: "b"}},
							Children: []*Section{{Elements: []Element{Paragraph{Text: "c"}}}},
						},
						{Elements: []Element{Paragraph{Text: "d"}}},
					},
				},
			},
		}
		flat := doc.FlattenedContent()
		require.Len(t, flat, 4)
		assert.Equal(t, "a", flat[0].SemanticContent())
		assert.Equal(t, "b", flat[1].SemanticContent())
		assert.Equal(t, "c", flat[2].SemanticContent())
		assert.Equal(t, "d", flat[3].SemanticContent())
	})
}

func TestElements(t *testing.T) {
	t.Run("header renders markdown prefix", func(t *testing.T) {
		assert.Equal(t, "## Title", Header{Level: 2, Text: "Title"}.Markdown())
		assert.Equal(t, "Title", Header{Level: 2, Text: "Title"}.SemanticContent())
		// Level below 1 clamps to a single hash.
		assert.Equal(t, "# Odd", Header{Level: 0, Text: "Odd"}.Markdown())
	})

	t.Run("footer has no semantic content", func(t *testing.T) {
		footer := Footer{Text: "Page 3 of 12"}
		assert.Equal(t, "Page 3 of 12", footer.Markdown())
		assert.Empty(t, footer.SemanticContent())
	})

	t.Run("image prefers alt text over OCR text", func(t *testing.T) {
		img := Image{AltText: "A chart of revenue", OCRText: "Q1 Q2 Q3"}
		assert.Equal(t, "A chart of revenue", img.SemanticContent())

		img.AltText = ""
		assert.Equal(t, "Q1 Q2 Q3", img.SemanticContent())
	})
}

func TestTable(t *testing.T) {
	table := Table{Rows: [][]Element{
		{Paragraph{Text: "Name"}, Paragraph{Text: "Age"}},
		{Paragraph{Text: "Alice"}, Paragraph{Text: "30"}},
		{Paragraph{Text: "Bob"}, Paragraph{Text: "25"}},
	}}

	t.Run("header markdown includes separator", func(t *testing.T) {
		assert.Equal(t, "| Name | Age |\n| --- | --- |", table.HeaderMarkdown())
	})

	t.Run("row markdown renders one row", func(t *testing.T) {
		assert.Equal(t, "| Alice | 30 |", table.RowMarkdown(1))
		assert.Empty(t, table.RowMarkdown(5))
	})

	t.Run("full markdown", func(t *testing.T) {
		want := "| Name | Age |\n| --- | --- |\n| Alice | 30 |\n| Bob | 25 |"
		assert.Equal(t, want, table.Markdown())
		assert.Equal(t, want, table.SemanticContent())
	})

	t.Run("cell text escapes pipes and newlines", func(t *testing.T) {
		tricky := Table{Rows: [][]Element{
			{Paragraph{Text: "a|b"}, Paragraph{Text: "line1\nline2"}},
		}}
		assert.Equal(t, "| a\\|b | line1 line2 |", tricky.RowMarkdown(0))
	})

	t.Run("empty table renders nothing", func(t *testing.T) {
		empty := Table{}
		assert.Empty(t, empty.HeaderMarkdown())
		assert.Empty(t, empty.Markdown())
		assert.Zero(t, empty.RowCount())
	})
}

func TestDocumentMarkdown(t *testing.T) {
	doc := &Document{
		Sections: []*Section{
			{
				Elements: []Element{
					Header{Level: 1, Text: "Title"},
					Paragraph{Text: "Body text."},
					Footer{Text: ""},
				},
			},
		},
	}
	assert.Equal(t, "# Title\n\nBody text.", doc.Markdown())
}
