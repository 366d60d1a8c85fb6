package document

// ContentStream walks every element of a document across nested sections in
// source order, without materializing the whole list. Sections themselves are
// structural and never appear in the stream.
type ContentStream struct {
	frames []streamFrame
}

type streamFrame struct {
	section  *Section
	elemIdx  int
	childIdx int
}

// Content returns a fresh stream positioned before the first element.
func (d *Document) Content() *ContentStream {
	s := &ContentStream{}
	// Push in reverse so sections pop in document order.
	for i := len(d.Sections) - 1; i >= 0; i-- {
		s.frames = append(s.frames, streamFrame{section: d.Sections[i]})
	}
	return s
}

// Next returns the next element in traversal order, or false when exhausted.
func (s *ContentStream) Next() (Element, bool) {
	for len(s.frames) > 0 {
		top := &s.frames[len(s.frames)-1]
		if top.elemIdx < len(top.section.Elements) {
			el := top.section.Elements[top.elemIdx]
			top.elemIdx++
			return el, true
		}
		if top.childIdx < len(top.section.Children) {
			child := top.section.Children[top.childIdx]
			top.childIdx++
			s.frames = append(s.frames, streamFrame{section: child})
			continue
		}
		s.frames = s.frames[:len(s.frames)-1]
	}
	return nil, false
}

// FlattenedContent collects the full content stream into a slice.
func (d *Document) FlattenedContent() []Element {
	var elements []Element
	stream := d.Content()
	for el, ok := stream.Next(); ok; el, ok = stream.Next() {
		elements = append(elements, el)
	}
	return elements
}
