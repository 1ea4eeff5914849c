package topics

// Renderer turns raw topic content into what the help command prints.
// The format argument is the topic file's extension, so a renderer can
// treat markdown differently from plain text.
type Renderer interface {
	Render(content string, format string) string
}

// PlainRenderer prints topic files verbatim. It is the renderer used
// when no other is configured.
type PlainRenderer struct{}

func (r *PlainRenderer) Render(content string, format string) string {
	return content
}
