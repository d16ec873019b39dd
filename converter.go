package harvest

// Converter converts HTML to Markdown.
type Converter interface {
	// Convert transforms an HTML fragment into Markdown.
	// Returns the Markdown representation of the content.
	Convert(html string) (string, error)
}
