package interfaces

// TextNormalizer turns record text into plain text suitable for layout
type TextNormalizer interface {
	// PlainText strips markdown and HTML markup, keeping paragraph breaks
	PlainText(text string) string
}
