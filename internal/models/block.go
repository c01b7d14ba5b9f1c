package models

// BlockKind identifies the type of a content block.
type BlockKind string

const (
	BlockTitle             BlockKind = "title"
	BlockSectionHeading    BlockKind = "section"
	BlockSubsectionHeading BlockKind = "subsection"
	BlockParagraph         BlockKind = "paragraph"
	BlockBullet            BlockKind = "bullet"
	BlockImage             BlockKind = "image"
)

// ContentBlock is one unit of document content queued for layout.
// Image blocks use URL and Width (millimetres); all others use Text.
type ContentBlock struct {
	Kind  BlockKind `json:"kind"`
	Text  string    `json:"text,omitempty"`
	URL   string    `json:"url,omitempty"`
	Width float64   `json:"width,omitempty"`
}

// PlacedBlock records where the builder put a block.
type PlacedBlock struct {
	Kind BlockKind `json:"kind"`
	Text string    `json:"text,omitempty"`
	URL  string    `json:"url,omitempty"`
	Page int       `json:"page"`
	Y    float64   `json:"y"`
}
