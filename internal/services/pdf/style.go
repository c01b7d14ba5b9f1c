package pdf

import (
	"strings"

	"github.com/ternarybob/travelpdf/internal/common"
)

// RGB is a text or line colour.
type RGB struct {
	R, G, B int
}

// TextStyle describes one kind of text block.
type TextStyle struct {
	Size       float64
	Bold       bool
	Italic     bool
	Color      RGB
	LineHeight float64 // height of one wrapped line in mm
	Before     float64 // space above the block
	After      float64 // space below the block
}

func (t TextStyle) fontStyle() string {
	s := ""
	if t.Bold {
		s += "B"
	}
	if t.Italic {
		s += "I"
	}
	return s
}

// Style holds every layout constant used by the Builder.
type Style struct {
	PageSize     string
	FontFamily   string
	Margin       float64
	BreakMargin  float64
	ImageGap     float64
	BulletIndent float64
	BulletWidth  float64
	RuleColor    RGB
	HeaderText   string
	Compress     bool

	Title      TextStyle
	Section    TextStyle
	Subsection TextStyle
	Body       TextStyle
	Bullet     TextStyle
	Header     TextStyle
	Footer     TextStyle
}

// DefaultStyle returns the report look: Helvetica on A4 with blue headings.
func DefaultStyle() Style {
	return Style{
		PageSize:     "A4",
		FontFamily:   "Helvetica",
		Margin:       10,
		BreakMargin:  20,
		ImageGap:     3,
		BulletIndent: 5,
		BulletWidth:  5,
		RuleColor:    RGB{200, 200, 200},
		HeaderText:   "Travel Research Report",
		Compress:     true,

		Title:      TextStyle{Size: 24, Bold: true, Color: RGB{20, 60, 120}, LineHeight: 15, Before: 10, After: 5},
		Section:    TextStyle{Size: 16, Bold: true, Color: RGB{30, 80, 140}, LineHeight: 10, Before: 5, After: 3},
		Subsection: TextStyle{Size: 12, Bold: true, Color: RGB{50, 50, 50}, LineHeight: 8, Before: 3, After: 2},
		Body:       TextStyle{Size: 10, Color: RGB{40, 40, 40}, LineHeight: 6, After: 2},
		Bullet:     TextStyle{Size: 10, Color: RGB{40, 40, 40}, LineHeight: 6, After: 1},
		Header:     TextStyle{Size: 12, Bold: true, Color: RGB{60, 60, 60}, LineHeight: 10, After: 5},
		Footer:     TextStyle{Size: 8, Italic: true, Color: RGB{128, 128, 128}, LineHeight: 10},
	}
}

// StyleFromConfig applies the [render] section on top of DefaultStyle.
func StyleFromConfig(cfg *common.Config) Style {
	style := DefaultStyle()
	if size := strings.TrimSpace(cfg.Render.PageSize); size != "" {
		style.PageSize = size
	}
	if header := strings.TrimSpace(cfg.Render.HeaderText); header != "" {
		style.HeaderText = header
	}
	style.Compress = cfg.Render.Compress
	return style
}

// DocumentInfo is written to the PDF information dictionary.
type DocumentInfo struct {
	Title    string
	Subject  string
	Author   string
	Creator  string
	Keywords []string
}
