// -----------------------------------------------------------------------
// Document Builder - lays out report blocks onto PDF pages with go-pdf/fpdf
// -----------------------------------------------------------------------

package pdf

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/travelpdf/internal/interfaces"
	"github.com/ternarybob/travelpdf/internal/models"
)

const bulletGlyph = "•"

// pageCursor mirrors the fpdf write position after every block and holds the
// page geometry used for fit checks.
type pageCursor struct {
	page       int
	y          float64
	pageWidth  float64
	pageHeight float64
	contentTop float64 // first y below the page header
	breakAt    float64 // pageHeight - break margin
}

func (c *pageCursor) fits(h float64) bool {
	return c.y+h <= c.breakAt
}

func (c *pageCursor) atTop() bool {
	return c.y <= c.contentTop
}

// Builder implements interfaces.DocumentBuilder. One Builder produces one
// document; it is not safe for concurrent use.
type Builder struct {
	pdf       *fpdf.Fpdf
	style     Style
	logger    arbor.ILogger
	tr        func(string) string
	cursor    pageCursor
	layout    []models.PlacedBlock
	imageSeq  int
	finished  bool
	err       error
	pageCount int
}

// Compile-time assertion
var _ interfaces.DocumentBuilder = (*Builder)(nil)

// NewBuilder creates a builder with its first page already started.
func NewBuilder(style Style, info DocumentInfo, logger arbor.ILogger) (*Builder, error) {
	doc := fpdf.New("P", "mm", style.PageSize, "")
	if err := doc.Error(); err != nil {
		return nil, &models.RenderError{Op: "init", Err: fmt.Errorf("page size %q: %w", style.PageSize, err)}
	}

	b := &Builder{
		pdf:    doc,
		style:  style,
		logger: logger,
		tr:     doc.UnicodeTranslatorFromDescriptor(""),
	}

	doc.SetMargins(style.Margin, style.Margin, style.Margin)
	doc.SetAutoPageBreak(true, style.BreakMargin)
	doc.AliasNbPages("{nb}")
	doc.SetCompression(style.Compress)
	doc.SetHeaderFunc(b.header)
	doc.SetFooterFunc(b.footer)

	if info.Title != "" {
		doc.SetTitle(info.Title, true)
	}
	if info.Subject != "" {
		doc.SetSubject(info.Subject, true)
	}
	if info.Author != "" {
		doc.SetAuthor(info.Author, true)
	}
	if info.Creator != "" {
		doc.SetCreator(info.Creator, true)
	}
	if len(info.Keywords) > 0 {
		doc.SetKeywords(strings.Join(info.Keywords, " "), true)
	}

	b.cursor.pageWidth, b.cursor.pageHeight = doc.GetPageSize()
	b.cursor.breakAt = b.cursor.pageHeight - style.BreakMargin

	doc.AddPage()
	b.cursor.contentTop = doc.GetY()
	b.sync()

	if err := doc.Error(); err != nil {
		return nil, &models.RenderError{Op: "init", Err: err}
	}
	return b, nil
}

func (b *Builder) header() {
	h := b.style.Header
	b.setFont(h)
	b.pdf.CellFormat(0, h.LineHeight, b.tr(b.style.HeaderText), "", 1, "C", false, 0, "")
	b.rule()
	b.pdf.Ln(h.After)
}

func (b *Builder) footer() {
	f := b.style.Footer
	b.pdf.SetY(-15)
	b.setFont(f)
	b.pdf.CellFormat(0, f.LineHeight, fmt.Sprintf("Page %d / {nb}", b.pdf.PageNo()), "", 0, "C", false, 0, "")
}

func (b *Builder) setFont(t TextStyle) {
	b.pdf.SetFont(b.style.FontFamily, t.fontStyle(), t.Size)
	b.pdf.SetTextColor(t.Color.R, t.Color.G, t.Color.B)
}

func (b *Builder) rule() {
	y := b.pdf.GetY()
	c := b.style.RuleColor
	b.pdf.SetDrawColor(c.R, c.G, c.B)
	b.pdf.Line(b.style.Margin, y, b.cursor.pageWidth-b.style.Margin, y)
}

func (b *Builder) contentWidth() float64 {
	return b.cursor.pageWidth - 2*b.style.Margin
}

func (b *Builder) sync() {
	b.cursor.page = b.pdf.PageNo()
	b.cursor.y = b.pdf.GetY()
}

// ensure starts a new page when a block of minimum height h does not fit
// above the break margin. A block that cannot fit on an empty page is placed
// anyway and left to fpdf's automatic breaking.
func (b *Builder) ensure(h float64) {
	b.sync()
	if b.cursor.fits(h) || b.cursor.atTop() {
		return
	}
	b.pdf.AddPage()
	b.sync()
	b.logger.Debug().Int("page", b.cursor.page).Msg("Page break")
}

// usable reports whether the builder still accepts blocks. Rendering after
// Finish records ErrAlreadyFinished as the builder's terminal error.
func (b *Builder) usable(op string) bool {
	if !b.finished {
		return true
	}
	if b.err == nil {
		b.err = &models.RenderError{Op: op, Err: models.ErrAlreadyFinished}
	}
	b.logger.Error().Str("op", op).Msg("Render after finish ignored")
	return false
}

func (b *Builder) place(kind models.BlockKind, text, url string) {
	b.layout = append(b.layout, models.PlacedBlock{
		Kind: kind,
		Text: text,
		URL:  url,
		Page: b.cursor.page,
		Y:    b.cursor.y,
	})
}

// wrappedHeight returns the height text takes when wrapped to width in the
// current font.
func (b *Builder) wrappedHeight(encoded string, width, lineHeight float64) float64 {
	lines := len(b.pdf.SplitLines([]byte(encoded), width))
	if lines < 1 {
		lines = 1
	}
	return float64(lines) * lineHeight
}

// RenderTitle draws the large centred document title.
func (b *Builder) RenderTitle(text string) {
	text = cleanText(text)
	if text == "" || !b.usable("title") {
		return
	}
	t := b.style.Title
	b.setFont(t)
	encoded := b.tr(text)
	b.ensure(t.Before + b.wrappedHeight(encoded, b.contentWidth(), t.LineHeight))
	b.pdf.Ln(t.Before)
	b.sync()
	b.place(models.BlockTitle, text, "")
	b.pdf.MultiCell(0, t.LineHeight, encoded, "", "C", false)
	b.pdf.Ln(t.After)
	b.sync()
}

// RenderSectionHeading draws a section heading with a rule beneath it.
func (b *Builder) RenderSectionHeading(text string) {
	text = cleanText(text)
	if text == "" || !b.usable("section") {
		return
	}
	s := b.style.Section
	b.setFont(s)
	b.ensure(s.Before + s.LineHeight)
	if !b.cursor.atTop() {
		b.pdf.Ln(s.Before)
	}
	b.sync()
	b.place(models.BlockSectionHeading, text, "")
	b.pdf.CellFormat(0, s.LineHeight, b.tr(text), "", 1, "L", false, 0, "")
	b.rule()
	b.pdf.Ln(s.After)
	b.sync()
}

// RenderSubsectionHeading draws a medium heading without a rule.
func (b *Builder) RenderSubsectionHeading(text string) {
	text = cleanText(text)
	if text == "" || !b.usable("subsection") {
		return
	}
	s := b.style.Subsection
	b.setFont(s)
	b.ensure(s.Before + s.LineHeight)
	if !b.cursor.atTop() {
		b.pdf.Ln(s.Before)
	}
	b.sync()
	b.place(models.BlockSubsectionHeading, text, "")
	b.pdf.MultiCell(0, s.LineHeight, b.tr(text), "", "L", false)
	b.pdf.Ln(s.After)
	b.sync()
}

// RenderParagraph draws word-wrapped body text. At least one line must fit on
// the current page; the rest flows onto following pages.
func (b *Builder) RenderParagraph(text string) {
	text = cleanText(text)
	if text == "" || !b.usable("paragraph") {
		return
	}
	p := b.style.Body
	b.setFont(p)
	b.ensure(p.LineHeight)
	b.place(models.BlockParagraph, text, "")
	b.pdf.MultiCell(0, p.LineHeight, b.tr(text), "", "L", false)
	b.pdf.Ln(p.After)
	b.sync()
}

// RenderBullet draws an indented bullet item with a hanging indent.
func (b *Builder) RenderBullet(text string) {
	text = cleanText(text)
	if text == "" || !b.usable("bullet") {
		return
	}
	p := b.style.Bullet
	b.setFont(p)
	b.ensure(p.LineHeight)
	b.place(models.BlockBullet, text, "")
	b.pdf.CellFormat(b.style.BulletIndent, p.LineHeight, "", "", 0, "L", false, 0, "")
	b.pdf.CellFormat(b.style.BulletWidth, p.LineHeight, b.tr(bulletGlyph), "", 0, "L", false, 0, "")
	b.pdf.MultiCell(0, p.LineHeight, b.tr(text), "", "L", false)
	b.pdf.SetX(b.style.Margin)
	b.pdf.Ln(p.After)
	b.sync()
}

// RenderImage scales the image to widthHint preserving its aspect ratio and
// places it at the left margin. Absent results are skipped without a trace.
func (b *Builder) RenderImage(result models.ImageResult, widthHint float64) {
	if result.Absent() || !b.usable("image") {
		return
	}
	img := result.Image

	w, h := b.fitImage(widthHint, img.Width, img.Height)

	b.imageSeq++
	name := fmt.Sprintf("img%03d", b.imageSeq)
	opts := fpdf.ImageOptions{ImageType: string(img.Format), ReadDpi: false}

	b.pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(img.Data))
	if !b.pdf.Ok() {
		b.rejectImage(result.URL, b.pdf.Error())
		return
	}

	b.ensure(h)
	x, y := b.style.Margin, b.pdf.GetY()
	b.pdf.ImageOptions(name, x, y, w, h, false, opts, 0, "")
	if !b.pdf.Ok() {
		b.rejectImage(result.URL, b.pdf.Error())
		return
	}

	b.sync()
	b.place(models.BlockImage, "", result.URL)
	b.pdf.SetY(y + h + b.style.ImageGap)
	b.sync()
}

// fitImage clamps the requested width to the content area and the resulting
// height to the space between the header and the break margin.
func (b *Builder) fitImage(widthHint float64, px, py int) (w, h float64) {
	maxW := b.contentWidth()
	maxH := b.cursor.breakAt - b.cursor.contentTop

	w = widthHint
	if w <= 0 || w > maxW {
		w = maxW
	}
	h = w * float64(py) / float64(px)
	if h > maxH {
		h = maxH
		w = h * float64(px) / float64(py)
	}
	return w, h
}

func (b *Builder) rejectImage(url string, err error) {
	b.logger.Warn().
		Str("url", url).
		Err(err).
		Msg("PDF writer rejected image, omitting")
	b.pdf.ClearError()
}

// Finish serializes the document. The total page count alias in the footers
// is resolved here. A second call returns ErrAlreadyFinished.
func (b *Builder) Finish() ([]byte, error) {
	if b.finished {
		return nil, &models.RenderError{Op: "finish", Err: models.ErrAlreadyFinished}
	}
	b.finished = true

	if b.err != nil {
		return nil, b.err
	}
	if err := b.pdf.Error(); err != nil {
		b.err = &models.RenderError{Op: "layout", Err: err}
		return nil, b.err
	}

	b.pageCount = b.pdf.PageNo()

	var buf bytes.Buffer
	if err := b.pdf.Output(&buf); err != nil {
		b.logger.Error().Err(err).Msg("Failed to serialize PDF")
		b.err = &models.RenderError{Op: "serialize", Err: err}
		return nil, b.err
	}

	b.logger.Debug().
		Int("pages", b.pageCount).
		Int("blocks", len(b.layout)).
		Int("pdf_size", buf.Len()).
		Msg("PDF generated successfully")

	return buf.Bytes(), nil
}

// Err returns the terminal error recorded by the builder, if any.
func (b *Builder) Err() error {
	return b.err
}

// Layout returns a copy of the blocks placed so far.
func (b *Builder) Layout() []models.PlacedBlock {
	out := make([]models.PlacedBlock, len(b.layout))
	copy(out, b.layout)
	return out
}

// PageCount returns the number of pages laid out so far.
func (b *Builder) PageCount() int {
	if b.finished && b.pageCount > 0 {
		return b.pageCount
	}
	return b.pdf.PageNo()
}

// cleanText trims the text and replaces characters the core fonts cannot
// lay out (tabs, carriage returns, other control characters).
func cleanText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.Map(func(r rune) rune {
		switch {
		case r == '\n':
			return r
		case r == '\t' || r == '\r':
			return ' '
		case r < 0x20 || r == 0x7f:
			return -1
		}
		return r
	}, text)
	return strings.TrimSpace(text)
}
