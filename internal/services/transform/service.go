package transform

import (
	"bytes"
	"html"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/ternarybob/arbor"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"github.com/ternarybob/travelpdf/internal/interfaces"
)

var (
	// Only elements research text actually carries; anything else in angle
	// brackets ("<Shibuya Station>") is literal text.
	htmlTagRe = regexp.MustCompile(`(?i)</?(?:p|b|i|em|strong|ul|ol|li|br|a|div|span|h[1-6])(?:\s[^>]*)?/?>`)
	tagRe     = regexp.MustCompile(`<[^>]*>`)
	spaceRe   = regexp.MustCompile(`\s+`)
	trailRe   = regexp.MustCompile(`[ \t]+\n`)
	blankRe   = regexp.MustCompile(`\n{3,}`)
)

// Service normalizes research text (markdown, occasionally HTML) into plain
// text the PDF builder can lay out.
type Service struct {
	logger   arbor.ILogger
	markdown goldmark.Markdown
}

// Compile-time assertion
var _ interfaces.TextNormalizer = (*Service)(nil)

// NewService creates a new transform service
func NewService(logger arbor.ILogger) *Service {
	return &Service{
		logger: logger,
		markdown: goldmark.New(
			goldmark.WithExtensions(extension.Strikethrough, extension.Linkify),
		),
	}
}

// PlainText strips markdown and HTML markup. Block boundaries become line
// breaks, list items keep a "- " or "N. " marker, and links keep their text.
func (s *Service) PlainText(input string) string {
	input = strings.TrimSpace(input)
	if input == "" {
		return ""
	}

	if htmlTagRe.MatchString(input) {
		input = s.htmlToMarkdown(input)
	}

	out := s.markdownToText(input)
	if out == "" {
		// Markup only (e.g. a lone HTML comment); keep whatever text is left
		return strings.TrimSpace(stripHTMLTags(input))
	}
	return out
}

// htmlToMarkdown converts HTML content to markdown, falling back to tag
// stripping when the converter fails or produces nothing.
func (s *Service) htmlToMarkdown(htmlStr string) string {
	converter := md.NewConverter("", true, nil)
	converted, err := converter.ConvertString(htmlStr)
	if err != nil {
		s.logger.Warn().Err(err).Msg("HTML to markdown conversion failed, using fallback")
		return stripHTMLTags(htmlStr)
	}

	if strings.TrimSpace(converted) == "" {
		s.logger.Warn().
			Int("html_length", len(htmlStr)).
			Msg("HTML to markdown conversion produced empty output, applying fallback")
		return stripHTMLTags(htmlStr)
	}

	s.logger.Debug().
		Int("markdown_length", len(converted)).
		Int("html_length", len(htmlStr)).
		Msg("HTML to markdown conversion successful")
	return converted
}

func (s *Service) markdownToText(markdown string) string {
	source := []byte(markdown)
	doc := s.markdown.Parser().Parse(text.NewReader(source))

	w := &textWriter{source: source}
	if err := ast.Walk(doc, w.walk); err != nil {
		s.logger.Warn().Err(err).Msg("Markdown walk failed, using raw text")
		return markdown
	}

	out := html.UnescapeString(w.buf.String())
	out = trailRe.ReplaceAllString(out, "\n")
	out = blankRe.ReplaceAllString(out, "\n\n")
	return strings.TrimSpace(out)
}

// textWriter accumulates the plain text of a goldmark AST.
type textWriter struct {
	source    []byte
	buf       strings.Builder
	listDepth int
	itemStart bool
}

func (w *textWriter) blockBreak() {
	if w.buf.Len() == 0 {
		return
	}
	if !strings.HasSuffix(w.buf.String(), "\n") {
		w.buf.WriteByte('\n')
	}
}

func (w *textWriter) walk(n ast.Node, entering bool) (ast.WalkStatus, error) {
	switch node := n.(type) {
	case *ast.Document:
		return ast.WalkContinue, nil

	case *ast.Heading:
		if entering {
			if w.itemStart {
				w.itemStart = false
			} else {
				w.blockBreak()
			}
		} else if bar := w.setextUnderline(node); bar != "" {
			w.buf.WriteByte('\n')
			w.buf.WriteString(bar)
		}

	case *ast.Paragraph, *ast.TextBlock, *ast.Blockquote:
		if entering {
			if w.itemStart {
				w.itemStart = false
			} else {
				w.blockBreak()
			}
		}

	case *ast.List:
		if entering {
			w.listDepth++
		} else {
			w.listDepth--
		}

	case *ast.ListItem:
		if entering {
			w.blockBreak()
			w.buf.WriteString(strings.Repeat("  ", max(w.listDepth-1, 0)))
			w.buf.WriteString(listMarker(node))
			w.itemStart = true
		} else {
			w.itemStart = false
		}

	case *ast.FencedCodeBlock:
		if entering {
			w.writeLines(node.Lines())
		}
		return ast.WalkSkipChildren, nil

	case *ast.CodeBlock:
		if entering {
			w.writeLines(node.Lines())
		}
		return ast.WalkSkipChildren, nil

	case *ast.Emphasis:
		if delim := w.intrawordDelimiter(node); delim != "" {
			w.buf.WriteString(delim)
		}

	case *ast.Text:
		if entering {
			value := node.Segment.Value(w.source)
			if !node.IsRaw() {
				value = util.UnescapePunctuations(value)
			}
			w.buf.Write(value)
			switch {
			case node.HardLineBreak():
				w.buf.WriteByte('\n')
			case node.SoftLineBreak():
				w.buf.WriteByte(' ')
			}
		}

	case *ast.String:
		if entering {
			w.buf.Write(node.Value)
		}

	case *ast.AutoLink:
		if entering {
			w.buf.Write(node.URL(w.source))
		}
		return ast.WalkSkipChildren, nil

	case *ast.RawHTML:
		if entering {
			var raw []byte
			for i := 0; i < node.Segments.Len(); i++ {
				segment := node.Segments.At(i)
				raw = append(raw, segment.Value(w.source)...)
			}
			if !isMarkup(raw) {
				w.buf.Write(raw)
			}
		}
		return ast.WalkSkipChildren, nil

	case *ast.HTMLBlock:
		if entering {
			var raw []byte
			lines := node.Lines()
			for i := 0; i < lines.Len(); i++ {
				line := lines.At(i)
				raw = append(raw, line.Value(w.source)...)
			}
			if node.HasClosure() {
				raw = append(raw, node.ClosureLine.Value(w.source)...)
			}
			if !isMarkup(raw) {
				w.blockBreak()
				w.buf.Write(bytes.TrimRight(raw, "\r\n"))
			}
		}
		return ast.WalkSkipChildren, nil

	case *ast.ThematicBreak:
		return ast.WalkSkipChildren, nil
	}

	return ast.WalkContinue, nil
}

func (w *textWriter) writeLines(lines *text.Segments) {
	w.blockBreak()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		w.buf.Write(line.Value(w.source))
	}
}

// setextUnderline returns the "===" or "---" line under a setext heading so
// it survives as text. ATX headings return "".
func (w *textWriter) setextUnderline(heading *ast.Heading) string {
	lines := heading.Lines()
	if lines.Len() == 0 {
		return ""
	}

	first := lines.At(0)
	lineStart := bytes.LastIndexByte(w.source[:first.Start], '\n') + 1
	if bytes.HasPrefix(bytes.TrimLeft(w.source[lineStart:first.Start], " \t>"), []byte("#")) {
		return ""
	}

	stop := lines.At(lines.Len() - 1).Stop
	rest := w.source[stop:]
	if stop == 0 || w.source[stop-1] != '\n' {
		i := bytes.IndexByte(rest, '\n')
		if i < 0 {
			return ""
		}
		rest = rest[i+1:]
	}
	if i := bytes.IndexByte(rest, '\n'); i >= 0 {
		rest = rest[:i]
	}

	bar := strings.TrimSpace(string(rest))
	if bar == "" || (strings.Trim(bar, "=") != "" && strings.Trim(bar, "-") != "") {
		return ""
	}
	return bar
}

// intrawordDelimiter returns the emphasis delimiter when it sits between
// letters or digits ("5*2 = 10 and 3*4"), which is arithmetic rather than
// emphasis. It returns "" for ordinary emphasis.
func (w *textWriter) intrawordDelimiter(emphasis *ast.Emphasis) string {
	first, last := firstText(emphasis), lastText(emphasis)
	if first == nil || last == nil {
		return ""
	}

	start := first.Segment.Start - emphasis.Level
	end := last.Segment.Stop + emphasis.Level
	if start < 0 || end > len(w.source) {
		return ""
	}
	delim := w.source[start:first.Segment.Start]
	if len(bytes.Trim(delim, "*_")) != 0 || !bytes.Equal(delim, w.source[last.Segment.Stop:end]) {
		return ""
	}

	before, _ := utf8.DecodeLastRune(w.source[:start])
	after, _ := utf8.DecodeRune(w.source[first.Segment.Start:])
	inner, _ := utf8.DecodeLastRune(w.source[:last.Segment.Stop])
	next, _ := utf8.DecodeRune(w.source[end:])
	if (isWordRune(before) && isWordRune(after)) || (isWordRune(inner) && isWordRune(next)) {
		return string(delim)
	}
	return ""
}

func firstText(n ast.Node) *ast.Text {
	for c := n.FirstChild(); c != nil; c = c.FirstChild() {
		if t, ok := c.(*ast.Text); ok {
			return t
		}
	}
	return nil
}

func lastText(n ast.Node) *ast.Text {
	for c := n.LastChild(); c != nil; c = c.LastChild() {
		if t, ok := c.(*ast.Text); ok {
			return t
		}
	}
	return nil
}

func isWordRune(r rune) bool {
	return r != utf8.RuneError && (unicode.IsLetter(r) || unicode.IsDigit(r))
}

// isMarkup reports whether raw HTML from the markdown parser is real markup
// (a known element, comment or declaration) rather than bracketed text.
func isMarkup(raw []byte) bool {
	trimmed := bytes.TrimSpace(raw)
	if bytes.HasPrefix(trimmed, []byte("<!")) || bytes.HasPrefix(trimmed, []byte("<?")) {
		return true
	}
	loc := htmlTagRe.FindIndex(trimmed)
	return loc != nil && loc[0] == 0
}

func listMarker(item *ast.ListItem) string {
	list, ok := item.Parent().(*ast.List)
	if !ok || !list.IsOrdered() {
		return "- "
	}
	index := list.Start
	for sib := item.PreviousSibling(); sib != nil; sib = sib.PreviousSibling() {
		index++
	}
	return strconv.Itoa(index) + ". "
}

// stripHTMLTags removes basic HTML tags for fallback cases
func stripHTMLTags(htmlStr string) string {
	stripped := tagRe.ReplaceAllString(htmlStr, "")
	cleaned := spaceRe.ReplaceAllString(stripped, " ")
	return strings.TrimSpace(html.UnescapeString(cleaned))
}
