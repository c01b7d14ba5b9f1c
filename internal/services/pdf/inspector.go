// -----------------------------------------------------------------------
// PDF Inspector - reads generated documents back for verification
// Uses pdfcpu for Go-native PDF processing
// -----------------------------------------------------------------------

package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/ternarybob/arbor"
	"golang.org/x/text/encoding/charmap"

	"github.com/ternarybob/travelpdf/internal/interfaces"
	"github.com/ternarybob/travelpdf/internal/models"
)

var disableConfigDir sync.Once

// Inspector implements interfaces.PDFInspector using pdfcpu
type Inspector struct {
	logger arbor.ILogger
}

// Compile-time interface assertion
var _ interfaces.PDFInspector = (*Inspector)(nil)

// NewInspector creates a new PDF inspector
func NewInspector(logger arbor.ILogger) *Inspector {
	// pdfcpu otherwise creates a config directory under the user's home
	disableConfigDir.Do(api.DisableConfigDir)
	return &Inspector{logger: logger}
}

// Inspect parses and validates the document and returns its metadata.
func (i *Inspector) Inspect(ctx context.Context, data []byte) (*models.PDFMetadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, errors.New("empty PDF")
	}

	pdfCtx, err := api.ReadContext(bytes.NewReader(data), model.NewDefaultConfiguration())
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF context: %w", err)
	}
	if err := api.ValidateContext(pdfCtx); err != nil {
		return nil, fmt.Errorf("PDF validation failed: %w", err)
	}

	metadata := &models.PDFMetadata{
		Version:     pdfCtx.VersionString(),
		PageCount:   pdfCtx.PageCount,
		FileSize:    int64(len(data)),
		IsEncrypted: pdfCtx.Encrypt != nil,
	}

	i.logger.Debug().
		Str("version", metadata.Version).
		Int("page_count", metadata.PageCount).
		Int64("file_size", metadata.FileSize).
		Bool("encrypted", metadata.IsEncrypted).
		Msg("Inspected PDF")

	return metadata, nil
}

// InspectFile reads a PDF from disk and inspects it.
func (i *Inspector) InspectFile(ctx context.Context, path string) (*models.PDFMetadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF file: %w", err)
	}
	return i.Inspect(ctx, data)
}

// PageText returns the text shown on each page, in page order. Only the
// simple "(...) Tj" text operators written by the builder are recognised.
func (i *Inspector) PageText(ctx context.Context, data []byte) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tempDir, err := os.MkdirTemp("", "travelpdf-inspect-")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tempDir)

	inFile := filepath.Join(tempDir, "report.pdf")
	if err := os.WriteFile(inFile, data, 0600); err != nil {
		return nil, fmt.Errorf("failed to write temp PDF file: %w", err)
	}
	outDir := filepath.Join(tempDir, "content")
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create content dir: %w", err)
	}

	if err := api.ExtractContentFile(inFile, outDir, nil, model.NewDefaultConfiguration()); err != nil {
		return nil, fmt.Errorf("failed to extract PDF content: %w", err)
	}

	files, err := os.ReadDir(outDir)
	if err != nil {
		return nil, fmt.Errorf("failed to list extracted content: %w", err)
	}

	byPage := make(map[int][]string)
	maxPage := 0
	names := make([]string, 0, len(files))
	for _, file := range files {
		if !file.IsDir() {
			names = append(names, file.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		pageNum := contentPageNumber(name)
		if pageNum < 1 {
			continue
		}
		content, err := os.ReadFile(filepath.Join(outDir, name))
		if err != nil {
			return nil, fmt.Errorf("failed to read extracted content %s: %w", name, err)
		}
		byPage[pageNum] = append(byPage[pageNum], showText(content)...)
		if pageNum > maxPage {
			maxPage = pageNum
		}
	}

	pages := make([]string, maxPage)
	for p := 1; p <= maxPage; p++ {
		pages[p-1] = strings.Join(byPage[p], "\n")
	}
	return pages, nil
}

// contentPageNumber parses the page number from pdfcpu's extracted content
// file names ("<name>_Content_page_<n>.txt"). It returns 0 when absent.
func contentPageNumber(name string) int {
	idx := strings.Index(name, "Content_page_")
	if idx < 0 {
		return 0
	}
	var pageNum int
	if _, err := fmt.Sscanf(name[idx:], "Content_page_%d", &pageNum); err != nil {
		return 0
	}
	return pageNum
}

// showText collects the literal strings of Tj operators in a content stream
// and decodes them from WinAnsi (cp1252) to UTF-8.
func showText(content []byte) []string {
	var out []string
	decoder := charmap.Windows1252.NewDecoder()

	for i := 0; i < len(content); i++ {
		if content[i] != '(' {
			continue
		}
		literal, end := readLiteral(content, i+1)
		rest := bytes.TrimLeft(content[end:], " \t\r\n")
		i = end - 1
		if !bytes.HasPrefix(rest, []byte("Tj")) {
			continue
		}
		text, err := decoder.Bytes(literal)
		if err != nil {
			text = literal
		}
		out = append(out, string(text))
	}
	return out
}

// readLiteral reads a PDF literal string starting just after its opening
// parenthesis. It returns the unescaped bytes and the index after the closing
// parenthesis.
func readLiteral(content []byte, start int) ([]byte, int) {
	var buf []byte
	depth := 1
	for i := start; i < len(content); i++ {
		c := content[i]
		switch c {
		case '\\':
			if i+1 >= len(content) {
				return buf, len(content)
			}
			i++
			switch next := content[i]; next {
			case 'n':
				buf = append(buf, '\n')
			case 'r':
				buf = append(buf, '\r')
			case 't':
				buf = append(buf, '\t')
			default:
				buf = append(buf, next)
			}
		case '(':
			depth++
			buf = append(buf, c)
		case ')':
			depth--
			if depth == 0 {
				return buf, i + 1
			}
			buf = append(buf, c)
		default:
			buf = append(buf, c)
		}
	}
	return buf, len(content)
}
