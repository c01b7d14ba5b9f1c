package pdf

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
)

func renderSample(t *testing.T, paragraphs int) []byte {
	t.Helper()
	b := newTestBuilder(t)
	b.RenderTitle("Lisbon")
	b.RenderSectionHeading("Overview")
	for i := 0; i < paragraphs; i++ {
		b.RenderParagraph(strings.Repeat("Trams climb the hills of Alfama. ", 15))
	}
	data, err := b.Finish()
	require.NoError(t, err)
	return data
}

func TestInspector_Inspect(t *testing.T) {
	inspector := NewInspector(arbor.NewLogger())
	data := renderSample(t, 1)

	meta, err := inspector.Inspect(context.Background(), data)
	require.NoError(t, err)
	assert.Equal(t, 1, meta.PageCount)
	assert.Equal(t, int64(len(data)), meta.FileSize)
	assert.False(t, meta.IsEncrypted)
	assert.NotEmpty(t, meta.Version)
}

func TestInspector_PageCountMatchesBuilder(t *testing.T) {
	inspector := NewInspector(arbor.NewLogger())

	b := newTestBuilder(t)
	b.RenderTitle("Multi")
	for i := 0; i < 30; i++ {
		b.RenderParagraph(strings.Repeat("Lorem ipsum dolor sit amet. ", 12))
	}
	data, err := b.Finish()
	require.NoError(t, err)
	require.Greater(t, b.PageCount(), 1)

	meta, err := inspector.Inspect(context.Background(), data)
	require.NoError(t, err)
	assert.Equal(t, b.PageCount(), meta.PageCount)
}

func TestInspector_RejectsGarbage(t *testing.T) {
	inspector := NewInspector(arbor.NewLogger())

	_, err := inspector.Inspect(context.Background(), nil)
	assert.Error(t, err)

	_, err = inspector.Inspect(context.Background(), []byte("not a pdf at all"))
	assert.Error(t, err)
}

func TestInspector_CancelledContext(t *testing.T) {
	inspector := NewInspector(arbor.NewLogger())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := inspector.Inspect(ctx, renderSample(t, 1))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestInspector_InspectFile(t *testing.T) {
	inspector := NewInspector(arbor.NewLogger())
	path := filepath.Join(t.TempDir(), "sample.pdf")
	require.NoError(t, os.WriteFile(path, renderSample(t, 1), 0644))

	meta, err := inspector.InspectFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 1, meta.PageCount)

	_, err = inspector.InspectFile(context.Background(), filepath.Join(t.TempDir(), "missing.pdf"))
	assert.Error(t, err)
}

func TestInspector_PageText(t *testing.T) {
	inspector := NewInspector(arbor.NewLogger())

	pages, err := inspector.PageText(context.Background(), renderSample(t, 1))
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Contains(t, pages[0], "Lisbon")
	assert.Contains(t, pages[0], "Overview")
	assert.Contains(t, pages[0], "Travel Research Report")
	assert.Contains(t, pages[0], "Page 1 / 1")
}

func TestContentPageNumber(t *testing.T) {
	assert.Equal(t, 3, contentPageNumber("report_Content_page_3.txt"))
	assert.Equal(t, 12, contentPageNumber("report_Content_page_12_0.txt"))
	assert.Equal(t, 0, contentPageNumber("report.txt"))
}

func TestShowText(t *testing.T) {
	content := []byte("BT 10 20 Td (Hello \\(world\\)) Tj ET\nBT (ignored) TJ ET\nBT (Caf\xe9) Tj ET")
	assert.Equal(t, []string{"Hello (world)", "Café"}, showText(content))
}
