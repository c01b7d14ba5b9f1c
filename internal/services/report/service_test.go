package report

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/travelpdf/internal/common"
	"github.com/ternarybob/travelpdf/internal/models"
	"github.com/ternarybob/travelpdf/internal/services/images"
	"github.com/ternarybob/travelpdf/internal/services/pdf"
	"github.com/ternarybob/travelpdf/internal/services/transform"
	"github.com/ternarybob/travelpdf/internal/services/validation"
)

const tokyoPayload = `{
  "destination": "Tokyo, Japan",
  "overview": "Japan's capital blends neon-lit skyscrapers with historic temples.",
  "attractions": [{"name": "Senso-ji Temple", "description": "Ancient Buddhist temple."}],
  "logistics": {"weather": "Mild"},
  "itinerary": [{"day": 1, "theme": "Historic Tokyo", "activities": "Visit temple."}],
  "tips": ["Carry cash"],
  "image_urls": []
}`

type testEnv struct {
	service   *Service
	inspector *pdf.Inspector
	config    *common.Config
	dir       string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := arbor.NewLogger()

	config := common.NewDefaultConfig()
	config.Output.Dir = t.TempDir()
	config.Images.Timeout = "2s"
	config.Images.Retries = 0

	inspector := pdf.NewInspector(logger)
	service := NewService(
		config,
		validation.NewRecordValidationService(logger),
		images.NewFetcher(images.ConfigFromApp(config), logger),
		transform.NewService(logger),
		inspector,
		logger,
	)
	return &testEnv{service: service, inspector: inspector, config: config, dir: config.Output.Dir}
}

func (e *testEnv) pdfFiles(t *testing.T, dir string) []string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(dir, "*.pdf"))
	require.NoError(t, err)
	return matches
}

// newAssetServer serves a PNG photo and an HTML page posing as an image.
func newAssetServer(t *testing.T) *httptest.Server {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 60, 40))
	for x := 0; x < 60; x++ {
		for y := 0; y < 40; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: uint8(x * 4), B: uint8(y * 6), A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	photo := buf.Bytes()

	mux := http.NewServeMux()
	mux.HandleFunc("/photo.png", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(photo)
	})
	mux.HandleFunc("/page.html", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html><body>login required</body></html>"))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestGenerate_TokyoEndToEnd(t *testing.T) {
	env := newTestEnv(t)

	result, err := env.service.Generate(context.Background(), []byte(tokyoPayload), "")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(env.dir, "travel_report_Tokyo_Japan.pdf"), result.Path)
	assert.True(t, strings.HasSuffix(result.Path, ".pdf"))

	info, err := os.Stat(result.Path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
	assert.Equal(t, info.Size(), result.Size)
	assert.NotEmpty(t, result.ReportID)
	assert.Zero(t, result.ImagesPlaced)
	assert.Zero(t, result.ImagesOmitted)

	var sections []string
	for _, block := range result.Layout {
		assert.NotEqual(t, models.BlockImage, block.Kind, "no hero image without image_urls")
		if block.Kind == models.BlockSectionHeading {
			sections = append(sections, block.Text)
		}
	}
	assert.Equal(t, []string{SectionOverview, SectionAttractions, SectionPractical, SectionItinerary, SectionTips}, sections)

	// The sections are drawn in the document in the same order
	data, err := os.ReadFile(result.Path)
	require.NoError(t, err)
	pages, err := env.inspector.PageText(context.Background(), data)
	require.NoError(t, err)
	require.Len(t, pages, result.PageCount)

	text := strings.Join(pages, "\n")
	last := -1
	for _, heading := range sections {
		idx := strings.Index(text, heading)
		require.GreaterOrEqual(t, idx, 0, "heading %q not drawn", heading)
		assert.Greater(t, idx, last, "heading %q out of order", heading)
		last = idx
	}
	assert.Contains(t, text, "Weather")
	assert.Contains(t, text, "Day 1: Historic Tokyo")
}

func TestRender_DestinationOnlyIsOnePage(t *testing.T) {
	env := newTestEnv(t)

	rendered, err := env.service.Render(context.Background(), &models.ResearchRecord{Destination: "Reykjavik"})
	require.NoError(t, err)

	assert.Equal(t, 1, rendered.PageCount)
	require.Len(t, rendered.Layout, 1)
	assert.Equal(t, models.BlockTitle, rendered.Layout[0].Kind)
	assert.True(t, bytes.HasPrefix(rendered.Data, []byte("%PDF-")))
	assert.Empty(t, env.pdfFiles(t, env.dir), "Render never writes files")
}

func TestRender_AttractionSubsectionsInOrder(t *testing.T) {
	env := newTestEnv(t)

	record := &models.ResearchRecord{Destination: "Kyoto"}
	names := []string{"Kinkaku-ji", "Fushimi Inari", "Arashiyama", "Gion", "Nijo Castle", "Kiyomizu-dera"}
	for _, n := range names {
		record.Attractions = append(record.Attractions, models.Attraction{Name: n, Description: strings.Repeat("Worth a visit. ", 40)})
	}

	rendered, err := env.service.Render(context.Background(), record)
	require.NoError(t, err)

	var got []string
	for _, block := range rendered.Layout {
		if block.Kind == models.BlockSubsectionHeading {
			got = append(got, block.Text)
		}
	}
	assert.Equal(t, names, got)
}

func TestRender_IdenticalRecordsGiveIdenticalLayout(t *testing.T) {
	env := newTestEnv(t)
	parser := validation.NewRecordValidationService(arbor.NewLogger())
	record, err := parser.Parse([]byte(tokyoPayload))
	require.NoError(t, err)

	first, err := env.service.Render(context.Background(), record)
	require.NoError(t, err)
	second, err := env.service.Render(context.Background(), record)
	require.NoError(t, err)

	assert.Equal(t, first.PageCount, second.PageCount)
	assert.Equal(t, first.Layout, second.Layout)
	assert.NotEqual(t, first.ReportID, second.ReportID)
}

func encodePNG(t *testing.T, w, h int, fill color.RGBA) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, fill)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestRender_ImagesPlacedAndOmitted(t *testing.T) {
	env := newTestEnv(t)

	hero := encodePNG(t, 80, 40, color.RGBA{R: 30, G: 90, B: 160, A: 255})
	tower := encodePNG(t, 40, 60, color.RGBA{R: 180, G: 150, B: 90, A: 255})

	// The hero answers only after the later attraction image has been served,
	// so completion order is the reverse of plan order.
	towerServed := make(chan struct{})
	var once sync.Once

	mux := http.NewServeMux()
	mux.HandleFunc("/hero.png", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-towerServed:
		case <-time.After(time.Second):
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(hero)
	})
	mux.HandleFunc("/tower.png", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(tower)
		once.Do(func() { close(towerServed) })
	})
	mux.HandleFunc("/page.html", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html><body>login required</body></html>"))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	record := &models.ResearchRecord{
		Destination:   "Lisbon",
		HeroImageURLs: []string{server.URL + "/hero.png"},
		Attractions: []models.Attraction{
			{Name: "Alfama", Description: "Old quarter.", ImageURL: server.URL + "/page.html"},
			{Name: "LX Factory", Description: "Creative hub.", ImageURL: server.URL + "/missing.png"},
			{Name: "Belem Tower", Description: "Fortified tower.", ImageURL: server.URL + "/tower.png"},
		},
	}

	rendered, err := env.service.Render(context.Background(), record)
	require.NoError(t, err)

	assert.Equal(t, 2, rendered.ImagesPlaced)
	assert.Equal(t, 2, rendered.ImagesOmitted)

	var placed []string
	for _, block := range rendered.Layout {
		if block.Kind == models.BlockImage {
			placed = append(placed, block.URL)
		}
	}
	assert.Equal(t, []string{server.URL + "/hero.png", server.URL + "/tower.png"}, placed)

	// Hero image sits between the title and the first section
	require.GreaterOrEqual(t, len(rendered.Layout), 3)
	assert.Equal(t, models.BlockTitle, rendered.Layout[0].Kind)
	assert.Equal(t, models.BlockImage, rendered.Layout[1].Kind)
	assert.Equal(t, server.URL+"/hero.png", rendered.Layout[1].URL)

	// The tower image follows its own attraction, not the hero's slot
	for i, block := range rendered.Layout {
		if block.Kind == models.BlockImage && block.URL == server.URL+"/tower.png" {
			require.Greater(t, i, 1)
			assert.Equal(t, "Fortified tower.", rendered.Layout[i-1].Text)
			assert.Equal(t, "Belem Tower", rendered.Layout[i-2].Text)
		}
	}
}

func TestRender_CancelledContextStillCompletes(t *testing.T) {
	env := newTestEnv(t)
	server := newAssetServer(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rendered, err := env.service.Render(ctx, &models.ResearchRecord{
		Destination:   "Porto",
		Overview:      "River city.",
		HeroImageURLs: []string{server.URL + "/photo.png"},
	})
	require.NoError(t, err)
	assert.Zero(t, rendered.ImagesPlaced)
	assert.Equal(t, 1, rendered.ImagesOmitted)
	assert.Equal(t, 1, rendered.PageCount)
}

func TestGenerate_MalformedPayloadWritesNothing(t *testing.T) {
	env := newTestEnv(t)

	payloads := []string{
		`{"destination": "Tokyo"`,
		`{"overview": "no destination"}`,
		"",
		"destination: [broken",
	}
	for _, payload := range payloads {
		result, err := env.service.Generate(context.Background(), []byte(payload), "")
		require.Error(t, err, "payload %q", payload)
		assert.Nil(t, result)

		var inputErr *models.InputError
		assert.True(t, errors.As(err, &inputErr), "payload %q gave %T", payload, err)
	}

	assert.Empty(t, env.pdfFiles(t, env.dir))
}

func TestGenerate_ExplicitPaths(t *testing.T) {
	env := newTestEnv(t)
	target := filepath.Join(t.TempDir(), "reports", "custom.pdf")

	result, err := env.service.Generate(context.Background(), []byte(`destination: Seoul`), target)
	require.NoError(t, err)
	assert.Equal(t, target, result.Path)
	assert.FileExists(t, target)

	outDir := t.TempDir()
	result, err = env.service.Generate(context.Background(), []byte(`destination: Busan, Korea`), outDir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(outDir, "travel_report_Busan_Korea.pdf"), result.Path)
	assert.FileExists(t, result.Path)
}

func TestGenerate_UnwritableDestination(t *testing.T) {
	env := newTestEnv(t)

	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	result, err := env.service.Generate(context.Background(), []byte(tokyoPayload), filepath.Join(blocker, "report.pdf"))
	require.Error(t, err)
	assert.Nil(t, result)

	var renderErr *models.RenderError
	require.True(t, errors.As(err, &renderErr))
	assert.Equal(t, "write", renderErr.Op)
}

func TestGenerateRecord_RejectsInvalidRecord(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.service.GenerateRecord(context.Background(), &models.ResearchRecord{Destination: " "}, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrInvalidRecord)
	assert.Empty(t, env.pdfFiles(t, env.dir))
}

func TestRender_NormalizesMarkdown(t *testing.T) {
	env := newTestEnv(t)

	record := &models.ResearchRecord{Destination: "Berlin", Overview: "**Berlin** is [vibrant](https://example.com)."}
	rendered, err := env.service.Render(context.Background(), record)
	require.NoError(t, err)
	require.Len(t, rendered.Layout, 3)
	assert.Equal(t, "Berlin is vibrant.", rendered.Layout[2].Text)

	env.config.Render.NormalizeText = false
	rendered, err = env.service.Render(context.Background(), record)
	require.NoError(t, err)
	assert.Equal(t, "**Berlin** is [vibrant](https://example.com).", rendered.Layout[2].Text)
}

type failingBuilder struct {
	rendered []models.BlockKind
}

func (f *failingBuilder) RenderTitle(text string) { f.rendered = append(f.rendered, models.BlockTitle) }
func (f *failingBuilder) RenderSectionHeading(text string) {}
func (f *failingBuilder) RenderSubsectionHeading(text string) {}
func (f *failingBuilder) RenderParagraph(text string) {}
func (f *failingBuilder) RenderBullet(text string) {}
func (f *failingBuilder) RenderImage(result models.ImageResult, widthHint float64) {
	f.rendered = append(f.rendered, models.BlockImage)
}
func (f *failingBuilder) Finish() ([]byte, error) { return nil, nil }
func (f *failingBuilder) Layout() []models.PlacedBlock { return nil }
func (f *failingBuilder) PageCount() int { return 0 }
func (f *failingBuilder) Err() error { return &models.RenderError{Op: "layout", Err: errors.New("boom")} }

func TestRenderBlocks_SurfacesBuilderError(t *testing.T) {
	builder := &failingBuilder{}
	blocks := []models.ContentBlock{
		{Kind: models.BlockTitle, Text: "X"},
		{Kind: models.BlockImage, URL: "https://example.com/a.png", Width: 80},
	}

	err := renderBlocks(builder, blocks, nil)
	require.Error(t, err)
	assert.Equal(t, []models.BlockKind{models.BlockTitle, models.BlockImage}, builder.rendered)

	err = renderBlocks(builder, []models.ContentBlock{{Kind: "table"}}, nil)
	var renderErr *models.RenderError
	require.True(t, errors.As(err, &renderErr))
	assert.Equal(t, "plan", renderErr.Op)
}
