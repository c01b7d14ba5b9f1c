package images

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/ternarybob/travelpdf/internal/models"
)

// pngHeaderLen covers the signature plus the IHDR chunk
const pngHeaderLen = 33

var errNotImage = errors.New("content is not an image")

// safeDecode wraps decode so a decoder panic on hostile input is just another
// decode failure.
func safeDecode(data []byte, contentType string, maxPixels int) (img *models.FetchedImage, err error) {
	defer func() {
		if r := recover(); r != nil {
			img = nil
			err = fmt.Errorf("decoder panic: %v", r)
		}
	}()
	return decode(data, contentType, maxPixels)
}

// decode validates the bytes as an image and converts them into a form the
// PDF writer embeds directly: JPEG as-is, PNG as 8-bit non-interlaced, and
// every other decodable format re-encoded as PNG.
func decode(data []byte, contentType string, maxPixels int) (*models.FetchedImage, error) {
	if len(data) == 0 {
		return nil, errors.New("empty body")
	}

	sniffed := mimetype.Detect(data)
	if !strings.HasPrefix(sniffed.String(), "image/") {
		return nil, fmt.Errorf("%w: sniffed %s", errNotImage, sniffed.String())
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("read header (%s): %w", sniffed.String(), err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("invalid dimensions %dx%d", cfg.Width, cfg.Height)
	}
	if maxPixels > 0 && cfg.Width*cfg.Height > maxPixels {
		return nil, fmt.Errorf("%dx%d exceeds %d pixels", cfg.Width, cfg.Height, maxPixels)
	}

	raster, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", format, err)
	}

	out := &models.FetchedImage{
		ContentType: contentType,
		Width:       cfg.Width,
		Height:      cfg.Height,
	}

	switch {
	case format == "jpeg":
		out.Format = models.ImageFormatJPEG
		out.Data = data
	case format == "png" && embeddablePNG(data):
		out.Format = models.ImageFormatPNG
		out.Data = data
	default:
		encoded, err := encodePNG(raster)
		if err != nil {
			return nil, fmt.Errorf("re-encode %s: %w", format, err)
		}
		out.Format = models.ImageFormatPNG
		out.Data = encoded
	}

	return out, nil
}

// declaredFormat applies the content-type rule: "png" anywhere means PNG,
// anything else is treated as JPEG.
func declaredFormat(contentType string) models.ImageFormat {
	if strings.Contains(strings.ToLower(contentType), "png") {
		return models.ImageFormatPNG
	}
	return models.ImageFormatJPEG
}

// embeddablePNG reports whether the PNG is 8-bit (or less) and not interlaced.
func embeddablePNG(data []byte) bool {
	if len(data) < pngHeaderLen {
		return false
	}
	bitDepth := data[24]
	interlace := data[28]
	return bitDepth <= 8 && interlace == 0
}

func encodePNG(src image.Image) ([]byte, error) {
	bounds := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(dst, dst.Bounds(), src, bounds.Min, draw.Src)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
