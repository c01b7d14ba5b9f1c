package models

// ImageFormat is the raster encoding handed to the PDF writer.
type ImageFormat string

const (
	ImageFormatJPEG ImageFormat = "JPG"
	ImageFormatPNG  ImageFormat = "PNG"
)

// FetchedImage is a decoded remote image ready to be placed on a page.
// It belongs to the call that fetched it and is never cached.
type FetchedImage struct {
	URL         string
	ContentType string
	Format      ImageFormat
	Data        []byte
	Width       int
	Height      int
}

// ImageResult is the outcome of a fetch. A nil Image means the image is
// absent and Reason says why.
type ImageResult struct {
	URL    string
	Image  *FetchedImage
	Reason string
}

// Absent reports whether the fetch produced nothing placeable.
func (r ImageResult) Absent() bool {
	return r.Image == nil || len(r.Image.Data) == 0 || r.Image.Width <= 0 || r.Image.Height <= 0
}

// AbsentImage builds an absent result for url.
func AbsentImage(url, reason string) ImageResult {
	return ImageResult{URL: url, Reason: reason}
}
