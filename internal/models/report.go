package models

import "time"

// ReportResult describes a generated report.
type ReportResult struct {
	ReportID      string        `json:"report_id"`
	Path          string        `json:"path,omitempty"`
	Size          int64         `json:"size"`
	PageCount     int           `json:"page_count"`
	ImagesPlaced  int           `json:"images_placed"`
	ImagesOmitted int           `json:"images_omitted"`
	Layout        []PlacedBlock `json:"layout"`
	Duration      time.Duration `json:"duration"`
}

// RenderedReport is an in-memory report before it is written anywhere.
type RenderedReport struct {
	ReportResult
	Data []byte `json:"-"`
}

// PDFMetadata contains metadata read back from a PDF document.
type PDFMetadata struct {
	Version     string `json:"version,omitempty"`
	PageCount   int    `json:"page_count"`
	FileSize    int64  `json:"file_size"`
	IsEncrypted bool   `json:"is_encrypted"`
}
