package core

import "time"

// CompressResults lists results of the compression.
type CompressResults struct {
	Start   time.Time
	End     time.Time
	Archive string
	Bytes   int64
	Uploads []UploadResult
}

// UploadResult lists results of an individual upload
type UploadResult struct {
	Target   string
	Filename string
	Bytes    int64
	Start    time.Time
	End      time.Time
}

// DecompressResults lists results of the extraction.
type DecompressResults struct {
	Start   time.Time
	End     time.Time
	Archive string
	Bytes   int64
}
