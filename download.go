package docsync

import "context"

// DownloadResult is the outcome of fetching one document.
// Fetch failures are reported through Error and never returned as Go errors.
type DownloadResult struct {
	Filename string `json:"filename"`
	URL      string `json:"url"`
	Success  bool   `json:"success"`
	Content  string `json:"-"`
	Error    string `json:"error,omitempty"`
	Retries  int    `json:"retries"`
}

// DownloadProgress reports batch progress. Current is the filename in
// flight, or empty when nothing is in flight at that instant.
type DownloadProgress struct {
	Total     int
	Completed int
	Failed    int
	Current   string
}

// DownloadProgressFunc is called before and after each document is fetched.
type DownloadProgressFunc func(DownloadProgress)

// ContentFetcher retrieves and transforms a single document.
type ContentFetcher interface {
	// Fetch always returns a result; failures are described by its Error field.
	Fetch(ctx context.Context, doc *DocumentSection) *DownloadResult
}

// DownloadSummary aggregates a batch of download results.
type DownloadSummary struct {
	Total       int      `json:"total"`
	Successful  int      `json:"successful"`
	Failed      int      `json:"failed"`
	FailedFiles []string `json:"failedFiles,omitempty"`
}

// SummarizeDownloads counts successes and failures, listing failed
// filenames in result order.
func SummarizeDownloads(results []*DownloadResult) DownloadSummary {
	s := DownloadSummary{Total: len(results)}
	for _, r := range results {
		if r.Success {
			s.Successful++
			continue
		}
		s.Failed++
		s.FailedFiles = append(s.FailedFiles, r.Filename)
	}
	return s
}
