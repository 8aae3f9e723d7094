package docsync_test

import (
	"testing"

	"github.com/fwojciec/docsync"
	"github.com/stretchr/testify/assert"
)

func TestSummarizeDownloads(t *testing.T) {
	t.Parallel()

	t.Run("counts successes and failures", func(t *testing.T) {
		t.Parallel()

		results := []*docsync.DownloadResult{
			{Filename: "A.md", Success: false, Error: "HTTP 503 for https://docs.example.com/A.md", Retries: 3},
			{Filename: "B.md", Success: true, Content: "# B"},
		}

		summary := docsync.SummarizeDownloads(results)

		assert.Equal(t, 2, summary.Total)
		assert.Equal(t, 1, summary.Successful)
		assert.Equal(t, 1, summary.Failed)
		assert.Equal(t, []string{"A.md"}, summary.FailedFiles)
	})

	t.Run("returns zero summary for no results", func(t *testing.T) {
		t.Parallel()

		summary := docsync.SummarizeDownloads(nil)

		assert.Equal(t, docsync.DownloadSummary{}, summary)
	})
}
