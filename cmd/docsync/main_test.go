package main_test

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/fwojciec/docsync"
	main "github.com/fwojciec/docsync/cmd/docsync"
	"github.com/fwojciec/docsync/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testManifestURL = "https://docs.test/manifest.json"

const testManifest = `{"categories":[
	{"name":"Getting Started","slug":"start","description":"First steps","docs":[
		{"title":"Quickstart","url":"https://docs.test/quickstart","filename":"quickstart.md","description":"Run a first sync"},
		{"title":"Install","url":"https://docs.test/install","filename":"install.md","description":"Install the binary"}]},
	{"name":"Reference","slug":"reference","description":"Lookup material","docs":[
		{"title":"CLI","url":"https://docs.test/cli","filename":"cli.md","description":"Commands and flags"}]}]}`

// site serves a manifest and markdown documents by URL.
type site struct {
	mu    sync.Mutex
	pages map[string]string
}

func newSite() *site {
	return &site{pages: map[string]string{
		testManifestURL:                  testManifest,
		"https://docs.test/quickstart.md": "---\ntitle: Quickstart\n---\n\nRun `docsync update check`.\n",
		"https://docs.test/install.md":    "# Install\n\nDownload the binary.\n",
		"https://docs.test/cli.md":        "# CLI\n\n## Flags\n\nUse --format json for agents.\n",
	}}
}

func (s *site) set(url, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages[url] = body
}

func (s *site) fetcher() *mock.Fetcher {
	return &mock.Fetcher{FetchFn: func(_ context.Context, url string) (string, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		body, ok := s.pages[url]
		if !ok {
			return "", &docsync.StatusError{URL: url, StatusCode: 404}
		}
		return body, nil
	}}
}

type testCLI struct {
	t    *testing.T
	dir  string
	site *site
}

func newTestCLI(t *testing.T) *testCLI {
	t.Helper()
	dir := t.TempDir()
	writeConfig(t, dir, `manifest_url = "`+testManifestURL+`"
max_retries = 0
retry_delay = "0s"
`)
	return &testCLI{t: t, dir: dir, site: newSite()}
}

func (c *testCLI) run(args ...string) (string, string, error) {
	c.t.Helper()
	m := main.NewMain()
	m.DataDir = c.dir
	m.EnvFile = ""
	m.Fetcher = c.site.fetcher()

	var stdout, stderr bytes.Buffer
	err := m.Run(context.Background(), args, &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

func (c *testCLI) runJSON(v any, args ...string) error {
	c.t.Helper()
	stdout, _, err := c.run(append([]string{"--format", "json"}, args...)...)
	require.NoError(c.t, json.Unmarshal([]byte(stdout), v), stdout)
	return err
}

func TestMain_Run_Help(t *testing.T) {
	t.Parallel()

	c := newTestCLI(t)
	stdout, _, err := c.run("--help")

	require.NoError(t, err)
	for _, cmd := range []string{"update", "list", "get", "search"} {
		assert.Contains(t, stdout, cmd)
	}
}

func TestMain_Run_NoCommand(t *testing.T) {
	t.Parallel()

	c := newTestCLI(t)
	_, _, err := c.run()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no command specified")
}

func TestMain_Run_UpdateWorkflow(t *testing.T) {
	t.Parallel()

	c := newTestCLI(t)

	// Given a fresh data directory, when checking
	var check struct {
		UpdateAvailable bool `json:"updateAvailable"`
		Changes         struct {
			Added    []string `json:"added"`
			Modified []string `json:"modified"`
			Deleted  []string `json:"deleted"`
		} `json:"changes"`
		Stats struct {
			Source     string `json:"source"`
			Total      int    `json:"total"`
			Successful int    `json:"successful"`
		} `json:"stats"`
	}
	require.NoError(t, c.runJSON(&check, "update", "check"))

	// Then every document is staged as added
	assert.True(t, check.UpdateAvailable)
	assert.Equal(t, []string{"quickstart.md", "install.md", "cli.md"}, check.Changes.Added)
	assert.Empty(t, check.Changes.Modified)
	assert.Equal(t, "remote", check.Stats.Source)
	assert.Equal(t, 3, check.Stats.Successful)
	assert.NoFileExists(t, filepath.Join(c.dir, "docs", "install.md"))

	// When committing
	var commit struct {
		Success bool `json:"success"`
		Summary struct {
			Total      int `json:"total"`
			Downloaded int `json:"downloaded"`
			Failed     int `json:"failed"`
		} `json:"summary"`
		ChangelogEntry struct {
			Message string `json:"message"`
			Added   int    `json:"added"`
		} `json:"changelogEntry"`
	}
	require.NoError(t, c.runJSON(&commit, "update", "commit", "initial docs"))

	// Then the documents are installed
	assert.True(t, commit.Success)
	assert.Equal(t, 3, commit.Summary.Downloaded)
	assert.Equal(t, "initial docs", commit.ChangelogEntry.Message)
	assert.Equal(t, 3, commit.ChangelogEntry.Added)

	data, err := os.ReadFile(filepath.Join(c.dir, "docs", "quickstart.md"))
	require.NoError(t, err)
	assert.Equal(t, "# Quickstart\n\nRun `docsync update check`.\n", string(data))

	// And status reports them
	var status struct {
		Installed        bool `json:"installed"`
		PendingUpdates   bool `json:"pendingUpdates"`
		ChangelogEntries []struct {
			Message string `json:"message"`
		} `json:"changelogEntries"`
		Stats struct {
			Documents int `json:"documents"`
		} `json:"stats"`
	}
	require.NoError(t, c.runJSON(&status, "update", "status"))
	assert.True(t, status.Installed)
	assert.False(t, status.PendingUpdates)
	assert.Equal(t, 3, status.Stats.Documents)
	require.Len(t, status.ChangelogEntries, 1)

	// When the site changes and the update is discarded
	c.site.set("https://docs.test/cli.md", "# CLI\n\nRewritten.\n")
	stdout, _, err := c.run("update", "check")
	require.NoError(t, err)
	assert.Contains(t, stdout, "cli.md")

	var discard struct {
		Success   bool `json:"success"`
		Discarded struct {
			PendingFiles int      `json:"pendingFiles"`
			FileList     []string `json:"fileList"`
		} `json:"discarded"`
	}
	require.NoError(t, c.runJSON(&discard, "update", "discard"))

	// Then the committed copy is untouched
	assert.True(t, discard.Success)
	assert.Equal(t, []string{"cli.md"}, discard.Discarded.FileList)
	data, err = os.ReadFile(filepath.Join(c.dir, "docs", "cli.md"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Use --format json for agents.")
}

func TestMain_Run_CommitWithoutPending(t *testing.T) {
	t.Parallel()

	c := newTestCLI(t)
	stdout, _, err := c.run("update", "commit", "nothing here")

	require.NoError(t, err)
	assert.Contains(t, stdout, "Nothing to commit")
}

func TestMain_Run_CommitRequiresMessage(t *testing.T) {
	t.Parallel()

	c := newTestCLI(t)
	_, _, err := c.run("update", "check")
	require.NoError(t, err)

	var out struct {
		Success bool `json:"success"`
		Error   struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	err = c.runJSON(&out, "update", "commit", "  ")

	require.Error(t, err)
	assert.False(t, out.Success)
	assert.Equal(t, docsync.EINVALID, out.Error.Code)
}

func TestMain_Run_CheckFallsBackToBundledManifest(t *testing.T) {
	t.Parallel()

	c := newTestCLI(t)
	c.site.set(testManifestURL, "not json")

	var check struct {
		UpdateAvailable bool `json:"updateAvailable"`
		Stats           struct {
			Source string `json:"source"`
			Total  int    `json:"total"`
			Failed int    `json:"failed"`
		} `json:"stats"`
		Failed []struct {
			Filename string `json:"filename"`
			Error    string `json:"error"`
		} `json:"failed"`
	}
	err := c.runJSON(&check, "update", "check")

	// Every bundled document is unreachable, but the check still reports.
	require.NoError(t, err)
	assert.False(t, check.UpdateAvailable)
	assert.Equal(t, "bundled", check.Stats.Source)
	assert.Equal(t, check.Stats.Total, check.Stats.Failed)
	require.NotEmpty(t, check.Failed)
	assert.Contains(t, check.Failed[0].Error, "HTTP 404")
}

func TestMain_Run_ListGetSearch(t *testing.T) {
	t.Parallel()

	c := newTestCLI(t)
	_, _, err := c.run("update", "check")
	require.NoError(t, err)
	_, _, err = c.run("update", "commit", "initial docs")
	require.NoError(t, err)

	t.Run("list", func(t *testing.T) {
		var out struct {
			Documents []struct {
				Filename string `json:"filename"`
				Title    string `json:"title"`
			} `json:"documents"`
		}
		require.NoError(t, c.runJSON(&out, "list"))

		require.Len(t, out.Documents, 3)
		assert.Equal(t, "cli.md", out.Documents[0].Filename)
		assert.Equal(t, "CLI", out.Documents[0].Title)
	})

	t.Run("list manifest", func(t *testing.T) {
		stdout, _, err := c.run("list", "--manifest")

		require.NoError(t, err)
		assert.Contains(t, stdout, "Getting Started")
		assert.Contains(t, stdout, "quickstart.md")
	})

	t.Run("get", func(t *testing.T) {
		stdout, _, err := c.run("get", "install.md")

		require.NoError(t, err)
		assert.Equal(t, "# Install\n\nDownload the binary.\n", stdout)
	})

	t.Run("get sections", func(t *testing.T) {
		stdout, _, err := c.run("get", "--sections", "cli.md")

		require.NoError(t, err)
		assert.Contains(t, stdout, "Flags")
		assert.Contains(t, stdout, "#flags")
	})

	t.Run("get missing", func(t *testing.T) {
		_, _, err := c.run("get", "missing.md")

		assert.Equal(t, docsync.ENOTFOUND, docsync.ErrorCode(err))
	})

	t.Run("search", func(t *testing.T) {
		var out struct {
			Matches []struct {
				Filename string `json:"filename"`
				Lines    []struct {
					Number int    `json:"number"`
					Text   string `json:"text"`
				} `json:"lines"`
			} `json:"matches"`
		}
		require.NoError(t, c.runJSON(&out, "search", "FORMAT JSON"))

		require.Len(t, out.Matches, 1)
		assert.Equal(t, "cli.md", out.Matches[0].Filename)
		require.Len(t, out.Matches[0].Lines, 1)
		assert.True(t, strings.Contains(out.Matches[0].Lines[0].Text, "--format json"))
	})
}
