package trafilatura_test

import (
	"testing"

	"github.com/fwojciec/docsync"
	"github.com/fwojciec/docsync/trafilatura"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Ensure Extractor implements docsync.Extractor at compile time.
var _ docsync.Extractor = (*trafilatura.Extractor)(nil)

const docPage = `<!DOCTYPE html>
<html>
<head>
<title>Settings - Example Docs</title>
<meta property="og:title" content="Settings">
</head>
<body>
<nav><a href="/">Home</a> <a href="/docs">Docs</a> <a href="/blog">Blog</a></nav>
<article>
<h1>Settings</h1>
<p>Settings are loaded from a JSON file in your home directory. Project settings override user settings when both define the same key.</p>
<p>Use the <a href="/docs/permissions">permissions</a> block to allow or deny specific tools. Each rule names a tool and an optional pattern.</p>
<pre><code>{"permissions": {"allow": ["Read"]}}</code></pre>
</article>
<footer>Copyright 2026 Example Inc. All rights reserved.</footer>
</body>
</html>`

func TestExtractor_Extract(t *testing.T) {
	t.Parallel()

	t.Run("extracts title and main content", func(t *testing.T) {
		t.Parallel()

		result, err := trafilatura.NewExtractor().Extract(docPage)

		require.NoError(t, err)
		assert.NotEmpty(t, result.Title)
		assert.Contains(t, result.ContentHTML, "Project settings override user settings")
	})

	t.Run("drops footer boilerplate", func(t *testing.T) {
		t.Parallel()

		result, err := trafilatura.NewExtractor().Extract(docPage)

		require.NoError(t, err)
		assert.NotContains(t, result.ContentHTML, "All rights reserved")
	})

	t.Run("returns error for empty input", func(t *testing.T) {
		t.Parallel()

		_, err := trafilatura.NewExtractor().Extract("  ")

		assert.Equal(t, docsync.EINVALID, docsync.ErrorCode(err))
	})
}
