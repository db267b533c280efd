package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToHTML(t *testing.T) {
	out, err := ToHTML("# Be nice\n\n* no spam\n* no ~~jerks~~")
	require.NoError(t, err)
	assert.Contains(t, out, "<h1>Be nice</h1>")
	assert.Contains(t, out, "<li>no spam</li>")
	assert.Contains(t, out, "<del>jerks</del>")
}

func TestToHTML_DropsRawHTML(t *testing.T) {
	out, err := ToHTML("hello <script>alert(1)</script>")
	require.NoError(t, err)
	assert.NotContains(t, out, "<script>")
}

func TestToHTML_Empty(t *testing.T) {
	out, err := ToHTML("  \n")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestIsURL(t *testing.T) {
	assert.True(t, IsURL("https://example.com/coc"))
	assert.True(t, IsURL(" http://example.com"))
	assert.False(t, IsURL("Be excellent to each other."))
}
