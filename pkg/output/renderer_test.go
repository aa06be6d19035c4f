// Test Type: Unit Test
// Description: Tests for text and YAML rendering of engine results

package output

import (
	"bytes"
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/dotmod/pkg/engine"
	"github.com/arthur-debert/dotmod/pkg/fingerprint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func newTestRenderer(t *testing.T, format Format) (*Renderer, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	r, err := NewRenderer(&buf, format, false)
	require.NoError(t, err)
	return r, &buf
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatText, f)

	f, err = ParseFormat("YAML")
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, f)

	_, err = ParseFormat("xml")
	assert.Error(t, err)
}

func TestRenderResults_Text(t *testing.T) {
	r, buf := newTestRenderer(t, FormatText)

	err := r.RenderResults([]engine.ModuleResult{
		{Module: "git", Outcome: engine.OutcomeEnabled, Created: []string{"/home/me/.gitconfig"}},
		{
			Module:  "vim",
			Outcome: engine.OutcomePartial,
			Removed: []string{"/home/me/.vimrc"},
			Warnings: []engine.Warning{
				{Path: "/home/me/.vim", Kind: fingerprint.KindDirectory, Reason: engine.ReasonBlocked},
			},
		},
		{Module: "zsh", Outcome: engine.OutcomeFailed, Err: stderrors.New("boom")},
	})
	require.NoError(t, err)

	out := buf.String()
	assert.NotContains(t, out, "\x1b[", "buffers are never colored")
	assert.Contains(t, out, "git enabled\n")
	assert.Contains(t, out, "  + /home/me/.gitconfig\n")
	assert.Contains(t, out, "  - /home/me/.vimrc\n")
	assert.Contains(t, out, "  ! /home/me/.vim (directory, blocked)\n")
	assert.Contains(t, out, "zsh failed: boom\n")
}

func TestRenderModules_Text(t *testing.T) {
	r, buf := newTestRenderer(t, FormatText)

	err := r.RenderModules([]engine.ModuleStatus{
		{Name: "base", InRegistry: true},
		{Name: "git", InRegistry: true, Enabled: true, Owned: 2, Imports: []string{"base"}},
		{Name: "gone", Enabled: true, Owned: 1},
		{Name: "broken", InRegistry: true, Err: stderrors.New("bad link")},
	})
	require.NoError(t, err)

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 4)
	assert.Contains(t, string(lines[0]), "available")
	assert.Contains(t, string(lines[1]), "enabled 2 paths imports base")
	assert.Contains(t, string(lines[2]), "orphaned")
	assert.Contains(t, string(lines[3]), "invalid: bad link")
}

func TestRenderOwned_YAML(t *testing.T) {
	r, buf := newTestRenderer(t, FormatYAML)

	err := r.RenderOwned([]engine.OwnedPath{
		{
			Module: "git",
			Path:   "/home/me/.gitconfig",
			Info:   fingerprint.PathInfo{Kind: fingerprint.KindFile, Size: 3, Digest: "abc"},
			Status: fingerprint.Changed,
		},
	})
	require.NoError(t, err)

	var views []OwnedView
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &views))
	require.Len(t, views, 1)
	assert.Equal(t, "changed", views[0].Status)
	assert.Equal(t, "file", views[0].Kind)
	assert.Equal(t, int64(3), views[0].Size)
}

func TestRenderDigests_Text(t *testing.T) {
	r, buf := newTestRenderer(t, FormatText)

	err := r.RenderDigests([]engine.SourceDigest{
		{Name: "gitconfig", Status: engine.DigestMatch, Digest: "abc"},
		{Name: "wallpaper", Status: engine.DigestMissing},
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Regexp(t, `gitconfig\s+match\s+abc`, out)
	assert.Regexp(t, `wallpaper\s+missing\s+-`, out)
}

func TestRenderMessage(t *testing.T) {
	r, buf := newTestRenderer(t, FormatText)
	require.NoError(t, r.RenderMessage("Muted", "nothing to do"))
	require.NoError(t, r.RenderError(stderrors.New("bad")))
	assert.Equal(t, "nothing to do\nError: bad\n", buf.String())

	r, buf = newTestRenderer(t, FormatYAML)
	require.NoError(t, r.RenderMessage("Muted", "nothing to do"))
	assert.Empty(t, buf.String())
}

func TestLoadStyles(t *testing.T) {
	r, _ := newTestRenderer(t, FormatText)

	path := filepath.Join(t.TempDir(), "styles.yaml")
	require.NoError(t, os.WriteFile(path, []byte("styles:\n  Custom: { bold: true }\n"), 0644))
	require.NoError(t, r.LoadStyles(path))

	assert.Contains(t, r.styles, "Custom")
	assert.Contains(t, r.styles, "Module")

	assert.Error(t, r.LoadStyles(filepath.Join(t.TempDir(), "missing.yaml")))
}

func TestPad(t *testing.T) {
	assert.Equal(t, "ab   ", pad(5, "ab"))
	assert.Equal(t, "abcdef", pad(3, "abcdef"))
}
