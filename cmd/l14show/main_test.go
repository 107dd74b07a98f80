package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"l14core/pkg/visualtest"
)

// run executes a fresh root command from an empty working directory so no
// stray l14.yaml is read.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Chdir(t.TempDir())
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	if args == nil {
		args = []string{}
	}
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writePage(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "page.html")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

const boxPage = `<body style="margin:0"><div style="width:30px;height:10px;background:#0000ff"></div><a href="/next">next</a></body>`

func TestRootCmd_Version(t *testing.T) {
	out, err := run(t, "--version")
	require.NoError(t, err)
	assert.Equal(t, Version+"\n", out)
}

func TestRootCmd_Help(t *testing.T) {
	out, err := run(t)
	require.NoError(t, err)
	for _, sub := range []string{"render", "dump", "batch", "compare"} {
		assert.Contains(t, out, sub)
	}
}

func TestRenderCmd(t *testing.T) {
	page := writePage(t, boxPage)
	output := filepath.Join(t.TempDir(), "shots", "out.png")

	out, err := run(t, "render", page, "-o", output, "--width", "40", "--height", "20", "--offline")
	require.NoError(t, err)
	assert.Equal(t, output+"\n", out)

	img, err := visualtest.LoadImage(output)
	require.NoError(t, err)
	assert.Equal(t, 40, img.Bounds().Dx())
	assert.Equal(t, 20, img.Bounds().Dy())
	_, _, b, _ := img.At(5, 5).RGBA()
	assert.Equal(t, uint32(0xffff), b)
}

func TestRenderCmd_MissingArg(t *testing.T) {
	_, err := run(t, "render")
	assert.Error(t, err)
}

func TestRenderCmd_BadConfig(t *testing.T) {
	page := writePage(t, boxPage)
	_, err := run(t, "render", page, "--width", "0")
	assert.ErrorContains(t, err, "viewport must be positive")
}

func TestDumpCmd(t *testing.T) {
	page := writePage(t, boxPage)
	out, err := run(t, "dump", page, "--width", "40", "--height", "20", "--offline")
	require.NoError(t, err)
	assert.Contains(t, out, "display list")
	assert.Contains(t, out, "rect 0,0 30x10 #0000ff")
	assert.Contains(t, out, "document height")
	assert.Regexp(t, `link 0,10 \d+x\d+ /next`, out)
}

func TestBatchCmd(t *testing.T) {
	first := writePage(t, boxPage)
	second := writePage(t, `<p>second</p>`)
	outDir := t.TempDir()

	out, err := run(t, "batch", first, second, "--out-dir", outDir, "--width", "40", "--height", "20", "--concurrency", "2")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, filepath.Join(outDir, "000-page.png"), lines[0])
	assert.Equal(t, filepath.Join(outDir, "001-page.png"), lines[1])
	for _, l := range lines {
		assert.FileExists(t, l)
	}
}

func TestBatchCmd_Failure(t *testing.T) {
	_, err := run(t, "batch", filepath.Join(t.TempDir(), "missing.html"), "--out-dir", t.TempDir())
	assert.ErrorContains(t, err, "missing.html")
}

func TestCompareCmd(t *testing.T) {
	page := writePage(t, boxPage)
	ref := filepath.Join(t.TempDir(), "ref.png")
	size := []string{"--width", "40", "--height", "20"}

	out, err := run(t, append([]string{"compare", page, ref, "--update"}, size...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "updated")

	out, err = run(t, append([]string{"compare", page, ref}, size...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "match")

	other := writePage(t, `<body style="margin:0;background:#ff0000"></body>`)
	diff := filepath.Join(t.TempDir(), "diff.png")
	_, err = run(t, append([]string{"compare", other, ref, "--diff", diff}, size...)...)
	assert.ErrorContains(t, err, "differs")
	assert.FileExists(t, diff)
}

func TestOutputName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"/tmp/x/index.html", "index"},
		{"https://example.com/", "example"},
		{"https://example.com/a/b.html", "b"},
		{"weird name!.htm", "weird_name_"},
		{"", "page"},
	}
	for _, tt := range tests {
		if got := outputName(tt.in); got != tt.want {
			t.Errorf("outputName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
