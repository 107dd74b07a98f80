package resource

import (
	"bytes"
	"compress/gzip"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"l14core/pkg/dom"
)

func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/plain.css", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/css")
		w.Write([]byte("p { color: red }"))
	})
	mux.HandleFunc("/br.css", func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		bw := brotli.NewWriter(&buf)
		bw.Write([]byte("div { color: blue }"))
		bw.Close()
		w.Header().Set("Content-Type", "text/css")
		w.Header().Set("Content-Encoding", "br")
		w.Write(buf.Bytes())
	})
	mux.HandleFunc("/gz.css", func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		zw := gzip.NewWriter(&buf)
		zw.Write([]byte("span { color: green }"))
		zw.Close()
		w.Header().Set("Content-Type", "text/css")
		w.Header().Set("Content-Encoding", "gzip")
		w.Write(buf.Bytes())
	})
	mux.HandleFunc("/image.bin", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Write([]byte{1, 2, 3})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestFetcherDecodesBodies(t *testing.T) {
	srv := testServer(t)
	f := NewFetcher(srv.URL+"/", 0)
	defer f.Close()

	tests := []struct {
		ref  string
		want string
	}{
		{"plain.css", "p { color: red }"},
		{"br.css", "div { color: blue }"},
		{"/gz.css", "span { color: green }"},
	}
	for _, tt := range tests {
		got, err := f.FetchCSS(context.Background(), tt.ref)
		if err != nil {
			t.Errorf("FetchCSS(%q): %v", tt.ref, err)
			continue
		}
		if got != tt.want {
			t.Errorf("FetchCSS(%q) = %q, want %q", tt.ref, got, tt.want)
		}
	}

	_, err := f.FetchCSS(context.Background(), "image.bin")
	assert.Error(t, err, "non-text content type should be refused as CSS")

	_, _, err = f.Fetch(context.Background(), "missing.css")
	assert.ErrorContains(t, err, "HTTP 404")
}

func TestFetcherRefusesNonNetwork(t *testing.T) {
	f := NewFetcher("", 0)
	defer f.Close()
	_, _, err := f.Fetch(context.Background(), "local/file.css")
	assert.ErrorContains(t, err, "non-network")
}

func TestResolveURL(t *testing.T) {
	assert.Equal(t, "http://a.test/x/b.png", ResolveURL("http://a.test/x/page.html", "b.png"))
	assert.Equal(t, "http://a.test/b.png", ResolveURL("http://a.test/x/page.html", "/b.png"))
	assert.Equal(t, "https://c.test/d", ResolveURL("http://a.test/", "https://c.test/d"))
	assert.True(t, IsNetworkURL("https://x"))
	assert.False(t, IsNetworkURL("ftp://x"))
}

func TestPrefetch(t *testing.T) {
	defer goleak.VerifyNone(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/gone.png" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte(r.URL.Path))
	}))
	f := NewFetcher(srv.URL, 0)

	loader, err := Prefetch(context.Background(), f, []string{"/a.png", "/b.png", "/gone.png", "/c.png"}, 2)
	f.Close()
	srv.Close()
	require.NoError(t, err)

	assert.Equal(t, 3, loader.Len())
	data, err := loader.LoadBytes("/b.png")
	require.NoError(t, err)
	assert.Equal(t, "/b.png", string(data))
	assert.Equal(t, "image/png", loader.ContentType("/b.png"))

	data, err = loader.LoadBytes("/gone.png")
	assert.NoError(t, err)
	assert.Nil(t, data)
}

func TestPrefetchCancelled(t *testing.T) {
	f := NewFetcher("http://127.0.0.1:1", 0)
	defer f.Close()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Prefetch(ctx, f, []string{"/a.png"}, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCollectReferences(t *testing.T) {
	doc, err := dom.ParseString(`<html><head>
<link rel="stylesheet" href="site.css"><link rel="icon" href="fav.ico">
<link rel="Alternate Stylesheet" href="alt.css">
</head><body>
<img src="a.png"><img src=" a.png "><img src="data:image/png;base64,AA=="><img>
<p><img src="b.gif"></p></body></html>`)
	require.NoError(t, err)

	refs := CollectReferences(doc)
	assert.Equal(t, []string{"a.png", "b.gif"}, refs.Images)
	assert.Equal(t, []string{"site.css", "alt.css"}, refs.Stylesheets)
	assert.Equal(t, []string{"a.png", "b.gif", "site.css", "alt.css"}, refs.All())
}

func TestLoaders(t *testing.T) {
	data, err := NoResources{}.LoadBytes("anything.png")
	assert.NoError(t, err)
	assert.Nil(t, data)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pic.png"), []byte("png!"), 0o644))
	d := DirLoader{Root: dir}

	data, err = d.LoadBytes("pic.png")
	require.NoError(t, err)
	assert.Equal(t, "png!", string(data))

	data, err = d.LoadBytes("/pic.png")
	require.NoError(t, err)
	assert.Equal(t, "png!", string(data))

	data, err = d.LoadBytes("nope.png")
	assert.NoError(t, err)
	assert.Nil(t, data)

	_, err = d.LoadBytes("../outside.png")
	assert.Error(t, err)

	data, err = d.LoadBytes("data:text/plain,hi%20there")
	require.NoError(t, err)
	assert.Equal(t, "hi there", string(data))

	m := NewMemoryLoader()
	m.Put("x.svg", []byte("<svg/>"), "image/svg+xml")
	chain := Chain{m, d}
	data, err = chain.LoadBytes("x.svg")
	require.NoError(t, err)
	assert.Equal(t, "<svg/>", string(data))
	data, err = chain.LoadBytes("pic.png")
	require.NoError(t, err)
	assert.Equal(t, "png!", string(data))
}
