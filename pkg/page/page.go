// Package page runs the full pipeline for one document: load, prefetch,
// style, layout and paint.
package page

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"l14core/pkg/config"
	"l14core/pkg/css"
	"l14core/pkg/dom"
	"l14core/pkg/layout"
	"l14core/pkg/render"
	"l14core/pkg/resource"
)

// Measurer measures text for layout and supplies faces for painting.
type Measurer interface {
	layout.TextMeasurer
	render.FaceSource
}

// Document is a parsed page and where its relative references resolve.
type Document struct {
	Root *html.Node
	// BaseURL is set for documents fetched over the network.
	BaseURL string
	// BaseDir is set for documents read from disk.
	BaseDir string
}

// Result is one laid out document.
type Result struct {
	PassID   uuid.UUID
	Document *Document
	Output   *layout.Output
	Viewport layout.Viewport
}

// Renderer lays out and paints documents. It is safe for concurrent use
// when its Measurer is.
type Renderer struct {
	measurer   Measurer
	fetch      config.FetchConfig
	background css.Color
	log        *zap.Logger
}

// NewRenderer creates a renderer. An unparsable background falls back to
// white.
func NewRenderer(m Measurer, fetch config.FetchConfig, background string) *Renderer {
	bg, ok := css.ParseColor(background)
	if !ok {
		bg = css.White
	}
	return &Renderer{measurer: m, fetch: fetch, background: bg, log: zap.L().Named("page")}
}

// Open reads a document from an http(s) URL or a file path.
func (r *Renderer) Open(ctx context.Context, location string) (*Document, error) {
	if resource.IsNetworkURL(location) {
		if r.fetch.Offline {
			return nil, fmt.Errorf("open %s: network disabled", location)
		}
		f := resource.NewFetcher("", r.fetch.Timeout)
		defer f.Close()
		body, _, err := f.Fetch(ctx, location)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", location, err)
		}
		doc, err := dom.ParseString(string(body))
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", location, err)
		}
		return &Document{Root: doc, BaseURL: location}, nil
	}

	data, err := os.ReadFile(location)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", location, err)
	}
	return Parse(string(data), filepath.Dir(location))
}

// Resolve turns a link found in d into a location Open accepts.
// Fragment-only links resolve to the empty string.
func (d *Document) Resolve(href string) string {
	href = strings.TrimSpace(href)
	switch {
	case href == "" || strings.HasPrefix(href, "#"):
		return ""
	case resource.IsNetworkURL(href):
		return href
	case d.BaseURL != "":
		return resource.ResolveURL(d.BaseURL, href)
	}
	if i := strings.IndexAny(href, "?#"); i >= 0 {
		href = href[:i]
	}
	if filepath.IsAbs(href) || d.BaseDir == "" {
		return filepath.Clean(href)
	}
	return filepath.Join(d.BaseDir, filepath.FromSlash(href))
}

// Parse parses source as a document whose relative references resolve in
// baseDir.
func Parse(source, baseDir string) (*Document, error) {
	doc, err := dom.ParseString(source)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	return &Document{Root: doc, BaseDir: baseDir}, nil
}

// Layout prefetches the document's resources, computes styles and lays it
// out for vp.
func (r *Renderer) Layout(ctx context.Context, doc *Document, vp layout.Viewport) (*Result, error) {
	id := uuid.New()
	log := r.log.With(zap.String("pass", id.String()))
	start := time.Now()

	refs := resource.CollectReferences(doc.Root)
	memory, sheets, err := r.loadResources(ctx, doc, refs, log)
	if err != nil {
		return nil, err
	}

	loaders := resource.Chain{memory}
	if doc.BaseDir != "" {
		loaders = append(loaders, resource.DirLoader{Root: doc.BaseDir})
	}
	out, err := layout.LayoutDocument(doc.Root, css.FromDocument(doc.Root, sheets...), r.measurer, vp, loaders)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	log.Debug("layout done",
		zap.Int("commands", out.DisplayList.Len()),
		zap.Int("links", len(out.LinkRegions)),
		zap.Int("height", out.DocumentHeightPx),
		zap.Duration("elapsed", time.Since(start)))
	return &Result{PassID: id, Document: doc, Output: out, Viewport: vp}, nil
}

// loadResources fetches network references into a memory loader and
// parses the linked stylesheets in document order.
func (r *Renderer) loadResources(ctx context.Context, doc *Document, refs resource.References, log *zap.Logger) (*resource.MemoryLoader, []*css.Stylesheet, error) {
	memory := resource.NewMemoryLoader()
	var fetcher *resource.Fetcher
	if !r.fetch.Offline {
		fetcher = resource.NewFetcher(doc.BaseURL, r.fetch.Timeout)
		defer fetcher.Close()

		var network []string
		for _, ref := range refs.All() {
			if resource.IsNetworkURL(fetcher.Resolve(ref)) {
				network = append(network, ref)
			}
		}
		if len(network) > 0 {
			fetched, err := resource.Prefetch(ctx, fetcher, network, r.fetch.Concurrency)
			if err != nil {
				return nil, nil, fmt.Errorf("prefetch: %w", err)
			}
			memory = fetched
			log.Debug("prefetched", zap.Int("requested", len(network)), zap.Int("loaded", memory.Len()))
		}
	}

	var sheets []*css.Stylesheet
	for _, ref := range refs.Stylesheets {
		data, err := memory.LoadBytes(ref)
		if data == nil && err == nil && doc.BaseDir != "" {
			data, err = resource.DirLoader{Root: doc.BaseDir}.LoadBytes(ref)
		}
		if err != nil || data == nil {
			log.Debug("stylesheet unavailable", zap.String("ref", ref), zap.Error(err))
			continue
		}
		sheets = append(sheets, css.ParseStylesheet(string(data)))
	}
	return memory, sheets, nil
}

// Paint replays res onto a viewport-sized canvas scrolled down by scrollY.
func (r *Renderer) Paint(res *Result, scrollY int) (*image.RGBA, error) {
	bg := r.background
	if res.Output.CanvasBackground != nil {
		bg = *res.Output.CanvasBackground
	}
	canvas := render.NewCanvas(res.Viewport.WidthPx, res.Viewport.HeightPx, bg, r.measurer)
	canvas.SetScroll(scrollY)
	if err := render.Replay(&res.Output.DisplayList, canvas); err != nil {
		return nil, fmt.Errorf("paint: %w", err)
	}
	return canvas.Image(), nil
}

// Render is Layout followed by Paint at the top of the page.
func (r *Renderer) Render(ctx context.Context, doc *Document, vp layout.Viewport) (*Result, *image.RGBA, error) {
	res, err := r.Layout(ctx, doc, vp)
	if err != nil {
		return nil, nil, err
	}
	img, err := r.Paint(res, 0)
	if err != nil {
		return nil, nil, err
	}
	return res, img, nil
}

// ViewportFrom converts configured viewport settings.
func ViewportFrom(c config.ViewportConfig) layout.Viewport {
	return layout.Viewport{WidthPx: c.Width, HeightPx: c.Height, LayoutLimitPx: c.LayoutLimit}
}
