// Command l14 is a small desktop viewer: it lays out a page for the window
// size, scrolls it, and follows links on click.
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"os"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	"go.uber.org/zap"

	"l14core/pkg/config"
	"l14core/pkg/layout"
	"l14core/pkg/logging"
	"l14core/pkg/page"
	"l14core/pkg/text"
)

// scrollStep is how far one wheel notch moves the page.
const scrollStep = 40

func main() {
	cfgFile := flag.String("config", "", "config file (default is ./l14.yaml)")
	flag.Parse()

	cfg, err := config.Load(*cfgFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log, restore := logging.Install(cfg.Logger)
	defer restore()

	m, err := text.NewMeasurer()
	if err != nil {
		log.Fatal("load fonts", zap.Error(err))
	}

	b := newBrowser(page.NewRenderer(m, cfg.Fetch, cfg.Render.Background), page.ViewportFrom(cfg.Viewport), log)
	b.run(flag.Arg(0))
}

type browser struct {
	renderer *page.Renderer
	viewport layout.Viewport
	log      *zap.Logger

	window fyne.Window
	entry  *widget.Entry
	status *widget.Label
	view   *pageView

	mu      sync.Mutex
	history []string
}

func newBrowser(r *page.Renderer, vp layout.Viewport, log *zap.Logger) *browser {
	return &browser{renderer: r, viewport: vp, log: log.Named("viewer")}
}

func (b *browser) run(start string) {
	a := app.New()
	b.window = a.NewWindow("l14")
	b.window.Resize(fyne.NewSize(float32(b.viewport.WidthPx), float32(b.viewport.HeightPx+60)))

	b.status = widget.NewLabel("Enter a URL or file path and press Enter")
	b.entry = widget.NewEntry()
	b.entry.SetPlaceHolder("https://example.com")
	b.entry.OnSubmitted = func(location string) { b.navigate(location, true) }
	back := widget.NewButton("Back", b.back)

	b.view = newPageView(b.renderer, b.viewport.WidthPx, b.viewport.HeightPx)
	b.view.onLink = func(href string) {
		if location := b.view.document().Resolve(href); location != "" {
			b.navigate(location, true)
		}
	}

	top := container.NewBorder(nil, nil, back, nil, b.entry)
	b.window.SetContent(container.NewBorder(top, b.status, nil, nil, b.view))
	b.window.Canvas().Focus(b.entry)

	if start != "" {
		b.entry.SetText(start)
		b.navigate(start, true)
	}
	b.window.ShowAndRun()
}

func (b *browser) back() {
	b.mu.Lock()
	if len(b.history) < 2 {
		b.mu.Unlock()
		return
	}
	b.history = b.history[:len(b.history)-1]
	prev := b.history[len(b.history)-1]
	b.mu.Unlock()
	b.entry.SetText(prev)
	b.navigate(prev, false)
}

// navigate loads location off the UI goroutine and shows it when done.
func (b *browser) navigate(location string, record bool) {
	b.status.SetText("Loading " + location + "...")
	go func() {
		ctx := context.Background()
		doc, err := b.renderer.Open(ctx, location)
		if err == nil {
			var res *page.Result
			res, err = b.renderer.Layout(ctx, doc, b.viewport)
			if err == nil {
				err = b.view.show(res)
			}
		}
		fyne.Do(func() {
			if err != nil {
				b.log.Warn("navigation failed", zap.String("location", location), zap.Error(err))
				b.status.SetText("Error: " + err.Error())
				return
			}
			if record {
				b.mu.Lock()
				b.history = append(b.history, location)
				b.mu.Unlock()
			}
			b.entry.SetText(location)
			b.status.SetText(location)
			b.window.SetTitle("l14 - " + location)
		})
	}()
}

// pageView paints a laid out page, scrolls it with the wheel and reports
// clicked links.
type pageView struct {
	widget.BaseWidget

	renderer *page.Renderer
	img      *canvas.Image
	onLink   func(href string)

	mu     sync.Mutex
	res    *page.Result
	scroll int
}

func newPageView(r *page.Renderer, w, h int) *pageView {
	img := canvas.NewImageFromImage(image.NewRGBA(image.Rect(0, 0, w, h)))
	img.FillMode = canvas.ImageFillOriginal
	img.ScaleMode = canvas.ImageScalePixels
	v := &pageView{renderer: r, img: img}
	v.ExtendBaseWidget(v)
	return v
}

func (v *pageView) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(v.img)
}

func (v *pageView) document() *page.Document {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.res == nil {
		return &page.Document{}
	}
	return v.res.Document
}

// show replaces the page and paints it from the top.
func (v *pageView) show(res *page.Result) error {
	v.mu.Lock()
	v.res, v.scroll = res, 0
	v.mu.Unlock()
	return v.repaint()
}

func (v *pageView) repaint() error {
	v.mu.Lock()
	res, scroll := v.res, v.scroll
	v.mu.Unlock()
	if res == nil {
		return nil
	}
	img, err := v.renderer.Paint(res, scroll)
	if err != nil {
		return err
	}
	fyne.Do(func() {
		v.img.Image = img
		v.img.Refresh()
	})
	return nil
}

// Scrolled moves the page by whole wheel steps, clamped to the laid out
// height.
func (v *pageView) Scrolled(ev *fyne.ScrollEvent) {
	v.mu.Lock()
	if v.res == nil {
		v.mu.Unlock()
		return
	}
	step := scrollStep
	if ev.Scrolled.DY > 0 {
		step = -scrollStep
	}
	maxScroll := max(v.res.Output.DocumentHeightPx-v.res.Viewport.HeightPx, 0)
	next := min(max(v.scroll+step, 0), maxScroll)
	changed := next != v.scroll
	v.scroll = next
	v.mu.Unlock()

	if changed {
		go v.repaint()
	}
}

func (v *pageView) Tapped(ev *fyne.PointEvent) {
	v.mu.Lock()
	res, scroll := v.res, v.scroll
	v.mu.Unlock()
	if res == nil || v.onLink == nil {
		return
	}
	if href, ok := res.Output.HitTest(int(ev.Position.X), int(ev.Position.Y)+scroll); ok {
		v.onLink(href)
	}
}
