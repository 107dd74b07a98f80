package resource

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/sync/errgroup"

	"l14core/pkg/images"
)

// References lists the external resources a document names.
type References struct {
	Images      []string
	Stylesheets []string
}

// All returns images followed by stylesheets.
func (r References) All() []string {
	return append(append([]string{}, r.Images...), r.Stylesheets...)
}

// CollectReferences finds <img src> and <link rel=stylesheet href> in
// document order, without duplicates or data: URIs.
func CollectReferences(doc *html.Node) References {
	var refs References
	seen := make(map[string]bool)
	add := func(list *[]string, ref string) {
		ref = strings.TrimSpace(ref)
		if ref == "" || images.IsDataURI(ref) || seen[ref] {
			return
		}
		seen[ref] = true
		*list = append(*list, ref)
	}
	sel := goquery.NewDocumentFromNode(doc)
	sel.Find("img[src]").Each(func(_ int, s *goquery.Selection) {
		add(&refs.Images, s.AttrOr("src", ""))
	})
	sel.Find("link[href]").Each(func(_ int, s *goquery.Selection) {
		for _, rel := range strings.Fields(strings.ToLower(s.AttrOr("rel", ""))) {
			if rel == "stylesheet" {
				add(&refs.Stylesheets, s.AttrOr("href", ""))
				return
			}
		}
	})
	return refs
}

// Prefetch fetches refs with at most limit requests in flight and returns
// a loader holding every successful body under its original reference.
// Failed fetches are logged and skipped; only cancellation of ctx is
// returned as an error.
func Prefetch(ctx context.Context, f *Fetcher, refs []string, limit int) (*MemoryLoader, error) {
	loader := NewMemoryLoader()
	if limit <= 0 {
		limit = 4
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for _, ref := range refs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			body, contentType, err := f.Fetch(gctx, ref)
			if err != nil {
				logger().Debug("prefetch failed", zap.String("ref", ref), zap.Error(err))
				return nil
			}
			loader.Put(ref, body, contentType)
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return loader, err
	}
	return loader, nil
}
