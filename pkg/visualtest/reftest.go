package visualtest

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"l14core/pkg/layout"
	"l14core/pkg/page"
)

// ErrNoReference is returned by RunReftest for documents without a
// <link rel="match">.
var ErrNoReference = errors.New("no match reference")

// MatchReference returns the href of the first <link rel="match"> in doc.
func MatchReference(doc *html.Node) string {
	var href string
	goquery.NewDocumentFromNode(doc).Find("link[rel][href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		for _, rel := range strings.Fields(strings.ToLower(s.AttrOr("rel", ""))) {
			if rel == "match" {
				href = strings.TrimSpace(s.AttrOr("href", ""))
				return false
			}
		}
		return true
	})
	return href
}

// RenderFile renders the document at location to an image of the viewport.
func RenderFile(ctx context.Context, r *page.Renderer, location string, vp layout.Viewport) (image.Image, error) {
	doc, err := r.Open(ctx, location)
	if err != nil {
		return nil, err
	}
	_, img, err := r.Render(ctx, doc, vp)
	if err != nil {
		return nil, err
	}
	return img, nil
}

// RenderToPNG renders location and writes the result to out.
func RenderToPNG(ctx context.Context, r *page.Renderer, location, out string, vp layout.Viewport) error {
	img, err := RenderFile(ctx, r, location, vp)
	if err != nil {
		return err
	}
	return SavePNG(img, out)
}

// CompareToReference renders location and compares it with the PNG at
// refPath. When update is set the rendering replaces the reference
// instead and the result is a match.
func CompareToReference(ctx context.Context, r *page.Renderer, location, refPath string, vp layout.Viewport, opts Options, update bool) (*Result, image.Image, error) {
	img, err := RenderFile(ctx, r, location, vp)
	if err != nil {
		return nil, nil, err
	}
	if update {
		if err := SavePNG(img, refPath); err != nil {
			return nil, nil, fmt.Errorf("update reference: %w", err)
		}
		b := img.Bounds()
		return &Result{Match: true, TotalPixels: b.Dx() * b.Dy()}, img, nil
	}
	expected, err := LoadImage(refPath)
	if err != nil {
		return nil, nil, err
	}
	res, err := Compare(img, expected, opts)
	return res, img, err
}

// Reftest is a rendered test page and its rendered match reference.
type Reftest struct {
	TestPath string
	RefPath  string
	Test     image.Image
	Ref      image.Image
	Result   *Result
}

// RunReftest renders testPath and the page its <link rel="match"> names,
// resolved next to testPath, and compares the two renderings.
func RunReftest(ctx context.Context, r *page.Renderer, testPath string, vp layout.Viewport, opts Options) (*Reftest, error) {
	doc, err := r.Open(ctx, testPath)
	if err != nil {
		return nil, err
	}
	href := MatchReference(doc.Root)
	if href == "" {
		return nil, fmt.Errorf("%s: %w", testPath, ErrNoReference)
	}
	rt := &Reftest{TestPath: testPath, RefPath: filepath.Join(filepath.Dir(testPath), filepath.FromSlash(href))}
	if _, err := os.Stat(rt.RefPath); err != nil {
		return nil, fmt.Errorf("reference for %s: %w", testPath, err)
	}

	_, testImg, err := r.Render(ctx, doc, vp)
	if err != nil {
		return nil, fmt.Errorf("render test: %w", err)
	}
	refImg, err := RenderFile(ctx, r, rt.RefPath, vp)
	if err != nil {
		return nil, fmt.Errorf("render reference: %w", err)
	}
	rt.Test, rt.Ref = testImg, refImg

	rt.Result, err = Compare(testImg, refImg, opts)
	if err != nil {
		return nil, err
	}
	return rt, nil
}

// FindReftests walks dir for .html and .xht pages that name a match
// reference. Reference pages themselves are skipped.
func FindReftests(dir string) ([]string, error) {
	var tests []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == "reference" {
				return filepath.SkipDir
			}
			return nil
		}
		ext := filepath.Ext(path)
		if ext != ".html" && ext != ".xht" {
			return nil
		}
		if strings.HasSuffix(strings.TrimSuffix(d.Name(), ext), "-ref") {
			return nil
		}
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		doc, err := html.Parse(f)
		if err != nil {
			return nil
		}
		if MatchReference(doc) != "" {
			tests = append(tests, path)
		}
		return nil
	})
	return tests, err
}
