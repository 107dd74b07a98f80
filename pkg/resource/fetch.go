package resource

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
)

const userAgent = "l14core/1.0 (compatible; Go)"

// maxBodyBytes caps a single fetched resource.
const maxBodyBytes = 32 << 20

// Fetcher retrieves resources over HTTP/HTTPS, resolving relative
// references against a base URL. It negotiates brotli and gzip itself.
type Fetcher struct {
	baseURL string
	client  *http.Client
}

// NewFetcher creates a Fetcher with its own transport. A zero timeout means
// 30 seconds.
func NewFetcher(baseURL string, timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	return &Fetcher{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout, Transport: transport},
	}
}

// Close releases idle connections.
func (f *Fetcher) Close() {
	f.client.CloseIdleConnections()
}

// Resolve returns the absolute URL for ref.
func (f *Fetcher) Resolve(ref string) string {
	ref = strings.TrimSpace(ref)
	if IsNetworkURL(ref) || f.baseURL == "" {
		return ref
	}
	return ResolveURL(f.baseURL, ref)
}

// Fetch retrieves the resource at ref.
func (f *Fetcher) Fetch(ctx context.Context, ref string) (body []byte, contentType string, err error) {
	resolved := f.Resolve(ref)
	if !IsNetworkURL(resolved) {
		return nil, "", fmt.Errorf("cannot fetch non-network URI: %s", resolved)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, resolved, nil)
	if err != nil {
		return nil, "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Encoding", "br, gzip")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetching %s: %w", resolved, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", fmt.Errorf("HTTP %d fetching %s", resp.StatusCode, resolved)
	}

	reader, err := decodedBody(resp)
	if err != nil {
		return nil, "", fmt.Errorf("decoding %s: %w", resolved, err)
	}
	body, err = io.ReadAll(io.LimitReader(reader, maxBodyBytes))
	if err != nil {
		return nil, "", fmt.Errorf("reading response body: %w", err)
	}
	return body, resp.Header.Get("Content-Type"), nil
}

// FetchCSS fetches a stylesheet and returns its text.
func (f *Fetcher) FetchCSS(ctx context.Context, ref string) (string, error) {
	body, contentType, err := f.Fetch(ctx, ref)
	if err != nil {
		return "", err
	}
	ct := strings.ToLower(contentType)
	if ct != "" && !strings.HasPrefix(ct, "text/") && !strings.Contains(ct, "css") {
		return "", fmt.Errorf("unexpected content type for CSS: %s", contentType)
	}
	return string(body), nil
}

func decodedBody(resp *http.Response) (io.Reader, error) {
	var r io.Reader = resp.Body
	encodings := resp.Header.Values("Content-Encoding")
	for i := len(encodings) - 1; i >= 0; i-- {
		switch enc := strings.ToLower(strings.TrimSpace(encodings[i])); enc {
		case "", "identity":
		case "br":
			r = brotli.NewReader(r)
		case "gzip", "x-gzip":
			zr, err := gzip.NewReader(r)
			if err != nil {
				return nil, err
			}
			r = zr
		default:
			return nil, fmt.Errorf("unsupported content encoding %q", enc)
		}
	}
	return r, nil
}

// ResolveURL resolves a possibly-relative URI against a base URL.
// If ref is already absolute, it is returned as-is.
func ResolveURL(base, ref string) string {
	baseURL, err := url.Parse(base)
	if err != nil {
		return ref
	}
	refURL, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return baseURL.ResolveReference(refURL).String()
}

// IsNetworkURL returns true if the string looks like an HTTP or HTTPS URL.
func IsNetworkURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
