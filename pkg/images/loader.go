// Package images decodes raster images for replaced elements.
package images

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/url"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrEmpty is returned for empty input.
var ErrEmpty = errors.New("images: no data")

// Decode decodes png, jpeg, gif, webp, bmp or tiff bytes.
func Decode(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, ErrEmpty
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	if b := img.Bounds(); b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("decode %s image: empty bounds %v", format, b)
	}
	return img, nil
}

// IsDataURI checks if a string is a data URI
func IsDataURI(s string) bool {
	return strings.HasPrefix(strings.TrimSpace(s), "data:")
}

// DataURIBytes returns the payload of a data: URI, decoding base64 or
// percent-encoding as the URI declares.
func DataURIBytes(uri string) ([]byte, error) {
	uri = strings.TrimSpace(uri)
	if !IsDataURI(uri) {
		return nil, fmt.Errorf("not a data URI: %.20q", uri)
	}
	header, payload, ok := strings.Cut(uri[len("data:"):], ",")
	if !ok {
		return nil, errors.New("data URI has no payload separator")
	}
	if strings.HasSuffix(strings.ToLower(header), ";base64") {
		data, err := base64.StdEncoding.DecodeString(strings.Join(strings.Fields(payload), ""))
		if err != nil {
			return nil, fmt.Errorf("data URI base64: %w", err)
		}
		return data, nil
	}
	text, err := url.PathUnescape(payload)
	if err != nil {
		return nil, fmt.Errorf("data URI escape: %w", err)
	}
	return []byte(text), nil
}

// LoadImageFromDataURI decodes the image carried by a data: URI.
func LoadImageFromDataURI(uri string) (image.Image, error) {
	data, err := DataURIBytes(uri)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

// Cache holds decoded images for one layout pass, keyed by the trimmed
// source reference. Failed decodes are remembered as misses. It is not safe
// for concurrent use.
type Cache struct {
	entries map[string]image.Image
}

func NewCache() *Cache {
	return &Cache{entries: make(map[string]image.Image)}
}

// Get returns the cached image; known is false when src was never stored.
func (c *Cache) Get(src string) (img image.Image, known bool) {
	img, known = c.entries[strings.TrimSpace(src)]
	return img, known
}

// Put stores img (nil for a failed decode) under src.
func (c *Cache) Put(src string, img image.Image) {
	c.entries[strings.TrimSpace(src)] = img
}

// Len returns the number of cached references.
func (c *Cache) Len() int { return len(c.entries) }
