package qr

import (
	"fmt"
	"strings"

	"github.com/skip2/go-qrcode"
)

const (
	minImageSize = 64
	maxImageSize = 1024
)

// Generator renders share links as PNG QR codes.
type Generator struct {
	size int
}

// NewGenerator clamps the configured pixel size into a usable range.
func NewGenerator(size int) *Generator {
	if size < minImageSize {
		size = minImageSize
	}
	if size > maxImageSize {
		size = maxImageSize
	}
	return &Generator{size: size}
}

// EncodePNG returns a PNG image encoding the provided link.
func (g *Generator) EncodePNG(link string) ([]byte, error) {
	trimmed := strings.TrimSpace(link)
	if trimmed == "" {
		return nil, fmt.Errorf("link is required")
	}
	png, err := qrcode.Encode(trimmed, qrcode.Medium, g.size)
	if err != nil {
		return nil, fmt.Errorf("encoding qr code: %w", err)
	}
	return png, nil
}

// Size reports the configured image dimension in pixels.
func (g *Generator) Size() int {
	return g.size
}
