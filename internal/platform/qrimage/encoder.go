package qrimage

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/yungbote/qrcodes-backend/internal/observability"
)

const dataURIPrefix = "data:image/png;base64,"

type Config struct {
	// Size is the PNG edge length in pixels.
	Size int `yaml:"size"`
	// Level is one of low, medium, high, highest.
	Level string `yaml:"level"`
	// FontPath points at a TTF used for printable labels; empty uses Go Regular.
	FontPath string `yaml:"font_path"`
}

// Encoder renders URLs as QR code PNGs.
type Encoder struct {
	size  int
	level qrcode.RecoveryLevel
}

func NewEncoder(cfg Config) (*Encoder, error) {
	size := cfg.Size
	if size == 0 {
		size = 256
	}
	if size < 64 || size > 2048 {
		return nil, fmt.Errorf("qr image size %d out of range [64, 2048]", size)
	}
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	return &Encoder{size: size, level: level}, nil
}

func parseLevel(s string) (qrcode.RecoveryLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return qrcode.Low, nil
	case "", "medium":
		return qrcode.Medium, nil
	case "high":
		return qrcode.High, nil
	case "highest":
		return qrcode.Highest, nil
	default:
		return 0, fmt.Errorf("unknown qr recovery level %q", s)
	}
}

// PNG encodes url as a PNG.
func (e *Encoder) PNG(url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("qr encode: empty url")
	}
	return qrcode.Encode(url, e.level, e.size)
}

// Encode returns url rendered as a PNG data URI.
func (e *Encoder) Encode(ctx context.Context, url string) (uri string, err error) {
	start := time.Now()
	defer func() {
		if m := observability.Current(); m != nil {
			m.ObserveEncode("data_uri", observability.StatusLabel(err), time.Since(start))
		}
	}()
	if err := ctx.Err(); err != nil {
		return "", err
	}
	png, err := e.PNG(url)
	if err != nil {
		return "", err
	}
	return dataURIPrefix + base64.StdEncoding.EncodeToString(png), nil
}
