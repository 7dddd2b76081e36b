package qrimage

import (
	"bytes"
	"context"
	"fmt"
	"image/color"
	"os"
	"time"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	qrcode "github.com/skip2/go-qrcode"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/yungbote/qrcodes-backend/internal/observability"
	"github.com/yungbote/qrcodes-backend/internal/platform/logger"
)

const (
	labelPadding   = 32
	labelTitleSize = 28
	labelCaption   = 16
)

// LabelRenderer draws a printable card: the QR code with the title and the
// scan URL beneath it.
type LabelRenderer struct {
	log     *logger.Logger
	qrSize  int
	level   qrcode.RecoveryLevel
	title   font.Face
	caption font.Face
}

func NewLabelRenderer(log *logger.Logger, cfg Config) (*LabelRenderer, error) {
	enc, err := NewEncoder(cfg)
	if err != nil {
		return nil, err
	}
	r := &LabelRenderer{
		log:    log.With("component", "LabelRenderer"),
		qrSize: enc.size * 2,
		level:  enc.level,
	}
	ttf, err := loadFont(cfg.FontPath)
	if err != nil {
		r.log.Warn("Label font unavailable, using basic font", "path", cfg.FontPath, "error", err)
		r.title, r.caption = basicfont.Face7x13, basicfont.Face7x13
		return r, nil
	}
	r.title = truetype.NewFace(ttf, &truetype.Options{Size: labelTitleSize, DPI: 72, Hinting: font.HintingNone})
	r.caption = truetype.NewFace(ttf, &truetype.Options{Size: labelCaption, DPI: 72, Hinting: font.HintingNone})
	return r, nil
}

func loadFont(path string) (*truetype.Font, error) {
	raw := goregular.TTF
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read font file: %w", err)
		}
		raw = b
	}
	f, err := truetype.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse TTF: %w", err)
	}
	return f, nil
}

// Render returns the label as PNG bytes.
func (r *LabelRenderer) Render(ctx context.Context, title, url string) (out []byte, err error) {
	start := time.Now()
	defer func() {
		if m := observability.Current(); m != nil {
			m.ObserveEncode("label", observability.StatusLabel(err), time.Since(start))
		}
	}()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	q, err := qrcode.New(url, r.level)
	if err != nil {
		return nil, fmt.Errorf("qr encode: %w", err)
	}
	q.DisableBorder = true
	code := q.Image(r.qrSize)

	width := r.qrSize + 2*labelPadding
	textWidth := float64(width - 2*labelPadding)

	measure := gg.NewContext(width, 1)
	measure.SetFontFace(r.title)
	lines := measure.WordWrap(title, textWidth)
	_, lineH := measure.MeasureString("Hg")
	titleBlock := float64(len(lines)) * lineH * 1.4
	height := labelPadding + r.qrSize + labelPadding + int(titleBlock) + labelCaption*2 + labelPadding

	dc := gg.NewContext(width, height)
	dc.SetColor(color.White)
	dc.Clear()
	dc.DrawImage(code, labelPadding, labelPadding)

	y := float64(labelPadding + r.qrSize + labelPadding)
	dc.SetColor(color.Black)
	dc.SetFontFace(r.title)
	for _, line := range lines {
		dc.DrawStringAnchored(line, float64(width)/2, y, 0.5, 1)
		y += lineH * 1.4
	}

	dc.SetColor(color.Gray{Y: 0x66})
	dc.SetFontFace(r.caption)
	dc.DrawStringAnchored(url, float64(width)/2, y+labelCaption/2, 0.5, 1)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode label png: %w", err)
	}
	return buf.Bytes(), nil
}
