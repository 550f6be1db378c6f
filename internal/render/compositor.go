// Package render composites radar rasters over a pre-rendered base map.
// Both rasters must already describe the same bounding box; alignment is
// the caller's responsibility and no reprojection happens here.
package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"os"
	"time"

	_ "image/gif"
	_ "image/jpeg"
	"image/png"

	xdraw "golang.org/x/image/draw"

	"github.com/skycastlabs/radarloop/internal/domain"
)

// Compositor overlays radar tiles onto a base map at a fixed opacity.
type Compositor struct {
	opacity float64
}

// NewCompositor creates a compositor. Opacity outside (0, 1] is clamped to
// the default 0.70.
func NewCompositor(opacity float64) *Compositor {
	if opacity <= 0 || opacity > 1 {
		opacity = 0.70
	}
	return &Compositor{opacity: opacity}
}

// Composite decodes the radar tile bytes and draws them over the base map,
// producing one frame of the base map's dimensions. Tiles whose pixel size
// differs from the base map are resampled with Catmull-Rom interpolation.
// Undecodable tile bytes fail only this frame.
func (c *Compositor) Composite(base image.Image, tile []byte, index int, sourceTime time.Time) (domain.CompositedFrame, error) {
	overlay, _, err := image.Decode(bytes.NewReader(tile))
	if err != nil {
		return domain.CompositedFrame{}, fmt.Errorf("decode radar tile %d: %w", index, err)
	}

	bounds := base.Bounds()
	canvas := image.NewRGBA(bounds)
	draw.Draw(canvas, bounds, base, bounds.Min, draw.Src)

	if !overlay.Bounds().Eq(bounds) {
		scaled := image.NewRGBA(bounds)
		xdraw.CatmullRom.Scale(scaled, bounds, overlay, overlay.Bounds(), xdraw.Over, nil)
		overlay = scaled
	}

	mask := image.NewUniform(color.Alpha{A: uint8(c.opacity*255 + 0.5)})
	draw.DrawMask(canvas, bounds, overlay, bounds.Min, mask, image.Point{}, draw.Over)

	return domain.CompositedFrame{
		Index:      index,
		Raster:     canvas,
		SourceTime: sourceTime,
	}, nil
}

// LoadBaseMap decodes the base map once per pipeline run; the returned
// image is shared read-only across all frames.
func LoadBaseMap(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open base map: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode base map: %w", err)
	}
	return img, nil
}

// WritePNG writes a composited frame to the given path.
func WritePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create frame file: %w", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("encode frame png: %w", err)
	}
	return nil
}
