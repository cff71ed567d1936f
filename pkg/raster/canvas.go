// Package raster implements the compositor's Surface on a CPU frame buffer.
// Textures are resampled with golang.org/x/image/draw; lines are stroked
// with gogpu/gg and composited over the frame before the next texture draw.
package raster

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/gogpu/gg"
	xdraw "golang.org/x/image/draw"

	"slicecompositor/internal/models"
	"slicecompositor/pkg/compositor"
	"slicecompositor/pkg/texture"
	"slicecompositor/pkg/viewport"
)

// Canvas is an RGBA frame that accepts compositor draw calls. Viewports and
// transforms use a bottom-left origin; the frame is stored top-down.
type Canvas struct {
	frame    *image.RGBA
	viewport image.Rectangle
	strokes  *gg.Context
}

var _ compositor.Surface = (*Canvas)(nil)

// New allocates a transparent frame
func New(size models.Size) *Canvas {
	c := &Canvas{frame: image.NewRGBA(image.Rect(0, 0, size.W, size.H))}
	c.viewport = c.frame.Bounds()
	return c
}

// Size is the frame size in pixels
func (c *Canvas) Size() models.Size {
	b := c.frame.Bounds()
	return models.Size{W: b.Dx(), H: b.Dy()}
}

// SetViewport restricts drawing to r, given with a bottom-left origin
func (c *Canvas) SetViewport(r image.Rectangle) {
	c.viewport = r.Intersect(c.frame.Bounds())
}

// Clear fills the current viewport with an opaque colour
func (c *Canvas) Clear(col models.Color) {
	if err := c.flushStrokes(); err != nil {
		compositor.Logger().Warn("clear: stroke layer", "err", err)
	}
	xdraw.Draw(c.frame, c.rasterRect(c.viewport), image.NewUniform(toRGBA(col)), image.Point{}, xdraw.Src)
}

// DrawTexture resamples tex into the current viewport through m
func (c *Canvas) DrawTexture(tex *texture.Texture, m viewport.Affine, opts compositor.DrawOptions) error {
	if tex == nil || tex.Image == nil {
		return fmt.Errorf("draw texture: no image")
	}
	if err := c.flushStrokes(); err != nil {
		return fmt.Errorf("draw texture: %w", err)
	}

	rr := c.rasterRect(c.viewport)
	if rr.Empty() {
		return nil
	}
	dst, ok := c.frame.SubImage(rr).(*image.RGBA)
	if !ok {
		return fmt.Errorf("draw texture: unexpected frame type")
	}

	s2d := c.toRaster(m).Aff3()
	sr := tex.Image.Bounds()
	kernel := kernelFor(tex.Interpolation)

	if !opts.Transparent {
		xdraw.NearestNeighbor.Transform(dst, s2d, image.NewUniform(toRGBA(opts.Background)), sr, xdraw.Over, nil)
		kernel.Transform(dst, s2d, tex.Image, sr, xdraw.Over, nil)
		return nil
	}

	alpha := math.Max(0, math.Min(1, opts.Opacity))
	if alpha == 0 {
		return nil
	}
	mask := image.NewUniform(color.Alpha16{A: uint16(math.Round(alpha * 0xffff))})
	kernel.Transform(dst, s2d, tex.Image, sr, xdraw.Over, &xdraw.Options{SrcMask: mask})
	return nil
}

// Stroke draws a polyline through pts, clipped to the current viewport
func (c *Canvas) Stroke(pts []models.Vec2, closed bool, m viewport.Affine, style compositor.LineStyle) error {
	if len(pts) < 2 {
		return nil
	}
	rr := c.rasterRect(c.viewport)
	if rr.Empty() {
		return nil
	}
	if c.strokes == nil {
		b := c.frame.Bounds()
		c.strokes = gg.NewContext(b.Dx(), b.Dy())
	}
	dc := c.strokes

	dc.ClipRect(float64(rr.Min.X), float64(rr.Min.Y), float64(rr.Dx()), float64(rr.Dy()))
	defer dc.ResetClip()

	full := c.toRaster(m)
	start := full.Apply(pts[0])
	dc.MoveTo(start.X, start.Y)
	for _, p := range pts[1:] {
		q := full.Apply(p)
		dc.LineTo(q.X, q.Y)
	}
	if closed {
		dc.ClosePath()
	}

	width := style.Width
	if width <= 0 {
		width = 1
	}
	dc.SetRGB(style.Color.R, style.Color.G, style.Color.B)
	dc.SetLineWidth(width)
	if err := dc.Stroke(); err != nil {
		return fmt.Errorf("stroke %d points: %w", len(pts), err)
	}
	return nil
}

// Frame returns the finished frame
func (c *Canvas) Frame() *image.RGBA {
	if err := c.flushStrokes(); err != nil {
		compositor.Logger().Warn("frame: stroke layer", "err", err)
	}
	return c.frame
}

// SavePNG writes the finished frame to path
func (c *Canvas) SavePNG(path string) error {
	if err := c.flushStrokes(); err != nil {
		return fmt.Errorf("save frame to %s: %w", path, err)
	}
	if err := gg.FromImage(c.frame).SavePNG(path); err != nil {
		return fmt.Errorf("save frame to %s: %w", path, err)
	}
	return nil
}

// flushStrokes composites pending strokes so later draws land on top of them
func (c *Canvas) flushStrokes() error {
	if c.strokes == nil {
		return nil
	}
	xdraw.Draw(c.frame, c.frame.Bounds(), c.strokes.Image(), image.Point{}, xdraw.Over)
	err := c.strokes.Close()
	c.strokes = nil
	if err != nil {
		return fmt.Errorf("release stroke layer: %w", err)
	}
	return nil
}

// rasterRect converts a bottom-left origin rectangle to frame coordinates
func (c *Canvas) rasterRect(r image.Rectangle) image.Rectangle {
	h := c.frame.Bounds().Dy()
	return image.Rect(r.Min.X, h-r.Max.Y, r.Max.X, h-r.Min.Y)
}

// toRaster composes m with the viewport offset and the vertical flip
func (c *Canvas) toRaster(m viewport.Affine) viewport.Affine {
	h := float64(c.frame.Bounds().Dy())
	flip := viewport.Affine{1, 0, 0, 0, -1, h}
	return flip.
		Then(viewport.Translation(float64(c.viewport.Min.X), float64(c.viewport.Min.Y))).
		Then(m)
}

func kernelFor(interp models.Interpolation) xdraw.Interpolator {
	if interp == models.InterpolationLinear {
		return xdraw.BiLinear
	}
	return xdraw.NearestNeighbor
}

func toRGBA(col models.Color) color.RGBA {
	ch := func(v float64) uint8 {
		return uint8(math.Round(math.Max(0, math.Min(1, v)) * 255))
	}
	return color.RGBA{R: ch(col.R), G: ch(col.G), B: ch(col.B), A: 255}
}
