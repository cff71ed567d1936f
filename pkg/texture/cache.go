// Package texture keeps one uploaded pixel buffer per layer and rebuilds it
// when the layer's pixel data changes.
package texture

import (
	"errors"
	"fmt"
	"image"
	"log/slog"

	"golang.org/x/image/draw"

	"slicecompositor/internal/models"
)

// ErrEmptySlice is returned by the default uploader for a zero-sized slice
var ErrEmptySlice = errors.New("empty display slice")

// Texture is the drawable form of one layer's current display slice
type Texture struct {
	Layer         models.LayerID
	Version       uint64
	Image         *image.RGBA
	Interpolation models.Interpolation
}

// Size returns the texture size in texels
func (t *Texture) Size() models.Size {
	b := t.Image.Bounds()
	return models.Size{W: b.Dx(), H: b.Dy()}
}

// Uploader converts a display slice into texture memory
type Uploader func(slice image.Image) (*image.RGBA, error)

// Upload copies the slice into a premultiplied RGBA buffer anchored at the origin
func Upload(slice image.Image) (*image.RGBA, error) {
	b := slice.Bounds()
	if b.Empty() {
		return nil, ErrEmptySlice
	}
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), slice, b.Min, draw.Src)
	return dst, nil
}

// Cache maps layer ids to textures. It is used from the rendering thread only.
type Cache struct {
	textures map[models.LayerID]*Texture
	upload   Uploader
	logger   *slog.Logger
}

// Option configures a Cache
type Option func(*Cache)

// WithUploader replaces the default Upload function
func WithUploader(u Uploader) Option {
	return func(c *Cache) { c.upload = u }
}

// WithLogger sets the logger used for texture lifecycle events
func WithLogger(l *slog.Logger) Option {
	return func(c *Cache) { c.logger = l }
}

// NewCache creates an empty texture cache
func NewCache(opts ...Option) *Cache {
	c := &Cache{
		textures: make(map[models.LayerID]*Texture),
		upload:   Upload,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetOrCreate returns the texture for layer, building it on first use or
// when the layer's version moved. It returns (nil, nil) when the layer has
// no pixel data yet. An upload failure drops any stale texture and is
// returned to the caller.
func (c *Cache) GetOrCreate(layer models.Layer, interp models.Interpolation) (*Texture, error) {
	if layer == nil || !layer.Initialized() {
		return nil, nil
	}

	id := layer.ID()
	version := layer.Version()
	if tex, ok := c.textures[id]; ok && tex.Version == version {
		tex.Interpolation = interp
		return tex, nil
	}

	slice := layer.DisplaySlice()
	if slice == nil {
		delete(c.textures, id)
		return nil, nil
	}

	img, err := c.upload(slice)
	if err != nil {
		delete(c.textures, id)
		return nil, fmt.Errorf("upload texture for layer %d (%s): %w", id, layer.Name(), err)
	}

	tex := &Texture{Layer: id, Version: version, Image: img, Interpolation: interp}
	c.textures[id] = tex
	c.logger.Debug("texture uploaded", "layer", id, "name", layer.Name(), "version", version,
		"width", img.Bounds().Dx(), "height", img.Bounds().Dy())
	return tex, nil
}

// Prune frees textures whose layer is not in live
func (c *Cache) Prune(live []models.LayerID) int {
	keep := make(map[models.LayerID]struct{}, len(live))
	for _, id := range live {
		keep[id] = struct{}{}
	}
	freed := 0
	for id := range c.textures {
		if _, ok := keep[id]; !ok {
			delete(c.textures, id)
			freed++
		}
	}
	if freed > 0 {
		c.logger.Debug("textures freed", "count", freed)
	}
	return freed
}

// Clear frees every texture
func (c *Cache) Clear() {
	clear(c.textures)
}

// Len is the number of cached textures
func (c *Cache) Len() int {
	return len(c.textures)
}

// Lookup returns the cached texture without rebuilding it
func (c *Cache) Lookup(id models.LayerID) (*Texture, bool) {
	tex, ok := c.textures[id]
	return tex, ok
}
