package compositor

import (
	"errors"
	"fmt"
	"image"
	"log/slog"

	"slicecompositor/internal/models"
	"slicecompositor/pkg/layers"
	"slicecompositor/pkg/texture"
	"slicecompositor/pkg/viewport"
)

// ImageData is the registry of layers the renderer composites
type ImageData interface {
	Iterate(filters ...layers.Filter) *layers.Iterator
	Main() models.Layer
	Segmentation() models.Layer
	IsMainLoaded() bool
	IsSegmentationLoaded() bool
	IDs() []models.LayerID
}

// DisplaySettings supplies interpolation, colours and thumbnail options
type DisplaySettings interface {
	Interpolation() models.Interpolation
	UIElement(kind models.UIElementKind) models.UIElement
	OverlaysVisible() bool
	SegmentationOpacity() float64
	ThumbnailEnabled() bool
	ThumbnailSettings() viewport.ThumbnailSettings
}

// GridProvider supplies the current tiling
type GridProvider interface {
	Grid() models.GridLayout
}

// CameraProvider supplies the current view state. TileSize is ignored; the
// renderer derives it from the viewport and the grid.
type CameraProvider interface {
	View() models.ViewState
}

// Pass describes the sub-pass an overlay is painted in
type Pass struct {
	Mode    RenderMode
	Surface Surface
	View    models.ViewState

	// Transform maps voxel coordinates into the current viewport
	Transform viewport.Affine
}

// Overlay is drawn on top of the image layers
type Overlay interface {
	Paint(p Pass) error
}

// OverlayFunc adapts a function to Overlay
type OverlayFunc func(p Pass) error

func (f OverlayFunc) Paint(p Pass) error { return f(p) }

// Renderer composites the image data into a surface. It is driven from the
// thread that owns the surface and keeps its texture cache across frames.
type Renderer struct {
	images   ImageData
	settings DisplaySettings
	grid     GridProvider
	camera   CameraProvider
	surface  Surface
	textures *texture.Cache
	tiled    []Overlay
	global   []Overlay
	logger   *slog.Logger
	frames   uint64
}

// Option configures a Renderer
type Option func(*Renderer)

// WithLogger overrides the package logger for one renderer
func WithLogger(l *slog.Logger) Option {
	return func(r *Renderer) { r.logger = l }
}

// WithTiledOverlay adds an overlay painted in every tile and in the thumbnail
func WithTiledOverlay(o Overlay) Option {
	return func(r *Renderer) { r.tiled = append(r.tiled, o) }
}

// WithGlobalOverlay adds an overlay painted once over the whole viewport
func WithGlobalOverlay(o Overlay) Option {
	return func(r *Renderer) { r.global = append(r.global, o) }
}

// WithTextureCache shares a texture cache, e.g. one with a custom uploader
func WithTextureCache(c *texture.Cache) Option {
	return func(r *Renderer) { r.textures = c }
}

// New creates a renderer. None of the collaborators may be nil.
func New(images ImageData, settings DisplaySettings, grid GridProvider, camera CameraProvider, surface Surface, opts ...Option) *Renderer {
	r := &Renderer{
		images:   images,
		settings: settings,
		grid:     grid,
		camera:   camera,
		surface:  surface,
		logger:   Logger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.textures == nil {
		r.textures = texture.NewCache(texture.WithLogger(r.logger))
	}
	return r
}

// Textures exposes the texture cache
func (r *Renderer) Textures() *texture.Cache {
	return r.textures
}

// Frames is the number of completed Render calls
func (r *Renderer) Frames() uint64 {
	return r.frames
}

// frame collects the per-layer failures of one paint pass
type frame struct {
	errs []error
}

func (f *frame) fail(err error) {
	if err != nil {
		f.errs = append(f.errs, err)
	}
}

// target is where a draw call goes: the sub-pass mode and its transform
type target struct {
	mode RenderMode
	m    viewport.Affine
}

// Render paints one frame into a viewport of the given size. Missing layers
// and empty tiles are not errors. Texture and surface failures are logged
// and returned together after the rest of the frame has been drawn.
func (r *Renderer) Render(size models.Size) error {
	defer func() { r.frames++ }()

	full := image.Rect(0, 0, size.W, size.H)
	r.surface.SetViewport(full)
	r.surface.Clear(r.settings.UIElement(models.ElementBackground2D).NormalColor)

	if !r.images.IsMainLoaded() || size.Empty() {
		return nil
	}

	grid := r.grid.Grid()
	tileSize, err := viewport.TileSize(size, grid)
	if err != nil {
		r.logger.Error("frame skipped", "err", err)
		return err
	}
	view := r.camera.View()
	view.TileSize = tileSize

	tiles, err := viewport.Tiles(view, grid)
	if err != nil {
		r.logger.Error("frame skipped", "err", err)
		return err
	}

	r.textures.Prune(r.images.IDs())

	f := &frame{}
	for _, tile := range tiles {
		r.surface.SetViewport(tile.Viewport)
		t := target{mode: ModeTile, m: tile.Transform}

		if !r.drawImageLayers(f, t, grid, tile.Row, tile.Col) {
			r.logger.Debug("tile has no primary layer", "row", tile.Row, "col", tile.Col)
			continue
		}
		r.drawSegmentation(f, t)
		if r.settings.OverlaysVisible() {
			r.paintOverlays(f, r.tiled, Pass{Mode: ModeTile, Surface: r.surface, View: view, Transform: t.m})
		}
	}

	r.surface.SetViewport(full)

	if r.thumbnailOn(view) {
		r.drawThumbnail(f, view, size, grid)
	}

	r.paintOverlays(f, r.global, Pass{Mode: ModeGlobal, Surface: r.surface, View: view, Transform: viewport.Identity()})

	if err := errors.Join(f.errs...); err != nil {
		r.logger.Error("frame rendered with errors", "frame", r.frames, "errors", len(f.errs), "err", err)
		return err
	}
	r.logger.Debug("frame rendered", "frame", r.frames, "rows", grid.Rows, "cols", grid.Cols,
		"zoom", view.Zoom, "textures", r.textures.Len())
	return nil
}

// LayerForTile picks the primary layer of tile (row, col). Tiles are handed
// out in row-major order to the main layer and the non-sticky overlays;
// label and segmentation layers never own a tile. It returns nil when the
// tile index runs past those layers or the chosen layer is not drawable.
func (r *Renderer) LayerForTile(row, col int, grid models.GridLayout) models.Layer {
	return LayerForTile(r.images, row, col, grid)
}

// LayerForTile is the registry-level form of Renderer.LayerForTile
func LayerForTile(images ImageData, row, col int, grid models.GridLayout) models.Layer {
	if !grid.Valid() || row < 0 || col < 0 || row >= grid.Rows || col >= grid.Cols {
		return nil
	}
	togo := row*grid.Cols + col
	it := images.Iterate(layers.Where(layers.NonSticky))
	for it.Next() {
		if togo == 0 {
			if l := it.Layer(); l.Drawable() {
				return l
			}
			return nil
		}
		togo--
	}
	return nil
}

// drawImageLayers draws everything below the segmentation in one tile and
// reports whether the tile had content.
func (r *Renderer) drawImageLayers(f *frame, t target, grid models.GridLayout, row, col int) bool {
	if t.mode == ModeThumbnail {
		r.drawLayer(f, t, r.images.Main(), false)
		return true
	}

	if grid.Single() {
		it := r.images.Iterate()
		for it.Next() {
			l := it.Layer()
			switch it.Role() {
			case models.RoleMain:
				r.drawLayer(f, t, l, false)
			case models.RoleSegmentation, models.RoleLabel:
				// segmentation goes last with its own opacity
			default:
				if l.Drawable() && l.Opacity() > 0 {
					r.drawLayer(f, t, l, true)
				}
			}
		}
		return true
	}

	primary := r.LayerForTile(row, col, grid)
	if primary == nil {
		return false
	}
	r.drawLayer(f, t, primary, false)

	it := r.images.Iterate(layers.Where(layers.StickyOverlay))
	for it.Next() {
		r.drawLayer(f, t, it.Layer(), true)
	}
	return true
}

func (r *Renderer) drawLayer(f *frame, t target, l models.Layer, transparent bool) {
	if l == nil || !l.Drawable() {
		return
	}
	opts := DrawOptions{Transparent: transparent, Opacity: l.Opacity(), Background: models.White}
	if t.mode == ModeThumbnail {
		opts.Background = r.settings.UIElement(models.ElementZoomThumbnail).NormalColor
	}
	r.drawTexture(f, t, l, opts)
}

func (r *Renderer) drawSegmentation(f *frame, t target) {
	if !r.images.IsSegmentationLoaded() {
		return
	}
	seg := r.images.Segmentation()
	if !seg.Visible() {
		return
	}
	alpha := r.settings.SegmentationOpacity()
	if alpha <= 0 {
		return
	}
	r.drawTexture(f, t, seg, DrawOptions{Transparent: true, Opacity: alpha})
}

func (r *Renderer) drawTexture(f *frame, t target, l models.Layer, opts DrawOptions) {
	tex, err := r.textures.GetOrCreate(l, r.settings.Interpolation())
	if err != nil {
		f.fail(err)
		return
	}
	if tex == nil {
		return
	}
	if err := r.surface.DrawTexture(tex, t.m, opts); err != nil {
		f.fail(fmt.Errorf("draw layer %d (%s): %w", l.ID(), l.Name(), err))
	}
}

func (r *Renderer) paintOverlays(f *frame, overlays []Overlay, p Pass) {
	for _, o := range overlays {
		f.fail(o.Paint(p))
	}
}

func (r *Renderer) thumbnailOn(view models.ViewState) bool {
	return r.settings.ThumbnailEnabled() && viewport.ThumbnailOn(view)
}

// drawThumbnail draws the overview in the bottom-left corner: the main layer
// against the thumbnail background, the tiled overlays, a border around the
// slice and a box around the region visible in one tile.
func (r *Renderer) drawThumbnail(f *frame, view models.ViewState, size models.Size, grid models.GridLayout) {
	elt := r.settings.UIElement(models.ElementZoomThumbnail)
	if !elt.Visible {
		return
	}

	th, err := viewport.ComputeThumbnail(view, size, r.settings.ThumbnailSettings())
	if err != nil {
		r.logger.Warn("thumbnail skipped", "err", err)
		return
	}

	t := target{mode: ModeThumbnail, m: th.SliceTransform(view.Spacing)}
	r.drawImageLayers(f, t, grid, 0, 0)
	r.paintOverlays(f, r.tiled, Pass{Mode: ModeThumbnail, Surface: r.surface, View: view, Transform: t.m})

	border := LineStyle{Color: elt.NormalColor, Width: elt.LineWidth}
	f.fail(r.surface.Stroke(viewport.SliceBorder(view.SliceSize), true, t.m, border))

	box, err := viewport.ExtentBox(view)
	if err != nil {
		f.fail(err)
		return
	}
	active := LineStyle{Color: elt.ActiveColor, Width: elt.LineWidth}
	f.fail(r.surface.Stroke(box, true, th.Transform(), active))
}
