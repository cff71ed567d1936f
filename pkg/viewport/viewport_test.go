package viewport

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slicecompositor/internal/models"
)

func testView() models.ViewState {
	return models.ViewState{
		Zoom:      2,
		Pan:       models.Vec2{X: 50, Y: 25},
		Spacing:   models.Vec2{X: 0.5, Y: 1},
		SliceSize: models.Size{W: 200, H: 50},
		TileSize:  models.Size{W: 400, H: 300},
	}
}

func assertVec(t *testing.T, want, got models.Vec2) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, 1e-9)
	assert.InDelta(t, want.Y, got.Y, 1e-9)
}

func TestAffineThenMatchesSequentialApply(t *testing.T) {
	a := Translation(3, 4)
	b := Scaling(2, -1)
	p := models.Vec2{X: 1, Y: 5}
	assertVec(t, a.Apply(b.Apply(p)), a.Then(b).Apply(p))
	assert.Equal(t, Identity().Then(a), a)
}

func TestAffineInvert(t *testing.T) {
	m := Translation(10, -3).Then(Scaling(4, 0.5))
	inv, err := m.Invert()
	require.NoError(t, err)
	p := models.Vec2{X: 7, Y: 9}
	assertVec(t, p, inv.Apply(m.Apply(p)))

	_, err = Scaling(0, 1).Invert()
	assert.ErrorIs(t, err, ErrSingular)
}

func TestTileTransformChain(t *testing.T) {
	view := testView()
	m, err := TileTransform(view)
	require.NoError(t, err)

	// the voxel at the pan position lands on the tile centre
	panVoxel := models.Vec2{X: view.Pan.X / view.Spacing.X, Y: view.Pan.Y / view.Spacing.Y}
	assertVec(t, models.Vec2{X: 200, Y: 150}, m.Apply(panVoxel))

	// one voxel step is spacing*zoom pixels
	step := m.Apply(models.Vec2{X: panVoxel.X + 1, Y: panVoxel.Y + 1})
	assertVec(t, models.Vec2{X: 201, Y: 152}, step)
}

func TestTileTransformRejectsBadZoom(t *testing.T) {
	for _, z := range []float64{0, -1} {
		view := testView()
		view.Zoom = z
		_, err := TileTransform(view)
		assert.ErrorIs(t, err, ErrInvalidZoom)
	}
}

func TestTileOriginFlipsRows(t *testing.T) {
	grid := models.GridLayout{Rows: 2, Cols: 3}
	tile := models.Size{W: 100, H: 80}
	assert.Equal(t, image.Pt(0, 80), TileOrigin(0, 0, grid, tile))
	assert.Equal(t, image.Pt(200, 80), TileOrigin(0, 2, grid, tile))
	assert.Equal(t, image.Pt(100, 0), TileOrigin(1, 1, grid, tile))
}

func TestTilesShareTransform(t *testing.T) {
	view := testView()
	tiles, err := Tiles(view, models.GridLayout{Rows: 2, Cols: 2})
	require.NoError(t, err)
	require.Len(t, tiles, 4)
	for _, tl := range tiles {
		assert.Equal(t, tiles[0].Transform, tl.Transform)
		assert.Equal(t, view.TileSize.W, tl.Viewport.Dx())
	}
	assert.Equal(t, image.Rect(400, 300, 800, 600), tiles[1].Viewport)
	assert.Equal(t, image.Rect(0, 0, 400, 300), tiles[2].Viewport)

	_, err = Tiles(view, models.GridLayout{Rows: 0, Cols: 1})
	assert.ErrorIs(t, err, ErrBadGrid)
}

func TestTileSize(t *testing.T) {
	s, err := TileSize(models.Size{W: 800, H: 600}, models.GridLayout{Rows: 2, Cols: 4})
	require.NoError(t, err)
	assert.Equal(t, models.Size{W: 200, H: 300}, s)
}

func TestScreenToSliceInvertsTileTransform(t *testing.T) {
	view := testView()
	v, err := ScreenToSlice(view, models.Vec2{X: 200, Y: 150})
	require.NoError(t, err)
	assertVec(t, models.Vec2{X: 100, Y: 25}, v)
}

func TestOptimalZoomAndThumbnailOn(t *testing.T) {
	view := testView()
	// world is 100 x 50 physical units in a 400 x 300 tile
	assert.InDelta(t, 4, OptimalZoom(view), 1e-9)
	assert.False(t, ThumbnailOn(view))

	view.Zoom = 8
	assert.True(t, ThumbnailOn(view))
	assertVec(t, models.Vec2{X: 50, Y: 25}, CenterPan(view))
}

func TestComputeThumbnailPreservesAspect(t *testing.T) {
	view := testView()
	th, err := ComputeThumbnail(view, models.Size{W: 400, H: 300}, ThumbnailSettings{SizePercent: 30, Margin: 5})
	require.NoError(t, err)
	// min(0.3*400/100, 0.3*300/50) = 1.2
	assert.InDelta(t, 1.2, th.Zoom, 1e-9)
	assertVec(t, models.Vec2{X: 5, Y: 5}, th.Position)

	corner := th.SliceTransform(view.Spacing).Apply(models.Vec2{X: 200, Y: 50})
	assertVec(t, models.Vec2{X: 125, Y: 65}, corner)
}

func TestComputeThumbnailMaxSize(t *testing.T) {
	view := testView()
	th, err := ComputeThumbnail(view, models.Size{W: 4000, H: 3000}, ThumbnailSettings{SizePercent: 30, MaxSize: 160})
	require.NoError(t, err)
	assert.InDelta(t, 1.6, th.Zoom, 1e-9)

	_, err = ComputeThumbnail(models.ViewState{}, models.Size{W: 10, H: 10}, ThumbnailSettings{SizePercent: 30})
	assert.Error(t, err)
}

func TestExtentBoxHalvesWhenZoomDoubles(t *testing.T) {
	view := testView()
	half, err := ExtentHalfSize(view)
	require.NoError(t, err)
	assertVec(t, models.Vec2{X: 100, Y: 75}, half)

	view.Zoom *= 2
	halved, err := ExtentHalfSize(view)
	require.NoError(t, err)
	assertVec(t, models.Vec2{X: half.X / 2, Y: half.Y / 2}, halved)

	box, err := ExtentBox(view)
	require.NoError(t, err)
	assertVec(t, models.Vec2{X: 0, Y: -12.5}, box[0])
	assertVec(t, models.Vec2{X: 100, Y: 62.5}, box[2])

	view.Zoom = 0
	_, err = ExtentBox(view)
	assert.ErrorIs(t, err, ErrInvalidZoom)
}

func TestCameraNavigation(t *testing.T) {
	cam := NewCamera(models.Size{W: 200, H: 50}, models.Vec2{X: 0.5, Y: 1})
	assertVec(t, models.Vec2{X: 50, Y: 25}, cam.View().Pan)

	require.NoError(t, cam.Fit(models.Size{W: 400, H: 300}))
	assert.InDelta(t, 4, cam.View().Zoom, 1e-9)

	require.NoError(t, cam.ZoomBy(2))
	assert.InDelta(t, 8, cam.View().Zoom, 1e-9)

	cam.PanByPixels(16, -8)
	assertVec(t, models.Vec2{X: 48, Y: 26}, cam.View().Pan)

	assert.ErrorIs(t, cam.SetZoom(0), ErrInvalidZoom)
	assert.InDelta(t, 8, cam.View().Zoom, 1e-9, "rejected zoom leaves state unchanged")

	empty := NewCamera(models.Size{}, models.Vec2{X: 1, Y: 1})
	assert.Error(t, empty.Fit(models.Size{W: 10, H: 10}))
}
