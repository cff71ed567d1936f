package compositor

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slicecompositor/internal/models"
)

func strokes(ops []op) []op {
	var out []op
	for _, o := range ops {
		if o.kind == "stroke" {
			out = append(out, o)
		}
	}
	return out
}

func TestCrosshairPaintsThroughCursor(t *testing.T) {
	style := LineStyle{Color: models.Color{R: 1}, Width: 2}
	f := newFixture(t, 1, 1, WithTiledOverlay(Crosshair{
		Cursor: func() models.Vec2 { return models.Vec2{X: 4, Y: 6} },
		Style:  style,
	}))
	f.main(t)

	require.NoError(t, f.render.Render(f.surf.size))

	got := strokes(f.surf.ops)
	require.Len(t, got, 2)
	assert.Equal(t, []models.Vec2{{X: 0, Y: 6.5}, {X: 10, Y: 6.5}}, got[0].pts)
	assert.Equal(t, []models.Vec2{{X: 4.5, Y: 0}, {X: 4.5, Y: 10}}, got[1].pts)
	for _, s := range got {
		assert.Equal(t, image.Rect(0, 0, 200, 100), s.viewport)
		assert.Equal(t, style, s.style)
	}
}

func TestCrosshairOutsideSlice(t *testing.T) {
	f := newFixture(t, 1, 1, WithTiledOverlay(Crosshair{
		Cursor: func() models.Vec2 { return models.Vec2{X: 20, Y: 3} },
	}))
	f.main(t)

	require.NoError(t, f.render.Render(f.surf.size))
	assert.Empty(t, strokes(f.surf.ops))
}

func TestCrosshairIgnoresGlobalPass(t *testing.T) {
	f := newFixture(t, 1, 1, WithGlobalOverlay(Crosshair{
		Cursor: func() models.Vec2 { return models.Vec2{X: 4, Y: 4} },
	}))
	f.main(t)

	require.NoError(t, f.render.Render(f.surf.size))
	assert.Empty(t, strokes(f.surf.ops))
}

func TestTileBordersSeparateTiles(t *testing.T) {
	f := newFixture(t, 2, 2)
	f.render = New(f.reg, f.cfg, f.cfg, f.cam, f.surf, WithGlobalOverlay(TileBorders{Grid: f.cfg}))
	f.main(t)

	require.NoError(t, f.render.Render(f.surf.size))

	got := strokes(f.surf.ops)
	require.Len(t, got, 2)
	assert.Equal(t, []models.Vec2{{X: 100, Y: 0}, {X: 100, Y: 100}}, got[0].pts)
	assert.Equal(t, []models.Vec2{{X: 0, Y: 50}, {X: 200, Y: 50}}, got[1].pts)
	for _, s := range got {
		assert.Equal(t, image.Rect(0, 0, 200, 100), s.viewport)
	}
}

func TestTileBordersSingleTile(t *testing.T) {
	f := newFixture(t, 1, 1)
	f.render = New(f.reg, f.cfg, f.cfg, f.cam, f.surf, WithGlobalOverlay(TileBorders{Grid: f.cfg}))
	f.main(t)

	require.NoError(t, f.render.Render(f.surf.size))
	assert.Empty(t, strokes(f.surf.ops))
}
