package volume

import (
	"image"
	"image/color"
	"math"
	"testing"

	"slicecompositor/internal/models"
)

// gradientVolume fills each voxel with a value unique to its coordinates
func gradientVolume(width, height, depth int) *models.Volume {
	v := models.NewVolume(width, height, depth)
	for z := 0; z < depth; z++ {
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				v.Set(x, y, z, float64(x+10*y+100*z))
			}
		}
	}
	return v
}

// TestExtractPlane verifies that slices are correctly extracted from the volume
func TestExtractPlane(t *testing.T) {
	width, height, depth := 4, 3, 2
	v := gradientVolume(width, height, depth)

	plane, size, err := ExtractPlane(v, AxisZ, 1)
	if err != nil {
		t.Fatalf("Failed to extract Z slice: %v", err)
	}
	if size.W != width || size.H != height {
		t.Errorf("Expected Z slice dimensions %dx%d, got %dx%d", width, height, size.W, size.H)
	}
	if got := plane[2*size.W+3]; got != 123 {
		t.Errorf("Expected Z slice value 123 at (3,2), got %f", got)
	}

	plane, size, err = ExtractPlane(v, AxisX, 2)
	if err != nil {
		t.Fatalf("Failed to extract X slice: %v", err)
	}
	if size.W != depth || size.H != height {
		t.Errorf("Expected X slice dimensions %dx%d, got %dx%d", depth, height, size.W, size.H)
	}
	// pixel (z=1, y=2) of the x=2 plane
	if got := plane[2*size.W+1]; got != 122 {
		t.Errorf("Expected X slice value 122, got %f", got)
	}

	plane, size, err = ExtractPlane(v, AxisY, 1)
	if err != nil {
		t.Fatalf("Failed to extract Y slice: %v", err)
	}
	if size.W != width || size.H != depth {
		t.Errorf("Expected Y slice dimensions %dx%d, got %dx%d", width, depth, size.W, size.H)
	}
	// pixel (x=3, z=1) of the y=1 plane
	if got := plane[1*size.W+3]; got != 113 {
		t.Errorf("Expected Y slice value 113, got %f", got)
	}

	if _, _, err := ExtractPlane(v, AxisZ, depth); err == nil {
		t.Error("Expected error for out of bounds position, got nil")
	}
	if _, _, err := ExtractPlane(v, AxisZ, -1); err == nil {
		t.Error("Expected error for negative position, got nil")
	}
}

func TestParseAxis(t *testing.T) {
	for _, s := range []string{"x", "Y", "z"} {
		if _, err := ParseAxis(s); err != nil {
			t.Errorf("ParseAxis(%q) failed: %v", s, err)
		}
	}
	if _, err := ParseAxis("invalid"); err == nil {
		t.Error("Expected error for invalid axis, got nil")
	}
}

func TestPlaneSpacing(t *testing.T) {
	v := models.NewVolume(2, 2, 2)
	v.VoxelSize.X, v.VoxelSize.Y, v.VoxelSize.Z = 0.5, 0.7, 3

	if got := PlaneSpacing(v, AxisX); got != (models.Vec2{X: 3, Y: 0.7}) {
		t.Errorf("Unexpected X plane spacing %+v", got)
	}
	if got := PlaneSpacing(v, AxisY); got != (models.Vec2{X: 0.5, Y: 3}) {
		t.Errorf("Unexpected Y plane spacing %+v", got)
	}
	if got := PlaneSpacing(v, AxisZ); got != (models.Vec2{X: 0.5, Y: 0.7}) {
		t.Errorf("Unexpected Z plane spacing %+v", got)
	}
}

func TestSourceVersioning(t *testing.T) {
	v := gradientVolume(4, 3, 5)
	src := NewSource(v, AxisZ, GreyWindow{Lo: 0, Hi: 500})

	if !src.Initialized() {
		t.Fatal("Expected source to be initialized")
	}
	if src.Slice() != 2 {
		t.Errorf("Expected middle slice 2, got %d", src.Slice())
	}

	first := src.DisplaySlice()
	if first == nil {
		t.Fatal("Expected a display slice")
	}
	version := src.Version()

	if src.DisplaySlice() != first {
		t.Error("Expected the cached slice to be returned while unchanged")
	}

	if err := src.SetSlice(2); err != nil {
		t.Fatalf("SetSlice failed: %v", err)
	}
	if src.Version() != version {
		t.Error("Setting the same slice must not change the version")
	}

	if err := src.SetSlice(4); err != nil {
		t.Fatalf("SetSlice failed: %v", err)
	}
	if src.Version() == version {
		t.Error("Expected the version to change after moving slices")
	}
	if err := src.SetSlice(5); err == nil {
		t.Error("Expected error for slice out of range")
	}

	version = src.Version()
	src.Touch()
	if src.Version() == version {
		t.Error("Expected Touch to bump the version")
	}

	version = src.Version()
	src.SetAxis(AxisX)
	if src.Version() == version {
		t.Error("Expected SetAxis to bump the version")
	}
	if got := src.SliceSize(); got != (models.Size{W: 5, H: 3}) {
		t.Errorf("Unexpected X slice size %+v", got)
	}
}

func TestSourceUninitialized(t *testing.T) {
	src := NewSource(nil, AxisZ, nil)
	if src.Initialized() {
		t.Error("Expected nil volume to be uninitialized")
	}
	if src.DisplaySlice() != nil {
		t.Error("Expected nil display slice")
	}
	if err := src.SetSlice(0); err == nil {
		t.Error("Expected error when slicing an empty source")
	}
}

func TestSourceColorMapping(t *testing.T) {
	v := models.NewVolume(2, 1, 1)
	v.Set(0, 0, 0, 0)
	v.Set(1, 0, 0, 3)

	src := NewSource(v, AxisZ, LabelTable{Colors: map[int]color.NRGBA{3: {R: 9, G: 8, B: 7, A: 255}}})
	img, ok := src.DisplaySlice().(*image.NRGBA)
	if !ok {
		t.Fatalf("Expected *image.NRGBA, got %T", src.DisplaySlice())
	}
	if c := img.NRGBAAt(0, 0); c.A != 0 {
		t.Errorf("Expected clear background label, got %+v", c)
	}
	if c := img.NRGBAAt(1, 0); c != (color.NRGBA{R: 9, G: 8, B: 7, A: 255}) {
		t.Errorf("Expected label colour, got %+v", c)
	}
}

func TestGreyWindow(t *testing.T) {
	w := GreyWindow{Lo: 10, Hi: 20}
	if c := w.Map(5); c.R != 0 {
		t.Errorf("Expected black below window, got %d", c.R)
	}
	if c := w.Map(25); c.R != 255 {
		t.Errorf("Expected white above window, got %d", c.R)
	}
	if c := w.Map(15); c.R != 128 {
		t.Errorf("Expected mid grey, got %d", c.R)
	}
}

func TestAutoWindow(t *testing.T) {
	data := make([]float64, 101)
	for i := range data {
		data[i] = float64(i)
	}
	w := AutoWindow(data, 0.1)
	if w.Lo < 5 || w.Lo > 15 || w.Hi < 85 || w.Hi > 95 {
		t.Errorf("Unexpected window %+v", w)
	}

	flat := AutoWindow([]float64{4, 4, 4}, 0.01)
	if flat.Lo != 4 || flat.Hi != 4 {
		t.Errorf("Unexpected flat window %+v", flat)
	}
}

func TestDescribe(t *testing.T) {
	v := models.NewVolume(2, 2, 1)
	copy(v.Data, []float64{1, 2, 3, 4})
	v.VoxelSize.X = 0.5

	info, err := Describe(v)
	if err != nil {
		t.Fatalf("Describe failed: %v", err)
	}
	if info.Min != 1 || info.Max != 4 {
		t.Errorf("Unexpected range [%f, %f]", info.Min, info.Max)
	}
	if math.Abs(info.Mean-2.5) > 1e-9 {
		t.Errorf("Expected mean 2.5, got %f", info.Mean)
	}
	if info.Extent[0] != 1 {
		t.Errorf("Expected x extent 1mm, got %f", info.Extent[0])
	}

	if _, err := Describe(nil); err == nil {
		t.Error("Expected error for nil volume")
	}
}
