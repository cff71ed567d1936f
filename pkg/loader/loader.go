// Package loader reads a directory of 2D slice images into a volume
package loader

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/h2non/filetype"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"slicecompositor/internal/models"
)

// ErrNotImage is returned for files whose content is not a supported image
var ErrNotImage = errors.New("not a supported image file")

// supported lists the sniffed extensions that have a registered decoder
var supported = map[string]bool{
	"jpg": true,
	"png": true,
	"gif": true,
	"tif": true,
	"bmp": true,
}

// Options control how a stack is turned into voxels
type Options struct {
	// Spacing is the in-plane pixel size in mm; zero means 1
	Spacing models.Vec2

	// SliceGap is the distance between consecutive slices in mm; zero means 1
	SliceGap float64

	// Raw keeps 8-bit grey levels (0..255) instead of normalising to [0, 1].
	// Use it for label maps.
	Raw bool
}

// Sniff reads the file header and returns the detected image extension
func Sniff(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	head := make([]byte, 261)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", err
	}
	kind, err := filetype.Match(head[:n])
	if err != nil || kind == filetype.Unknown || !supported[kind.Extension] {
		return "", fmt.Errorf("%s: %w", filepath.Base(path), ErrNotImage)
	}
	return kind.Extension, nil
}

// LoadSlice decodes one slice image
func LoadSlice(path string) (image.Image, error) {
	if _, err := Sniff(path); err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return img, nil
}

// ReadSlices loads every image in dir, ordered by the number in its file
// name. Files that are not images are skipped.
func ReadSlices(dir string, opts Options) ([]models.Slice, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, err := Sniff(filepath.Join(dir, e.Name())); err != nil {
			continue
		}
		files = append(files, e.Name())
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no images found in %s", dir)
	}

	// Sort by the numeric part of the name so slice_10 follows slice_9
	sort.SliceStable(files, func(i, j int) bool {
		ni, nj := extractNumber(files[i]), extractNumber(files[j])
		if ni != nj {
			return ni < nj
		}
		return files[i] < files[j]
	})

	gap := opts.SliceGap
	if gap <= 0 {
		gap = 1
	}

	slices := make([]models.Slice, 0, len(files))
	for i, name := range files {
		img, err := LoadSlice(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("failed to load image %s: %w", name, err)
		}
		slices = append(slices, models.Slice{
			Image:     img,
			Index:     i,
			Filename:  name,
			Thickness: gap,
			Position:  float64(i) * gap,
		})
	}
	return slices, nil
}

// LoadStack reads dir into a volume. Every slice must share the size of the
// first one. Image row 0 is the top of the picture, so rows are flipped to
// put it at the top of the displayed slice.
func LoadStack(dir string, opts Options) (*models.Volume, error) {
	slices, err := ReadSlices(dir, opts)
	if err != nil {
		return nil, err
	}
	return Stack(slices, opts)
}

// Stack converts decoded slices into a volume
func Stack(slices []models.Slice, opts Options) (*models.Volume, error) {
	if len(slices) == 0 {
		return nil, fmt.Errorf("stack: no slices")
	}
	b := slices[0].Image.Bounds()
	width, height := b.Dx(), b.Dy()

	vol := models.NewVolume(width, height, len(slices))
	if opts.Spacing.X > 0 {
		vol.VoxelSize.X = opts.Spacing.X
	}
	if opts.Spacing.Y > 0 {
		vol.VoxelSize.Y = opts.Spacing.Y
	}
	if opts.SliceGap > 0 {
		vol.VoxelSize.Z = opts.SliceGap
	}

	for z, s := range slices {
		sb := s.Image.Bounds()
		if sb.Dx() != width || sb.Dy() != height {
			return nil, fmt.Errorf("slice %s is %dx%d, expected %dx%d", s.Filename, sb.Dx(), sb.Dy(), width, height)
		}
		for row := 0; row < height; row++ {
			for x := 0; x < width; x++ {
				g := color.Gray16Model.Convert(s.Image.At(sb.Min.X+x, sb.Min.Y+row)).(color.Gray16)
				value := float64(g.Y) / 65535.0
				if opts.Raw {
					value = float64(g.Y >> 8)
				}
				vol.Set(x, height-1-row, z, value)
			}
		}
	}
	return vol, nil
}

// extractNumber extracts the numeric part from a filename
func extractNumber(filename string) int {
	base := filepath.Base(filename)
	numStr := ""
	for _, c := range base {
		if c >= '0' && c <= '9' {
			numStr += string(c)
		}
	}

	if numStr != "" {
		num, err := strconv.Atoi(numStr)
		if err == nil {
			return num
		}
	}
	return 0
}
