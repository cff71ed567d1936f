package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"slicecompositor/internal/models"
	"slicecompositor/pkg/compositor"
	"slicecompositor/pkg/config"
	"slicecompositor/pkg/layers"
	"slicecompositor/pkg/loader"
	"slicecompositor/pkg/raster"
	"slicecompositor/pkg/viewport"
	"slicecompositor/pkg/volume"
)

// namedVolume is a loaded stack labelled for the info printout
type namedVolume struct {
	name string
	vol  *models.Volume
}

// dirList collects a repeatable directory flag
type dirList []string

func (d *dirList) String() string     { return strings.Join(*d, ",") }
func (d *dirList) Set(v string) error { *d = append(*d, v); return nil }

func main() {
	var overlays, stickyOverlays dirList

	// Parse command line arguments
	mainDir := flag.String("main", "", "Directory containing the main image slices")
	flag.Var(&overlays, "overlay", "Directory of an overlay that gets its own tile (repeatable)")
	flag.Var(&stickyOverlays, "sticky", "Directory of an overlay drawn over every tile (repeatable)")
	segDir := flag.String("seg", "", "Directory containing segmentation label slices")
	overlayOpacity := flag.Float64("opacity", 0.5, "Opacity of overlay layers")
	configPath := flag.String("config", "slicecompositor.yaml", "Display settings file")
	writeConfig := flag.Bool("write-config", false, "Write the default display settings to -config and exit")
	axisName := flag.String("axis", "z", "Slicing axis: x, y or z")
	sliceIndex := flag.Int("slice", -1, "Slice to display (default: middle slice)")
	rows := flag.Int("rows", 0, "Tile rows (default: from config)")
	cols := flag.Int("cols", 0, "Tile columns (default: from config)")
	width := flag.Int("width", 800, "Viewport width in pixels")
	height := flag.Int("height", 600, "Viewport height in pixels")
	zoom := flag.Float64("zoom", 0, "Zoom in pixels per mm (default: fit slice to tile)")
	zoomFactor := flag.Float64("zoom-factor", 1, "Multiply the zoom after fitting")
	pan := flag.String("pan", "", "View centre in mm as x,y (default: slice centre)")
	sliceGap := flag.Float64("gap", 1.0, "Inter-slice gap in mm")
	pixelSize := flag.Float64("pixel", 1.0, "In-plane pixel size in mm")
	crosshair := flag.Bool("crosshair", false, "Draw a crosshair at the slice centre")
	probe := flag.String("probe", "", "Report the voxel under a tile pixel given as x,y")
	showInfo := flag.Bool("info", false, "Print image information for every layer")
	outputName := flag.String("output", "frame.png", "Output PNG filename")
	verbose := flag.Bool("v", false, "Verbose logging")
	flag.Parse()

	if *writeConfig {
		if err := config.CreateDefaultConfigFile(*configPath); err != nil {
			fatal("Failed to write config", err)
		}
		fmt.Printf("Default display settings written to %s\n", *configPath)
		return
	}

	// Validate inputs
	if *mainDir == "" {
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fatal("Failed to load config", err)
	}
	if *rows > 0 {
		cfg.Layout.Rows = *rows
	}
	if *cols > 0 {
		cfg.Layout.Cols = *cols
	}
	if err := cfg.Validate(); err != nil {
		fatal("Invalid settings", err)
	}

	level := slog.LevelInfo
	if *verbose || cfg.Output.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	compositor.SetLogger(logger)

	axis, err := volume.ParseAxis(*axisName)
	if err != nil {
		fatal("Invalid axis", err)
	}

	loadOpts := loader.Options{
		Spacing:  models.Vec2{X: *pixelSize, Y: *pixelSize},
		SliceGap: *sliceGap,
	}

	// Build the layer stack
	reg := layers.NewRegistry()
	mainVol, err := loader.LoadStack(*mainDir, loadOpts)
	if err != nil {
		fatal("Failed to load main image", err)
	}
	mainSrc := volume.NewSource(mainVol, axis, nil)
	reg.SetMain(mainSrc, layers.Options{Name: filepath.Base(*mainDir)})

	sources := []*volume.Source{mainSrc}
	volumes := []namedVolume{{filepath.Base(*mainDir), mainVol}}

	addOverlay := func(dir string, sticky bool) {
		vol, err := loadMatching(dir, loadOpts, mainVol)
		if err != nil {
			fatal("Failed to load overlay", err)
		}
		src := volume.NewSource(vol, axis, nil)
		name := filepath.Base(dir)
		if _, err := reg.AddOverlay(src, layers.Options{Name: name, Opacity: *overlayOpacity, Sticky: sticky}); err != nil {
			fatal("Failed to add overlay", err)
		}
		sources = append(sources, src)
		volumes = append(volumes, namedVolume{name, vol})
	}
	for _, dir := range overlays {
		addOverlay(dir, false)
	}
	for _, dir := range stickyOverlays {
		addOverlay(dir, true)
	}

	if *segDir != "" {
		segOpts := loadOpts
		segOpts.Raw = true
		vol, err := loadMatching(*segDir, segOpts, mainVol)
		if err != nil {
			fatal("Failed to load segmentation", err)
		}
		src := volume.NewSource(vol, axis, volume.LabelTable{})
		if _, err := reg.SetSegmentation(src, layers.Options{Name: filepath.Base(*segDir)}); err != nil {
			fatal("Failed to add segmentation", err)
		}
		sources = append(sources, src)
		volumes = append(volumes, namedVolume{filepath.Base(*segDir), vol})
	}

	if *sliceIndex >= 0 {
		for _, src := range sources {
			if err := src.SetSlice(*sliceIndex); err != nil {
				fatal("Failed to select slice", err)
			}
		}
	}

	// Set up the camera
	size := models.Size{W: *width, H: *height}
	grid := cfg.Grid()
	tile, err := viewport.TileSize(size, grid)
	if err != nil {
		fatal("Invalid layout", err)
	}

	cam := viewport.NewCamera(mainSrc.SliceSize(), mainSrc.Spacing())
	cam.SetSlice(mainSrc.Slice(), mainSrc.SliceSize(), mainSrc.Spacing())
	if *zoom > 0 {
		err = cam.SetZoom(*zoom)
	} else {
		err = cam.Fit(tile)
	}
	if err == nil {
		err = cam.ZoomBy(*zoomFactor)
	}
	if err != nil {
		fatal("Invalid zoom", err)
	}
	if *pan != "" {
		p, err := parseVec(*pan)
		if err != nil {
			fatal("Invalid pan", err)
		}
		cam.PanTo(p)
	}

	// Render the frame
	canvas := raster.New(size)
	var opts []compositor.Option
	if *crosshair {
		sliceSize := mainSrc.SliceSize()
		opts = append(opts, compositor.WithTiledOverlay(compositor.Crosshair{
			Cursor: func() models.Vec2 { return models.Vec2{X: float64(sliceSize.W / 2), Y: float64(sliceSize.H / 2)} },
			Style:  compositor.LineStyle{Color: models.Color{R: 0.3, G: 0.3, B: 1}, Width: 1},
		}))
	}
	opts = append(opts, compositor.WithGlobalOverlay(compositor.TileBorders{
		Grid:  cfg,
		Style: compositor.LineStyle{Color: models.Color{R: 0.5, G: 0.5, B: 0.5}, Width: 1},
	}))

	renderer := compositor.New(reg, cfg, cfg, cam, canvas, opts...)

	startTime := time.Now()
	if err := renderer.Render(size); err != nil {
		// the frame is still written with whatever was drawn
		logger.Error("render finished with errors", "err", err)
	}
	renderTime := time.Since(startTime)

	if err := canvas.SavePNG(*outputName); err != nil {
		fatal("Failed to save frame", err)
	}

	view := cam.View()
	fmt.Printf("Rendered %dx%d frame (%dx%d tiles, zoom %.3f px/mm, slice %d along %s) in %v\n",
		size.W, size.H, grid.Rows, grid.Cols, view.Zoom, mainSrc.Slice(), axis, renderTime)
	fmt.Printf("Frame saved to: %s\n", *outputName)

	if *probe != "" {
		p, err := parseVec(*probe)
		if err != nil {
			fatal("Invalid probe", err)
		}
		view.TileSize = tile
		v, err := viewport.ScreenToSlice(view, p)
		if err != nil {
			fatal("Probe failed", err)
		}
		fmt.Printf("Tile pixel (%.1f, %.1f) shows voxel (%.2f, %.2f)\n", p.X, p.Y, v.X, v.Y)
	}

	if *showInfo {
		printInfo(os.Stdout, logger, volumes)
	}
}

// printInfo writes image information for each volume in load order
func printInfo(w io.Writer, logger *slog.Logger, volumes []namedVolume) {
	for _, nv := range volumes {
		info, err := volume.Describe(nv.vol)
		if err != nil {
			logger.Warn("no image information", "layer", nv.name, "err", err)
			continue
		}
		fmt.Fprintf(w, "\n%s\n", nv.name)
		fmt.Fprintf(w, "  Dimensions: %d x %d x %d\n", info.Dimensions[0], info.Dimensions[1], info.Dimensions[2])
		fmt.Fprintf(w, "  Voxel size: %.3f x %.3f x %.3f mm\n", info.Spacing[0], info.Spacing[1], info.Spacing[2])
		fmt.Fprintf(w, "  Extent:     %.1f x %.1f x %.1f mm\n", info.Extent[0], info.Extent[1], info.Extent[2])
		fmt.Fprintf(w, "  Intensity:  min %.4f, max %.4f, mean %.4f, sd %.4f\n", info.Min, info.Max, info.Mean, info.StdDev)
	}
}

// loadMatching loads a stack that must have the same dimensions as ref
func loadMatching(dir string, opts loader.Options, ref *models.Volume) (*models.Volume, error) {
	vol, err := loader.LoadStack(dir, opts)
	if err != nil {
		return nil, err
	}
	if vol.Width != ref.Width || vol.Height != ref.Height || vol.Depth != ref.Depth {
		return nil, fmt.Errorf("%s is %dx%dx%d, main image is %dx%dx%d", dir,
			vol.Width, vol.Height, vol.Depth, ref.Width, ref.Height, ref.Depth)
	}
	return vol, nil
}

func parseVec(s string) (models.Vec2, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return models.Vec2{}, fmt.Errorf("expected x,y, got %q", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return models.Vec2{}, err
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return models.Vec2{}, err
	}
	return models.Vec2{X: x, Y: y}, nil
}

func fatal(msg string, err error) {
	fmt.Fprintf(os.Stderr, "%s: %v\n", msg, err)
	os.Exit(1)
}
