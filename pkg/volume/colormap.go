package volume

import (
	"image/color"
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// ColorMap converts a voxel intensity to a display colour
type ColorMap interface {
	Map(v float64) color.NRGBA
}

// GreyWindow maps [Lo, Hi] linearly onto black..white
type GreyWindow struct {
	Lo, Hi float64
}

func (w GreyWindow) Map(v float64) color.NRGBA {
	t := 0.0
	if w.Hi > w.Lo {
		t = (v - w.Lo) / (w.Hi - w.Lo)
	} else if v >= w.Hi {
		t = 1
	}
	g := uint8(math.Round(math.Max(0, math.Min(1, t)) * 255))
	return color.NRGBA{R: g, G: g, B: g, A: 255}
}

// AutoWindow picks a window from the lower and upper quantiles of the data
func AutoWindow(data []float64, tail float64) GreyWindow {
	if len(data) == 0 {
		return GreyWindow{Lo: 0, Hi: 1}
	}
	sorted := slices.Clone(data)
	slices.Sort(sorted)
	lo := stat.Quantile(tail, stat.Empirical, sorted, nil)
	hi := stat.Quantile(1-tail, stat.Empirical, sorted, nil)
	if hi <= lo {
		lo, hi = sorted[0], sorted[len(sorted)-1]
	}
	return GreyWindow{Lo: lo, Hi: hi}
}

// LabelTable colours integer labels. Label 0 is clear.
type LabelTable struct {
	Colors map[int]color.NRGBA
}

// defaultLabelColors cycles through when a label has no explicit colour
var defaultLabelColors = []color.NRGBA{
	{R: 255, A: 255},
	{G: 255, A: 255},
	{B: 255, A: 255},
	{R: 255, G: 255, A: 255},
	{G: 255, B: 255, A: 255},
	{R: 255, B: 255, A: 255},
	{R: 255, G: 239, B: 213, A: 255},
	{R: 205, G: 133, B: 63, A: 255},
}

func (t LabelTable) Map(v float64) color.NRGBA {
	label := int(math.Round(v))
	if label <= 0 {
		return color.NRGBA{}
	}
	if c, ok := t.Colors[label]; ok {
		return c
	}
	return defaultLabelColors[(label-1)%len(defaultLabelColors)]
}
