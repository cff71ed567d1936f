package main

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"slicecompositor/internal/models"
)

func TestPrintInfoKeepsLoadOrder(t *testing.T) {
	a := models.NewVolume(2, 2, 1)
	b := models.NewVolume(3, 3, 1)
	c := models.NewVolume(4, 4, 1)
	volumes := []namedVolume{{"t1", a}, {"slices", b}, {"slices", c}, {"empty", &models.Volume{}}}

	var buf bytes.Buffer
	printInfo(&buf, slog.New(slog.DiscardHandler), volumes)
	out := buf.String()

	dims := []string{"2 x 2 x 1", "3 x 3 x 1", "4 x 4 x 1"}
	last := -1
	for _, d := range dims {
		i := strings.Index(out, "Dimensions: "+d)
		if i < 0 {
			t.Fatalf("missing %q in output:\n%s", d, out)
		}
		if i < last {
			t.Errorf("%q printed out of load order", d)
		}
		last = i
	}
	if n := strings.Count(out, "\nslices\n"); n != 2 {
		t.Errorf("expected both stacks named slices, got %d", n)
	}
	if strings.Contains(out, "empty") {
		t.Error("an empty volume has no information to print")
	}
}

func TestParseVec(t *testing.T) {
	v, err := parseVec("1.5, -2")
	if err != nil || v != (models.Vec2{X: 1.5, Y: -2}) {
		t.Errorf("parseVec = %+v, %v", v, err)
	}
	if _, err := parseVec("3"); err == nil {
		t.Error("expected an error for a single value")
	}
}
