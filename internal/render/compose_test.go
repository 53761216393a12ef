package render

import (
	"image"
	"image/color"
	"testing"

	"github.com/example/retouch/internal/annotate"
	"github.com/example/retouch/internal/filter"
	"github.com/example/retouch/internal/layout"
)

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func TestComposeScalesToLayout(t *testing.T) {
	base := solid(400, 200, color.NRGBA{R: 100, G: 100, B: 100, A: 255})
	l, err := layout.Compute(400, 200, 100, 100)
	if err != nil {
		t.Fatal(err)
	}
	out := Compose(base, Scene{Layout: l, Matrix: filter.IdentityMatrix()})
	if got := out.Bounds().Size(); got != image.Pt(100, 50) {
		t.Fatalf("size = %v, want 100x50", got)
	}
	if got := out.RGBAAt(50, 25); got != (color.RGBA{R: 100, G: 100, B: 100, A: 255}) {
		t.Fatalf("center pixel = %+v", got)
	}
}

func TestComposeAppliesFilter(t *testing.T) {
	base := solid(10, 10, color.NRGBA{R: 50, G: 60, B: 70, A: 255})
	l := layout.DisplayLayout{Width: 10, Height: 10}
	out := Compose(base, Scene{Layout: l, Matrix: filter.Build(filter.Parameters{Brightness: 2, Saturation: 1, Contrast: 1})})
	if got := out.RGBAAt(5, 5); got != (color.RGBA{R: 100, G: 120, B: 140, A: 255}) {
		t.Fatalf("filtered pixel = %+v", got)
	}
}

func TestComposeDrawsStrokesUnfiltered(t *testing.T) {
	base := solid(40, 40, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	l := layout.DisplayLayout{Width: 40, Height: 40}
	stroke, err := annotate.ParsePath("M 5 20 L 35 20")
	if err != nil {
		t.Fatal(err)
	}
	style := StrokeStyle{Color: color.RGBA{R: 200, A: 255}, Width: 4}
	out := Compose(base, Scene{
		Layout:  l,
		Matrix:  filter.Build(filter.Parameters{Brightness: 0, Saturation: 1, Contrast: 1}),
		Strokes: []annotate.Stroke{stroke},
		Style:   style,
	})
	if got := out.RGBAAt(20, 20); got != style.Color {
		t.Fatalf("stroke pixel = %+v, want %+v", got, style.Color)
	}
	if got := out.RGBAAt(20, 5); got != (color.RGBA{A: 255}) {
		t.Fatalf("background pixel = %+v, want black", got)
	}
	if got := out.RGBAAt(3, 20); got.R == 0 {
		t.Fatalf("expected round cap coverage before the first point, got %+v", got)
	}
}

func TestComposeDoesNotMutateBase(t *testing.T) {
	base := solid(4, 4, color.NRGBA{R: 10, G: 10, B: 10, A: 255})
	_ = Compose(base, Scene{Layout: layout.DisplayLayout{Width: 4, Height: 4}, Matrix: filter.Brightness(2)})
	if got := base.NRGBAAt(1, 1); got.R != 10 {
		t.Fatalf("base mutated: %+v", got)
	}
}

func TestDrawStrokeSinglePointIsDot(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 20, 20))
	DrawStroke(dst, annotate.NewStroke(annotate.Point{X: 10, Y: 10}), StrokeStyle{Color: color.RGBA{B: 255, A: 255}, Width: 6})
	if got := dst.RGBAAt(10, 10); got.B != 255 {
		t.Fatalf("expected dot at center, got %+v", got)
	}
	if got := dst.RGBAAt(1, 1); got.A != 0 {
		t.Fatalf("unexpected paint at corner: %+v", got)
	}
}

func TestParseColor(t *testing.T) {
	cases := []struct {
		in   string
		want color.RGBA
	}{
		{"black", color.RGBA{A: 255}},
		{" Red ", color.RGBA{R: 255, A: 255}},
		{"#336699", color.RGBA{R: 0x33, G: 0x66, B: 0x99, A: 255}},
		{"#33669980", color.RGBA{R: 0x33, G: 0x66, B: 0x99, A: 0x80}},
	}
	for _, tc := range cases {
		got, err := ParseColor(tc.in)
		if err != nil || got != tc.want {
			t.Errorf("ParseColor(%q) = %+v, %v; want %+v", tc.in, got, err, tc.want)
		}
	}
	for _, bad := range []string{"", "#12", "#zzzzzz", "notacolor"} {
		if _, err := ParseColor(bad); err == nil {
			t.Errorf("ParseColor(%q) expected error", bad)
		}
	}
	if got := FormatColor(color.RGBA{R: 0x33, G: 0x66, B: 0x99, A: 255}); got != "#336699" {
		t.Fatalf("FormatColor = %q", got)
	}
}
