package layout

import (
	"context"
	"errors"
	"math"
	"testing"
)

func TestComputeContain(t *testing.T) {
	tests := []struct {
		name           string
		iw, ih, mw, mh float64
		wantW, wantH   float64
	}{
		{name: "wide", iw: 400, ih: 200, mw: 300, mh: 250, wantW: 300, wantH: 150},
		{name: "tall", iw: 200, ih: 400, mw: 300, mh: 250, wantW: 125, wantH: 250},
		{name: "square", iw: 10, ih: 10, mw: 300, mh: 250, wantW: 250, wantH: 250},
		{name: "exact", iw: 3, ih: 2, mw: 300, mh: 200, wantW: 300, wantH: 200},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Compute(tc.iw, tc.ih, tc.mw, tc.mh)
			if err != nil {
				t.Fatalf("Compute returned error: %v", err)
			}
			if math.Abs(got.Width-tc.wantW) > 1e-9 || math.Abs(got.Height-tc.wantH) > 1e-9 {
				t.Fatalf("got %vx%v, want %vx%v", got.Width, got.Height, tc.wantW, tc.wantH)
			}
		})
	}
}

func TestComputeProperties(t *testing.T) {
	sizes := []float64{1, 3, 17, 240, 333.5, 1024, 4000}
	for _, iw := range sizes {
		for _, ih := range sizes {
			for _, mw := range sizes {
				for _, mh := range sizes {
					got, err := Compute(iw, ih, mw, mh)
					if err != nil {
						t.Fatalf("Compute(%v,%v,%v,%v): %v", iw, ih, mw, mh, err)
					}
					if got.Width > mw*(1+1e-9) || got.Height > mh*(1+1e-9) {
						t.Fatalf("Compute(%v,%v,%v,%v) = %+v exceeds box", iw, ih, mw, mh, got)
					}
					if math.Abs(got.Aspect()-iw/ih) > 1e-9*(iw/ih) {
						t.Fatalf("Compute(%v,%v,%v,%v) aspect %v, want %v", iw, ih, mw, mh, got.Aspect(), iw/ih)
					}
					tightW := math.Abs(got.Width-mw) < 1e-9*mw
					tightH := math.Abs(got.Height-mh) < 1e-9*mh
					if !tightW && !tightH {
						t.Fatalf("Compute(%v,%v,%v,%v) = %+v touches neither bound", iw, ih, mw, mh, got)
					}
				}
			}
		}
	}
}

func TestComputeInvalid(t *testing.T) {
	cases := [][4]float64{
		{0, 10, 10, 10},
		{10, -1, 10, 10},
		{10, 10, 0, 10},
		{10, 10, 10, math.NaN()},
		{math.Inf(1), 10, 10, 10},
	}
	for _, c := range cases {
		if _, err := Compute(c[0], c[1], c[2], c[3]); !errors.Is(err, ErrInvalidDimension) {
			t.Fatalf("Compute(%v) error = %v, want ErrInvalidDimension", c, err)
		}
	}
}

func TestProbeFallsBackToSquare(t *testing.T) {
	failing := ProberFunc(func(context.Context, string) (int, int, error) {
		return 0, 0, errors.New("network unreachable")
	})
	got, err := Probe(context.Background(), failing, "https://example.invalid/a.jpg", 300, 200)
	if err != nil {
		t.Fatalf("Probe returned error: %v", err)
	}
	if got.Width != 200 || got.Height != 200 {
		t.Fatalf("expected square 200x200 fallback, got %+v", got)
	}

	degenerate := ProberFunc(func(context.Context, string) (int, int, error) { return 0, 50, nil })
	got, err = Probe(context.Background(), degenerate, "file:///a.jpg", 300, 200)
	if err != nil {
		t.Fatalf("Probe returned error: %v", err)
	}
	if got.Width != got.Height {
		t.Fatalf("expected square fallback for degenerate source, got %+v", got)
	}
}

func TestProbeUsesIntrinsicSize(t *testing.T) {
	p := ProberFunc(func(context.Context, string) (int, int, error) { return 800, 400, nil })
	got, err := Probe(context.Background(), p, "asset:planner.png", 300, 250)
	if err != nil {
		t.Fatalf("Probe returned error: %v", err)
	}
	if got.Width != 300 || got.Height != 150 {
		t.Fatalf("got %+v, want 300x150", got)
	}
	if sz := got.Size(); sz.X != 300 || sz.Y != 150 {
		t.Fatalf("Size() = %v", sz)
	}
}

func TestProbeInvalidBox(t *testing.T) {
	p := ProberFunc(func(context.Context, string) (int, int, error) { return 10, 10, nil })
	if _, err := Probe(context.Background(), p, "x", 0, 10); !errors.Is(err, ErrInvalidDimension) {
		t.Fatalf("expected ErrInvalidDimension, got %v", err)
	}
}
