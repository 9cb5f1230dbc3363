package grid

import "testing"

func TestResolve_2x3Grid(t *testing.T) {
	// [0,0] [0,1] [0,2]
	// [1,0] [1,1] [1,2]
	layout := FlowLayout{Columns: 3, ItemWidth: 10, ItemHeight: 10}
	frames := layout.Frames([]int{3, 3})

	tests := []struct {
		name   string
		point  Point
		want   Position
		wantOK bool
	}{
		{"top-left corner", Point{0, 0}, Position{0, 0}, true},
		{"centre of first item", Point{5, 5}, Position{0, 0}, true},
		{"right edge is exclusive", Point{10, 5}, Position{0, 1}, true},
		{"last item of first section", Point{29, 9}, Position{0, 2}, true},
		{"second section", Point{25, 15}, Position{1, 2}, true},
		{"outside to the right", Point{30, 5}, Position{}, false},
		{"outside below", Point{5, 20}, Position{}, false},
		{"negative", Point{-1, -1}, Position{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Resolve(tt.point, frames)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("Resolve(%v) = %v, %v; want %v, %v", tt.point, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestResolve_SkipsEmptyFrames(t *testing.T) {
	frames := []ItemFrame{
		{Position: Position{0, 0}, Rect: Rect{X: 0, Y: 0, Width: 0, Height: 10}},
		{Position: Position{0, 1}, Rect: Rect{X: 0, Y: 0, Width: 10, Height: 10}},
	}
	got, ok := Resolve(Point{0, 0}, frames)
	if !ok || got != (Position{0, 1}) {
		t.Fatalf("Resolve = %v, %v; want (0,1), true", got, ok)
	}
}

func TestFrames_FrameOfAndBounds(t *testing.T) {
	layout := FlowLayout{Origin: Point{2, 1}, Columns: 2, ItemWidth: 4, ItemHeight: 3, Spacing: 1, SectionSpacing: 2}
	frames := layout.Frames([]int{3, 1})

	// Section 0 takes two rows, section 1 starts after SectionSpacing.
	want := Rect{X: 2, Y: 1 + 2*(3+1) + 2, Width: 4, Height: 3}
	got, ok := frames.FrameOf(Position{1, 0})
	if !ok {
		t.Fatalf("expected frame for (1,0)")
	}
	if got != want {
		t.Fatalf("FrameOf((1,0)) = %+v, want %+v", got, want)
	}

	if _, ok := frames.FrameOf(Position{1, 1}); ok {
		t.Fatalf("did not expect a frame for (1,1)")
	}

	bounds := frames.Bounds()
	if bounds.X != 2 || bounds.Y != 1 || bounds.Width != 9 || bounds.Height != want.Y+want.Height-1 {
		t.Fatalf("unexpected bounds %+v", bounds)
	}
}

func TestFlowLayout_InvalidProducesNoFrames(t *testing.T) {
	if frames := (FlowLayout{Columns: 0, ItemWidth: 1, ItemHeight: 1}).Frames([]int{2}); frames != nil {
		t.Fatalf("expected no frames for zero columns, got %d", len(frames))
	}
}

func TestCalculateColumns(t *testing.T) {
	tests := []struct {
		n, want int
	}{
		{0, 1}, {1, 1}, {2, 2}, {4, 2}, {5, 3}, {9, 3}, {10, 4},
	}
	for _, tt := range tests {
		if got := CalculateColumns(tt.n); got != tt.want {
			t.Errorf("CalculateColumns(%d) = %d, want %d", tt.n, got, tt.want)
		}
	}
}
