package grid

import (
	"reflect"
	"testing"
)

func TestExchangeItems_AcrossSections(t *testing.T) {
	sections := [][]string{{"a", "b", "c"}, {"d", "e"}}

	if err := ExchangeItems(sections, Position{0, 0}, Position{1, 1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := [][]string{{"e", "b", "c"}, {"d", "a"}}
	if !reflect.DeepEqual(sections, want) {
		t.Fatalf("got %v, want %v", sections, want)
	}
}

func TestExchangeItems_SamePositionIsNoop(t *testing.T) {
	sections := [][]int{{1, 2}}
	if err := ExchangeItems(sections, Position{0, 1}, Position{0, 1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(sections, [][]int{{1, 2}}) {
		t.Fatalf("model changed: %v", sections)
	}
}

func TestExchangeItems_OutOfRange(t *testing.T) {
	sections := [][]int{{1, 2}, {3}}
	tests := []struct {
		name   string
		p1, p2 Position
	}{
		{"bad section", Position{2, 0}, Position{0, 0}},
		{"bad item", Position{0, 0}, Position{1, 1}},
		{"negative", Position{0, -1}, Position{0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ExchangeItems(sections, tt.p1, tt.p2); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
	if !reflect.DeepEqual(sections, [][]int{{1, 2}, {3}}) {
		t.Fatalf("model changed after failed exchanges: %v", sections)
	}
}

func TestSizes(t *testing.T) {
	if got := Sizes([][]string{{"a"}, {}, {"b", "c"}}); !reflect.DeepEqual(got, []int{1, 0, 2}) {
		t.Fatalf("Sizes = %v", got)
	}
}
