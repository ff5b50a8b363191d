package pagination

import (
	"reflect"
	"testing"
)

func TestNumPages(t *testing.T) {
	cases := []struct {
		total, size, want int
	}{
		{0, 10, 1},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{55, 10, 6},
	}
	for _, c := range cases {
		if got := NumPages(c.total, c.size); got != c.want {
			t.Errorf("NumPages(%d,%d)=%d want %d", c.total, c.size, got, c.want)
		}
	}
}

func TestClamp(t *testing.T) {
	if got := Clamp(0, 7); got != 1 {
		t.Errorf("Clamp(0,7)=%d want 1", got)
	}
	if got := Clamp(9, 7); got != 7 {
		t.Errorf("Clamp(9,7)=%d want 7", got)
	}
	if got := Clamp(3, 7); got != 3 {
		t.Errorf("Clamp(3,7)=%d want 3", got)
	}
}

func TestWindow(t *testing.T) {
	cases := []struct {
		page, numPages int
		want           []int
	}{
		// fewer than five pages: all shown
		{1, 3, []int{1, 2, 3}},
		{2, 5, []int{1, 2, 3, 4, 5}},
		// current page in the first three
		{1, 9, []int{1, 2, 3, 4, 5}},
		{3, 9, []int{1, 2, 3, 4, 5}},
		// current page near the end
		{8, 9, []int{5, 6, 7, 8, 9}},
		{9, 9, []int{5, 6, 7, 8, 9}},
		// middle: two either side
		{5, 9, []int{3, 4, 5, 6, 7}},
		{6, 12, []int{4, 5, 6, 7, 8}},
	}
	for _, c := range cases {
		if got := Window(c.page, c.numPages); !reflect.DeepEqual(got, c.want) {
			t.Errorf("Window(%d,%d)=%v want %v", c.page, c.numPages, got, c.want)
		}
	}
}
