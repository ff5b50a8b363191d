// Package pagination carries the page-window arithmetic shared by the catalog
// list pages and the user order history.
package pagination

// NumPages returns the page count for total rows at the given page size.
func NumPages(total, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 1
	}
	n := (total + pageSize - 1) / pageSize
	if n < 1 {
		n = 1
	}
	return n
}

// Clamp keeps page inside [1, numPages], snapping overflow to the last page.
func Clamp(page, numPages int) int {
	if page < 1 {
		return 1
	}
	if page > numPages {
		return numPages
	}
	return page
}

// Window returns the page numbers to render, at most five:
//   - five or fewer pages total: all of them
//   - current page in the first three: 1..5
//   - current page within two of the end: the last five
//   - otherwise: two before, current, two after
func Window(page, numPages int) []int {
	var lo, hi int
	switch {
	case numPages <= 5:
		lo, hi = 1, numPages
	case page <= 3:
		lo, hi = 1, 5
	case numPages-page <= 2:
		lo, hi = numPages-4, numPages
	default:
		lo, hi = page-2, page+2
	}
	out := make([]int, 0, hi-lo+1)
	for p := lo; p <= hi; p++ {
		out = append(out, p)
	}
	return out
}
