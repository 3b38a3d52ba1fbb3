package timeline

import "math"

// Window is an inclusive range of row indices to materialize.
// An empty window has EndIndex < StartIndex.
type Window struct {
	StartIndex int
	EndIndex   int
}

// Len returns the number of rows in the window.
func (w Window) Len() int {
	if w.EndIndex < w.StartIndex {
		return 0
	}
	return w.EndIndex - w.StartIndex + 1
}

// Contains reports whether row index i is inside the window.
func (w Window) Contains(i int) bool {
	return i >= w.StartIndex && i <= w.EndIndex
}

// VisibleRange computes the rows inside or near the viewport, padded by bufferRows on both sides.
func VisibleRange(scrollOffsetPx, viewportHeightPx, rowHeightPx float64, totalRows, bufferRows int) Window {
	if totalRows <= 0 {
		return Window{StartIndex: 0, EndIndex: -1}
	}
	if rowHeightPx <= 0 {
		return Window{StartIndex: 0, EndIndex: totalRows - 1}
	}
	if bufferRows < 0 {
		bufferRows = 0
	}
	scrollOffsetPx = math.Max(scrollOffsetPx, 0)
	viewportHeightPx = math.Max(viewportHeightPx, 0)

	start := int(math.Floor(scrollOffsetPx/rowHeightPx)) - bufferRows
	start = min(max(start, 0), totalRows-1)

	visible := int(math.Ceil(viewportHeightPx / rowHeightPx))
	end := min(totalRows-1, start+visible+2*bufferRows)

	return Window{StartIndex: start, EndIndex: end}
}

// ShouldVirtualize reports whether a list is long enough to render only a window of it.
func ShouldVirtualize(totalRows, threshold int) bool {
	return totalRows > threshold
}

// PlanWindow returns the rows to render. Short lists are rendered whole.
func PlanWindow(scrollOffsetPx, viewportHeightPx, rowHeightPx float64, totalRows, bufferRows, threshold int) (Window, bool) {
	if !ShouldVirtualize(totalRows, threshold) {
		if totalRows <= 0 {
			return Window{StartIndex: 0, EndIndex: -1}, false
		}
		return Window{StartIndex: 0, EndIndex: totalRows - 1}, false
	}
	return VisibleRange(scrollOffsetPx, viewportHeightPx, rowHeightPx, totalRows, bufferRows), true
}
