package dto

// StartDragRequest represents the request body for POST /projects/:id/drag/start.
type StartDragRequest struct {
	TaskID string `json:"task_id"`
}

// PointerRequest represents the request body for drag move and drop.
type PointerRequest struct {
	PointerX *float64 `json:"pointer_x"`
}

// ViewportRequest represents the request body for PUT /projects/:id/viewport.
type ViewportRequest struct {
	WidthPx  float64 `json:"width_px"`
	ViewMode string  `json:"view_mode"`
}

// ValidateMoveRequest represents the request body for POST /projects/:id/validate.
type ValidateMoveRequest struct {
	TaskID    string `json:"task_id"`
	StartDate string `json:"start_date"` // YYYY-MM-DD
}

// TimelineQuery represents query parameters for GET /projects/:id/timeline.
type TimelineQuery struct {
	ScrollTopPx      float64 // ?scroll_top=800
	ViewportHeightPx float64 // ?viewport_height=600
	RowHeightPx      float64 // ?row_height=40
	BufferRows       int     // ?buffer=5
	Threshold        int     // ?threshold=50
}
