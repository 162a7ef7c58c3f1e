package handlers

import (
	"net/http"

	"github.com/mirrorday/mirrorday/internal/widget"
)

// WidgetHandler serves the widget entry over HTTP for display devices that
// poll instead of reading the file directly
type WidgetHandler struct {
	widget *widget.Widget
}

// NewWidgetHandler creates a new widget handler
func NewWidgetHandler(w *widget.Widget) *WidgetHandler {
	return &WidgetHandler{widget: w}
}

// GetWidget returns the soonest upcoming reminder, or a null entry when
// there is nothing to show
func (h *WidgetHandler) GetWidget(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.widget.Next())
}
