package api

import (
	"net/http"

	"github.com/matineehq/matinee/internal/domain/mood"
)

// MoodsHandler lists the moods the engine understands.
type MoodsHandler struct{}

// NewMoodsHandler creates a new moods handler.
func NewMoodsHandler() *MoodsHandler {
	return &MoodsHandler{}
}

type moodsResponse struct {
	Moods []mood.Description `json:"moods"`
}

// HandleGetMoods handles GET /moods requests.
func (h *MoodsHandler) HandleGetMoods(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, moodsResponse{Moods: mood.Available()})
}
