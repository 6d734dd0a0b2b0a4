package handler

import (
	"net/http"

	"github.com/history-quiz/historyquiz/internal/auth"
)

// LandingHandler renders the unauthenticated front page.
type LandingHandler struct{}

func NewLandingHandler() *LandingHandler {
	return &LandingHandler{}
}

// Index renders GET /.
func (h *LandingHandler) Index(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	render(w, "landing.html", BasePage{User: auth.UserFromContext(r.Context())})
}
