package handlers

import (
	"crypto/subtle"
	"errors"
	"net/http"

	"github.com/Dosada05/fantasy-league/feed"
	"github.com/Dosada05/fantasy-league/services"
)

// FeedHandler receives push updates from the score provider.
type FeedHandler struct {
	feedService *services.FeedService
	apiKey      string
}

func NewFeedHandler(feedService *services.FeedService, apiKey string) *FeedHandler {
	return &FeedHandler{feedService: feedService, apiKey: apiKey}
}

// Webhook applies one provider match payload. The provider authenticates
// with a shared key in X-Feed-Key.
func (h *FeedHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	if h.apiKey != "" {
		provided := r.Header.Get("X-Feed-Key")
		if subtle.ConstantTimeCompare([]byte(provided), []byte(h.apiKey)) != 1 {
			unauthorizedResponse(w, r, "invalid feed key")
			return
		}
	}

	var update feed.MatchUpdate
	if err := readJSON(w, r, &update); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if update.FeedMatchID < 1 {
		badRequestResponse(w, r, errors.New("match_id is required"))
		return
	}

	if err := h.feedService.ApplyFeedUpdate(r.Context(), &update); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}
