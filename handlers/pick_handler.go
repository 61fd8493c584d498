package handlers

import (
	"net/http"

	"github.com/Dosada05/fantasy-league/middleware"
	"github.com/Dosada05/fantasy-league/services"
)

type PickHandler struct {
	pickService *services.PickService
}

func NewPickHandler(pickService *services.PickService) *PickHandler {
	return &PickHandler{pickService: pickService}
}

// GetPhasePick returns the caller's pick for a stage, creating an empty
// one on first access.
func (h *PickHandler) GetPhasePick(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}
	stageID, err := urlParamInt(r, "stageID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	pick, err := h.pickService.GetOrCreatePhasePick(r.Context(), userID, stageID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"pick": pick}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PickHandler) SavePhasePick(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}
	stageID, err := urlParamInt(r, "stageID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.PhasePickInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	pick, err := h.pickService.SavePhasePick(r.Context(), userID, stageID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"pick": pick}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PickHandler) GetPlayoffPick(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}
	tournamentID, err := urlParamInt(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	pick, err := h.pickService.GetOrCreatePlayoffPick(r.Context(), userID, tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"pick": pick}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PickHandler) SavePlayoffPick(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}
	tournamentID, err := urlParamInt(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.PlayoffPickInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	pick, err := h.pickService.SavePlayoffPick(r.Context(), userID, tournamentID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"pick": pick}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
