package handlers

import (
	"net/http"
	"sort"

	"github.com/Dosada05/fantasy-league/services"
)

// FantasyHandler serves the public fantasy views: what a visitor needs to
// fill in a pick without being logged in as anyone in particular.
type FantasyHandler struct {
	stageService *services.StageService
}

func NewFantasyHandler(stageService *services.StageService) *FantasyHandler {
	return &FantasyHandler{stageService: stageService}
}

// StageFantasy returns a stage with standings, matches and the underdog
// bonus set for the picking UI.
func (h *FantasyHandler) StageFantasy(w http.ResponseWriter, r *http.Request) {
	stageID, err := urlParamInt(r, "stageID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	stage, err := h.stageService.GetStageDetails(r.Context(), stageID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	bonusSet := services.UnderdogBonusTeamIDs(stage.StageTeams)
	bonusTeamIDs := make([]int, 0, len(bonusSet))
	for teamID := range bonusSet {
		bonusTeamIDs = append(bonusTeamIDs, teamID)
	}
	sort.Ints(bonusTeamIDs)

	response := jsonResponse{
		"stage":          stage,
		"bonus_team_ids": bonusTeamIDs,
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// PlayoffFantasy returns the playoff stage of a tournament with its
// bracket matches.
func (h *FantasyHandler) PlayoffFantasy(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := urlParamInt(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	stage, err := h.stageService.GetPlayoffStageDetails(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"stage": stage}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
