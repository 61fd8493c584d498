package handlers

import (
	"errors"
	"net/http"

	"github.com/Dosada05/fantasy-league/models"
	"github.com/Dosada05/fantasy-league/services"
)

// AdminHandler bundles the operations behind the admin role: tournament
// setup, stage lifecycle, match results and finalization.
type AdminHandler struct {
	tournamentService *services.TournamentService
	stageService      *services.StageService
	fantasyService    *services.FantasyService
	feedService       *services.FeedService
	teamService       *services.TeamService
}

func NewAdminHandler(
	tournamentService *services.TournamentService,
	stageService *services.StageService,
	fantasyService *services.FantasyService,
	feedService *services.FeedService,
	teamService *services.TeamService,
) *AdminHandler {
	return &AdminHandler{
		tournamentService: tournamentService,
		stageService:      stageService,
		fantasyService:    fantasyService,
		feedService:       feedService,
		teamService:       teamService,
	}
}

func (h *AdminHandler) CreateTournament(w http.ResponseWriter, r *http.Request) {
	var tournament models.Tournament
	if err := readJSON(w, r, &tournament); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if err := h.tournamentService.Create(r.Context(), &tournament); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *AdminHandler) SetTournamentLive(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := urlParamInt(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input struct {
		IsLive bool `json:"is_live"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if err := h.tournamentService.SetLive(r.Context(), tournamentID, input.IsLive); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) CreateStage(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := urlParamInt(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var stage models.Stage
	if err := readJSON(w, r, &stage); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	stage.TournamentID = tournamentID
	if err := h.stageService.CreateStage(r.Context(), &stage); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"stage": stage}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *AdminHandler) AddTeamToStage(w http.ResponseWriter, r *http.Request) {
	stageID, err := urlParamInt(r, "stageID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input struct {
		TeamID      int `json:"team_id"`
		InitialSeed int `json:"initial_seed"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	stageTeam, err := h.stageService.AddTeamToStage(r.Context(), stageID, input.TeamID, input.InitialSeed)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"stage_team": stageTeam}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SetStageStatus handles the manual OPEN <-> LOCKED walk.
func (h *AdminHandler) SetStageStatus(w http.ResponseWriter, r *http.Request) {
	stageID, err := urlParamInt(r, "stageID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input struct {
		FantasyStatus models.FantasyStatus `json:"fantasy_status"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	stage, err := h.stageService.SetFantasyStatus(r.Context(), stageID, input.FantasyStatus)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"stage": stage}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// FinalizeStage scores every pending pick of a Swiss stage in one
// transaction and marks the stage FINALIZED.
func (h *AdminHandler) FinalizeStage(w http.ResponseWriter, r *http.Request) {
	stageID, err := urlParamInt(r, "stageID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	result, err := h.fantasyService.FinalizeStage(r.Context(), stageID)
	if err != nil {
		if result != nil {
			// Rolled-back batch: report the counts along with the error.
			errorResponse(w, r, http.StatusConflict, jsonResponse{
				"message":   err.Error(),
				"processed": result.Processed,
				"failed":    result.Failed,
			})
			return
		}
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"result": result}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *AdminHandler) FinalizePlayoffs(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := urlParamInt(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	result, err := h.fantasyService.FinalizePlayoffs(r.Context(), tournamentID)
	if err != nil {
		if result != nil {
			errorResponse(w, r, http.StatusConflict, jsonResponse{
				"message":   err.Error(),
				"processed": result.Processed,
				"failed":    result.Failed,
			})
			return
		}
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"result": result}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *AdminHandler) SetMatchResult(w http.ResponseWriter, r *http.Request) {
	matchID, err := urlParamInt(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input services.MatchResultInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	match, err := h.feedService.SetMatchResult(r.Context(), matchID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *AdminHandler) CreateTeam(w http.ResponseWriter, r *http.Request) {
	var team models.Team
	if err := readJSON(w, r, &team); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if err := h.teamService.Create(r.Context(), &team); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"team": team}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UploadTeamLogo accepts a multipart form with a "logo" file field.
func (h *AdminHandler) UploadTeamLogo(w http.ResponseWriter, r *http.Request) {
	teamID, err := urlParamInt(r, "teamID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		badRequestResponse(w, r, errors.New("failed to parse multipart form"))
		return
	}
	file, header, err := r.FormFile("logo")
	if err != nil {
		badRequestResponse(w, r, errors.New("logo file is required"))
		return
	}
	defer file.Close()

	team, err := h.teamService.UploadLogo(r.Context(), teamID, header.Header.Get("Content-Type"), file)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"team": team}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
