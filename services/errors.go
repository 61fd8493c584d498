package services

import "errors"

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	// Ресурс не найден
	ErrNotFound           = errors.New("requested resource not found")
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrStageNotFound      = errors.New("stage not found")
	ErrTeamNotFound       = errors.New("team not found")
	ErrUserNotFound       = errors.New("user profile not found")
	ErrPickNotFound       = errors.New("fantasy pick not found")
	ErrMatchNotFound      = errors.New("match not found")
	ErrNoPlayoffStage     = errors.New("tournament has no playoff stage")

	// Ошибки доступа: клиент должен дождаться смены статуса фазы,
	// немедленный повтор бесполезен.
	ErrPicksLocked           = errors.New("picks for this stage are locked and can no longer be edited")
	ErrPicksFinalized        = errors.New("picks for this stage are finalized, points have been calculated")
	ErrPreviousStageNotFinal = errors.New("picks are not allowed until the previous stage is finalized")
	ErrSwissStagesNotFinal   = errors.New("playoff picks are not allowed until every swiss stage is finalized")

	// Ошибки валидации picks
	ErrTeamNotInStage   = errors.New("picked team does not participate in this stage")
	ErrTooManyPicks     = errors.New("too many teams picked for this slot")
	ErrDuplicatePick    = errors.New("the same team is picked in more than one slot")
	ErrValidationFailed = errors.New("validation failed")

	// Предусловия batch-операций
	ErrStageNotSwiss           = errors.New("finalize-stage is only valid for swiss stages")
	ErrPlayoffStageNotFinal    = errors.New("playoff stage fantasy status must be FINALIZED before playoff points are calculated")
	ErrInvalidStatusTransition = errors.New("invalid fantasy status transition")
	ErrStageFinalized          = errors.New("stage fantasy status is FINALIZED and cannot change")

	// Аутентификация
	ErrAuthInvalidCredentials = errors.New("invalid email or password")
	ErrAuthEmailTaken         = errors.New("email is already taken")
	ErrAuthUsernameTaken      = errors.New("username is already taken")
	ErrPasswordTooShort       = errors.New("password is too short")

	// Прочее
	ErrMatchWinnerRequired = errors.New("a finished match must carry a winner")
	ErrMatchWinnerInvalid  = errors.New("match winner must be one of the two participants")
	ErrUnsupportedLogoType = errors.New("unsupported logo content type")
)
