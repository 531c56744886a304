package services

import "errors"

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	// Ресурс не найден (универсальная)
	ErrNotFound = errors.New("requested resource not found")

	// Ошибки валидации и бизнес-правил
	ErrValidationFailed       = errors.New("validation failed")
	ErrPasswordTooShort       = errors.New("password is too short")
	ErrFencerNotEligible      = errors.New("fencer is not eligible for this tournament")
	ErrAlreadyRegistered      = errors.New("fencer is already registered for this tournament")
	ErrNotRegistered          = errors.New("fencer is not registered for this tournament")
	ErrRegistrationNotOpen    = errors.New("tournament registration is not open")
	ErrTournamentFull         = errors.New("tournament registration is full")
	ErrResultsNotAllowed      = errors.New("tournament is not accepting results in its current status")
	ErrRegistrantMismatch     = errors.New("placements do not match the registered fencers")
	ErrDuplicatePlacement     = errors.New("duplicate placement in results")
	ErrInvalidPlacement       = errors.New("placement must be a positive integer")
	ErrSimulationInvalidRange = errors.New("simulation date range is invalid")

	// Ошибки конфликтов
	ErrSeasonNameConflict = errors.New("season name already exists")
	ErrClubIDConflict     = errors.New("club id is already taken")
	ErrUsernameConflict   = errors.New("username is already in use")
	ErrUserEmailConflict  = errors.New("email address is already in use")
	ErrRankingConflict    = errors.New("ranking already exists for this fencer and bracket")

	// Ошибки аутентификации и авторизации
	ErrAuthInvalidCredentials = errors.New("invalid username or password")
	ErrForbiddenOperation     = errors.New("operation not allowed for the current user")

	// Ошибки, специфичные для сущностей (дублируют ErrNotFound, но дают больше контекста)
	ErrFencerNotFound     = errors.New("fencer not found")
	ErrClubNotFound       = errors.New("club not found")
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrSeasonNotFound     = errors.New("season not found")
	ErrRankingNotFound    = errors.New("ranking not found")
	ErrResultNotFound     = errors.New("tournament result not found")
	ErrUserNotFound       = errors.New("user not found")

	// Ошибки турниров
	ErrTournamentInvalidDate             = errors.New("tournament date is required")
	ErrTournamentInvalidCapacity         = errors.New("tournament max participants must be positive")
	ErrTournamentInvalidStatus           = errors.New("invalid tournament status provided")
	ErrTournamentInvalidStatusTransition = errors.New("invalid tournament status transition")

	// Ошибки сезонов
	ErrSeasonInvalidDateRange = errors.New("season end date must be after start date")
)
