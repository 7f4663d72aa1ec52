package server

import "errors"

var (
	ErrStatusInvalidPayload     string = "INVALID_PAYLOAD"
	ErrStatusUnregisteredPlayer string = "UNREGISTERED_PLAYER"
	ErrStatusAlreadyInMatch     string = "ALREADY_IN_MATCH"
	ErrStatusUnknownMatch       string = "UNKNOWN_MATCH"
	ErrStatusMatchDecided       string = "MATCH_DECIDED"
	ErrStatusMatchNotStarted    string = "MATCH_NOT_STARTED"
	ErrStatusNotAPlayer         string = "NOT_A_PLAYER"
	ErrStatusSubmissionBacklog  string = "SUBMISSION_BACKLOG"
	ErrStatusBadLanguage        string = "UNSUPPORTED_LANGUAGE"
	ErrStatusMatchmakingFailed  string = "MATCHMAKING_FAILED"
)

var (
	ErrMatchDecided    = errors.New("match already decided")
	ErrMatchNotStarted = errors.New("match not started")
	ErrTooManyPending  = errors.New("too many pending submissions")
)
