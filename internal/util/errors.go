package util

import "errors"

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrEmailRegistered      = errors.New("email already registered")
	ErrPermissionDenied     = errors.New("permission denied")
	ErrProjectNotFound      = errors.New("project not found")
	ErrStudyNotFound        = errors.New("study not found")
	ErrToolNotFound         = errors.New("assessment tool not found")
	ErrAssessmentNotFound   = errors.New("assessment not found")
	ErrDomainNotFound       = errors.New("domain not found in assessment")
	ErrUnknownQuestion      = errors.New("question does not belong to the tool's question set")
	ErrInvalidUpdateKind    = errors.New("update kind must be 'response' or 'justification'")
	ErrInvalidResponse      = errors.New("invalid response category")
	ErrInvalidBiasRating    = errors.New("invalid bias rating")
	ErrInvalidStatus        = errors.New("invalid assessment status")
	ErrIncompleteJudgements = errors.New("all domains must be judged before the overall roll-up")
	ErrEngineUnsupported    = errors.New("no judgement algorithm for this tool")
)
