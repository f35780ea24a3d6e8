package model

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors shared across the domain
var (
	ErrMissingTurnField  = goerr.New("missing required turn field")
	ErrDimensionMismatch = goerr.New("embedding dimension mismatch")
	ErrInvalidTransition = goerr.New("invalid case status transition")
	ErrPlaybookNotFound  = goerr.New("playbook not found")
	ErrCaseNotFound      = goerr.New("case not found")
	ErrTenantRequired    = goerr.New("tenant ID is required")
	ErrSessionNotFound   = goerr.New("visual session not found")
	ErrSessionTransition = goerr.New("invalid visual session transition")
)
