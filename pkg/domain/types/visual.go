package types

import "fmt"

// VisualMode represents the capture mode of a visual support session
type VisualMode string

const (
	VisualModeScreen VisualMode = "screen"
	VisualModeCamera VisualMode = "camera"
)

// IsValid checks if the visual mode is valid
func (m VisualMode) IsValid() bool {
	return m == VisualModeScreen || m == VisualModeCamera
}

// String returns the string representation of the visual mode
func (m VisualMode) String() string {
	return string(m)
}

// ParseVisualMode parses a string into a VisualMode
func ParseVisualMode(s string) (VisualMode, error) {
	mode := VisualMode(s)
	if !mode.IsValid() {
		return "", fmt.Errorf("invalid visual mode: %s", s)
	}
	return mode, nil
}

// VisualSessionStatus represents the lifecycle state of a visual session
type VisualSessionStatus string

const (
	VisualSessionPending VisualSessionStatus = "pending"
	VisualSessionActive  VisualSessionStatus = "active"
	VisualSessionEnded   VisualSessionStatus = "ended"
	VisualSessionExpired VisualSessionStatus = "expired"
)

// CanTransitionTo reports whether a session status transition is allowed
func (s VisualSessionStatus) CanTransitionTo(next VisualSessionStatus) bool {
	switch s {
	case VisualSessionPending:
		return next == VisualSessionActive || next == VisualSessionExpired
	case VisualSessionActive:
		return next == VisualSessionEnded || next == VisualSessionExpired
	default:
		return false
	}
}

// String returns the string representation of the session status
func (s VisualSessionStatus) String() string {
	return string(s)
}
