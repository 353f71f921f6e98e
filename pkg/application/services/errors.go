package services

import "errors"

var (
	// ErrInactiveScenario is returned when a working-copy write targets a key other than the active one
	ErrInactiveScenario = errors.New("scenario is not the active working copy")
	// ErrAnalysisInProgress is returned when a narration request is already in flight
	ErrAnalysisInProgress = errors.New("analysis already in progress")
	// ErrUnknownMonth is returned for a month label that is not part of the current series
	ErrUnknownMonth = errors.New("unknown forecast month")
	// ErrUnknownDevice is returned for a device ID not configured in the selected month
	ErrUnknownDevice = errors.New("unknown device")
	// ErrUnknownField is returned for an edit naming a field that does not exist
	ErrUnknownField = errors.New("unknown field")
	// ErrEditorClosed is returned when a demand edit is applied with no open editor
	ErrEditorClosed = errors.New("demand editor is not open")
)
