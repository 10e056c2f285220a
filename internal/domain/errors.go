package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrRecognitionMiss means no interpretation strategy produced a Command.
	ErrRecognitionMiss = errors.New("command not understood")

	// ErrVolumeUnknown is returned by volume controls that cannot read the current level.
	ErrVolumeUnknown = errors.New("current volume unknown")

	ErrInvalidVolume = errors.New("invalid volume level")
)

// ValidationError reports a Command missing a field its action requires.
type ValidationError struct {
	Action Action
	Field  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s command: %s is required", e.Action, e.Field)
}

// ExecutionError reports a failed platform adapter call.
type ExecutionError struct {
	Action   Action
	Platform Platform
	Err      error
}

func (e *ExecutionError) Error() string {
	if e.Platform != "" {
		return fmt.Sprintf("executing %s on %s: %v", e.Action, e.Platform, e.Err)
	}
	return fmt.Sprintf("executing %s: %v", e.Action, e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// ConfigError represents a configuration error. It is fatal at startup.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}

type ErrorKind string

const (
	KindNone            ErrorKind = "ok"
	KindRecognitionMiss ErrorKind = "recognition_miss"
	KindValidation      ErrorKind = "validation_failure"
	KindExecution       ErrorKind = "execution_error"
	KindConfiguration   ErrorKind = "configuration_error"
)

// KindOf classifies err. Errors outside the taxonomy count as execution errors.
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindNone
	}

	var validationErr *ValidationError
	var configErr *ConfigError

	switch {
	case errors.Is(err, ErrRecognitionMiss):
		return KindRecognitionMiss
	case errors.As(err, &validationErr):
		return KindValidation
	case errors.As(err, &configErr):
		return KindConfiguration
	default:
		return KindExecution
	}
}
