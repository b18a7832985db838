package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrResolution        = errors.New("resolution error")
	ErrStaging           = errors.New("staging error")
	ErrExternalTool      = errors.New("external tool error")
	ErrDiscovery         = errors.New("discovery error")
	ErrAmbiguousArtifact = errors.New("ambiguous artifact")
	ErrRelocation        = errors.New("relocation error")
	ErrConfiguration     = errors.New("configuration error")
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrExternalTool
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Kind returns a short label for the failure class carried by err. Errors that
// carry no marker are reported as "io", matching how unwrapped filesystem
// failures surface from a job.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrResolution):
		return "resolution"
	case errors.Is(err, ErrStaging):
		return "staging"
	case errors.Is(err, ErrAmbiguousArtifact):
		return "ambiguous"
	case errors.Is(err, ErrDiscovery):
		return "discovery"
	case errors.Is(err, ErrRelocation):
		return "relocation"
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	case errors.Is(err, ErrExternalTool):
		return "tool"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "io"
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "job failure"
	}
	return strings.Join(parts, ": ")
}
