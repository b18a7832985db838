package fmask

import (
	"strconv"
	"strings"
)

// Default dilation sizes, in pixels.
const (
	DefaultCloudDilation  = 3
	DefaultShadowDilation = 3
	DefaultSnowDilation   = 0
)

// Command is the invocation template shared by every job of a batch. It is
// built once and never mutated afterwards.
type Command struct {
	// Executable is the Fmask application launcher.
	Executable string
	// RuntimeDir is the MATLAB Runtime directory.
	RuntimeDir     string
	CloudDilation  int
	ShadowDilation int
	SnowDilation   int
	// CloudProbability is the optional cloud probability threshold in
	// percent. Nil lets Fmask pick its per-sensor default.
	CloudProbability *float64
}

// Tokens returns the ordered invocation tokens:
// executable, runtime dir, cloud, cloud shadow, snow, [cloud probability].
func (c Command) Tokens() []string {
	tokens := []string{
		c.Executable,
		c.RuntimeDir,
		strconv.Itoa(c.CloudDilation),
		strconv.Itoa(c.ShadowDilation),
		strconv.Itoa(c.SnowDilation),
	}
	if c.CloudProbability != nil {
		tokens = append(tokens, strconv.FormatFloat(*c.CloudProbability, 'f', -1, 64))
	}
	return tokens
}

// String joins the tokens with single spaces, producing the shell command line.
func (c Command) String() string {
	return strings.Join(c.Tokens(), " ")
}

// Prefix returns the progress-line prefix for a job ordinal. Ordinal zero
// (the sequential path) has no prefix.
func Prefix(ordinal int) string {
	if ordinal <= 0 {
		return ""
	}
	return "[" + strconv.Itoa(ordinal) + "] "
}
