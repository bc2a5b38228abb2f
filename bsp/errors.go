package bsp

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNoSegments            = errors.New("no usable segments")
	ErrDegenerateRegion      = errors.New("degenerate region")
	ErrNoViableSplitter      = errors.New("no viable splitter")
	ErrUnresolvableConvexity = errors.New("unresolvable convexity")
)

// BuildError reports where in the tree a build gave up.
type BuildError struct {
	State State
	Path  []Side
	Err   error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("bsp: %v at %v path %s", e.Err, e.State, pathString(e.Path))
}

func (e *BuildError) Unwrap() error {
	return e.Err
}

func pathString(path []Side) string {
	if len(path) == 0 {
		return "root"
	}
	var sb strings.Builder
	for _, s := range path {
		sb.WriteByte(s.letter())
	}
	return sb.String()
}
