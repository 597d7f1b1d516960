// Package naverr implements a closed taxonomy of errors the bot
// navigation core can surface.
package naverr

import "github.com/pkg/errors"

// Kind identifies one of the error classes the core is allowed to surface.
// Propagation policy: geometry/navmesh failures make the match bot-free
// and are reported to the host; script failures are contained to the
// offending bot; nothing in this core aborts the process.
type Kind uint8

const (
	// BoundsOverflow: level world bounds exceed the +/-32767 aggregator limit.
	BoundsOverflow Kind = iota
	// NavmeshTooComplex: polygon count after aggregation exceeds 0xFFE, or the
	// adjacency graph exceeds pathfind.MaxZones.
	NavmeshTooComplex
	// EmptyNavmesh: triangulation produced zero triangles.
	EmptyNavmesh
	// BotFileNotFound: the bot-file loader could not find the script source.
	BotFileNotFound
	// ScriptLoadError: the script failed to compile/run its top-level code.
	ScriptLoadError
	// ScriptRuntimeError: a per-tick script call raised an error.
	ScriptRuntimeError
	// PathNotFound is not itself an error condition (A* returns an empty
	// path); kept here only so callers can tag a "no path" result uniformly.
	PathNotFound
	// OutOfRangeZoneId: a script-visible zone id was out of range.
	OutOfRangeZoneId
)

func (k Kind) String() string {
	switch k {
	case BoundsOverflow:
		return "BoundsOverflow"
	case NavmeshTooComplex:
		return "NavmeshTooComplex"
	case EmptyNavmesh:
		return "EmptyNavmesh"
	case BotFileNotFound:
		return "BotFileNotFound"
	case ScriptLoadError:
		return "ScriptLoadError"
	case ScriptRuntimeError:
		return "ScriptRuntimeError"
	case PathNotFound:
		return "PathNotFound"
	case OutOfRangeZoneId:
		return "OutOfRangeZoneId"
	default:
		return "Unknown"
	}
}

// Error wraps a Kind with a human-readable message and optional cause.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Kind.String() + ": " + e.Message + ": " + e.Cause.Error()
	}
	return e.Kind.String() + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds an Error of the given kind.
func New(kind Kind, msg string) error {
	return &Error{Kind: kind, Message: msg}
}

// Wrap attaches kind/msg context to an underlying cause.
func Wrap(kind Kind, cause error, msg string) error {
	return &Error{Kind: kind, Message: msg, Cause: errors.WithStack(cause)}
}

// Is reports whether err (or something it wraps) is a naverr.Error of kind.
func Is(err error, kind Kind) bool {
	var e *Error
	for err != nil {
		if ce, ok := err.(*Error); ok {
			e = ce
			break
		}
		err = errors.Unwrap(err)
	}
	return e != nil && e.Kind == kind
}
