package errors

import (
	"fmt"
	"sort"
	"strings"
)

// Kind represents the category of error
type Kind int

const (
	// KindNoInput - empty path set handed to the engine; caller error
	KindNoInput Kind = iota
	// KindProtocol - malformed commit stream ordering; the log source
	// violated its contract
	KindProtocol
	// KindIncompleteResolution - the stream ended before every path resolved
	KindIncompleteResolution
	// KindEmptyEnumeration - a ref+filter combination yielded zero paths
	KindEmptyEnumeration
	// KindGit - a git invocation or repository access failed
	KindGit
)

// Error represents a structured error with context
type Error struct {
	Kind    Kind
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches on kind so callers can use errors.Is with a bare kind sentinel
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// WithContext adds context to the error
func (e *Error) WithContext(key string, value interface{}) *Error {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// Paths returns the path list carried in context, if any. Used by callers
// that report unresolved paths individually.
func (e *Error) Paths() []string {
	paths, _ := e.Context["paths"].([]string)
	return paths
}

func kindString(k Kind) string {
	switch k {
	case KindNoInput:
		return "NO_INPUT"
	case KindProtocol:
		return "PROTOCOL"
	case KindIncompleteResolution:
		return "INCOMPLETE_RESOLUTION"
	case KindEmptyEnumeration:
		return "EMPTY_ENUMERATION"
	case KindGit:
		return "GIT"
	default:
		return "UNKNOWN"
	}
}

// DetailedString returns the error with its kind tag and context, for
// verbose logging
func (e *Error) DetailedString() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("[%s] %s\n", kindString(e.Kind), e.Message))

	if e.Cause != nil {
		sb.WriteString(fmt.Sprintf("Caused by: %v\n", e.Cause))
	}

	if len(e.Context) > 0 {
		keys := make([]string, 0, len(e.Context))
		for k := range e.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		sb.WriteString("Context:\n")
		for _, k := range keys {
			sb.WriteString(fmt.Sprintf("  %s: %v\n", k, e.Context[k]))
		}
	}

	return sb.String()
}

// New creates a new error with the given kind and message
func New(kind Kind, message string) *Error {
	return &Error{
		Kind:    kind,
		Message: message,
		Context: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a kind and message
func Wrap(err error, kind Kind, message string) *Error {
	if err == nil {
		return nil
	}

	return &Error{
		Kind:    kind,
		Message: message,
		Cause:   err,
		Context: make(map[string]interface{}),
	}
}

// Constructors for the domain error kinds

// NoInput creates the error for an empty path set
func NoInput() *Error {
	return New(KindNoInput, "no paths to resolve")
}

// Protocol creates a protocol error for a malformed commit stream
func Protocol(message string) *Error {
	return New(KindProtocol, message)
}

// Protocolf creates a protocol error with formatting
func Protocolf(format string, args ...interface{}) *Error {
	return New(KindProtocol, fmt.Sprintf(format, args...))
}

// IncompleteResolution creates the error for paths left unresolved after the
// commit stream was exhausted. The paths are sorted and carried in context.
func IncompleteResolution(paths []string) *Error {
	sorted := make([]string, len(paths))
	copy(sorted, paths)
	sort.Strings(sorted)

	return New(KindIncompleteResolution,
		fmt.Sprintf("%d path(s) could not be attributed to any commit", len(sorted))).
		WithContext("paths", sorted)
}

// EmptyEnumeration creates the error for a ref+filter combination that
// yielded no paths
func EmptyEnumeration(ref string, filters []string) *Error {
	msg := fmt.Sprintf("no tracked files found at %s", ref)
	if len(filters) > 0 {
		msg = fmt.Sprintf("no tracked files found at %s matching %s (check the filter spelling; a mistyped pathspec matches nothing)",
			ref, strings.Join(filters, " "))
	}
	return New(KindEmptyEnumeration, msg).
		WithContext("ref", ref).
		WithContext("filters", filters)
}

// Git wraps a failed git invocation
func Git(err error, message string) *Error {
	return Wrap(err, KindGit, message)
}

// Gitf wraps a failed git invocation with formatting
func Gitf(err error, format string, args ...interface{}) *Error {
	return Wrap(err, KindGit, fmt.Sprintf(format, args...))
}

// GetKind returns the kind of an error
func GetKind(err error) Kind {
	if e, ok := err.(*Error); ok {
		return e.Kind
	}
	return KindGit
}

// IsIncompleteResolution reports whether err is an incomplete-resolution error
func IsIncompleteResolution(err error) bool {
	e, ok := err.(*Error)
	return ok && e.Kind == KindIncompleteResolution
}

// IsEmptyEnumeration reports whether err is an empty-enumeration error
func IsEmptyEnumeration(err error) bool {
	e, ok := err.(*Error)
	return ok && e.Kind == KindEmptyEnumeration
}

// IsProtocol reports whether err is a protocol error
func IsProtocol(err error) bool {
	e, ok := err.(*Error)
	return ok && e.Kind == KindProtocol
}

// IsNoInput reports whether err is a no-input error
func IsNoInput(err error) bool {
	e, ok := err.(*Error)
	return ok && e.Kind == KindNoInput
}
