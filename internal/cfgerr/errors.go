package cfgerr

import (
	"fmt"
	"strings"

	"github.com/specialistvlad/chirpcfg/internal/refpath"
)

// UnknownFieldError reports a reference to a node or field that was never
// defined.
type UnknownFieldError struct {
	Node  string
	Field string
}

func (e *UnknownFieldError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("unknown config node %q", e.Node)
	}
	return fmt.Sprintf("unknown field %q on config node %q", e.Field, e.Node)
}

// CyclicReferenceError reports a reference chain that loops back onto a
// field already being resolved. Chain starts and ends with the same address.
type CyclicReferenceError struct {
	Chain []refpath.Address
}

func (e *CyclicReferenceError) Error() string {
	parts := make([]string, len(e.Chain))
	for i, addr := range e.Chain {
		parts[i] = addr.String()
	}
	return "cyclic reference: " + strings.Join(parts, " -> ")
}

// UnsupportedKernelSizeError reports a derived kernel size larger than the
// biggest sanctioned transform size.
type UnsupportedKernelSizeError struct {
	KernelSize int
	Max        int
}

func (e *UnsupportedKernelSizeError) Error() string {
	return fmt.Sprintf("kernel size %d exceeds the largest supported transform size %d; lower sample_rate_hz or raise frame_rate_hz", e.KernelSize, e.Max)
}

// ConfigurationError reports an invalid base parameter or a malformed
// preset definition.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Field == "" {
		return "invalid configuration: " + e.Reason
	}
	return fmt.Sprintf("invalid configuration for %q: %s", e.Field, e.Reason)
}

// Invalid is shorthand for building a ConfigurationError.
func Invalid(field, format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
