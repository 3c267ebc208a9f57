// internal/refpath/parser.go
package refpath

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// segmentRegex parses a single identifier, optionally followed by an index.
var segmentRegex = regexp.MustCompile(`^([a-zA-Z_][a-zA-Z0-9_-]*)(?:\[(\d+)\])?$`)

// Parse creates an Address from its canonical string representation.
func Parse(raw string) (Address, error) {
	if raw == "" {
		return Address{}, fmt.Errorf("field address cannot be empty")
	}

	parts := strings.Split(raw, ".")
	if len(parts) != 2 {
		return Address{}, fmt.Errorf("field address %q must have the form node.field", raw)
	}

	nodeMatch := segmentRegex.FindStringSubmatch(parts[0])
	if nodeMatch == nil || nodeMatch[2] != "" {
		return Address{}, fmt.Errorf("invalid node name: %q", parts[0])
	}

	fieldMatch := segmentRegex.FindStringSubmatch(parts[1])
	if fieldMatch == nil {
		return Address{}, fmt.Errorf("invalid field segment format: %q", parts[1])
	}

	addr := New(nodeMatch[1], fieldMatch[1])
	if fieldMatch[2] != "" {
		index, err := strconv.Atoi(fieldMatch[2])
		if err != nil {
			// Unreachable due to regex `\d+`
			return Address{}, fmt.Errorf("internal error parsing index: %w", err)
		}
		addr.Index = index
	}
	return addr, nil
}
