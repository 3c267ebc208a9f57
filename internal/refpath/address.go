// internal/refpath/address.go
package refpath

import (
	"strconv"
	"strings"
)

// String serializes the Address into its canonical string representation.
func (a Address) String() string {
	var sb strings.Builder
	sb.WriteString(a.Node)
	if a.Field != "" {
		sb.WriteRune('.')
		sb.WriteString(a.Field)
	}
	if a.HasIndex() {
		sb.WriteRune('[')
		sb.WriteString(strconv.Itoa(a.Index))
		sb.WriteRune(']')
	}
	return sb.String()
}

// Less orders addresses by node, then field, then index.
func (a Address) Less(other Address) bool {
	if a.Node != other.Node {
		return a.Node < other.Node
	}
	if a.Field != other.Field {
		return a.Field < other.Field
	}
	return a.Index < other.Index
}
