package domain

import (
	"fmt"
	"strings"
)

// ValidateName checks that an identity name is usable. Names are
// case-sensitive and must contain at least one non-whitespace rune.
func ValidateName(kind, name string) error {
	if strings.TrimSpace(name) == "" {
		return Invalid(fmt.Sprintf("%s name must not be blank", kind))
	}
	return nil
}

// CompareNames is the total order used for every identity kind:
// plain lexicographic comparison of the names.
func CompareNames(a, b string) int {
	return strings.Compare(a, b)
}
