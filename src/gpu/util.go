package gpu

import (
	"strings"

	"golang.org/x/exp/constraints"
)

func hasBits[N constraints.Unsigned](field, bits N) bool {
	return field&bits == bits
}

// safeString null terminates s for the binding.
func safeString(s string) string {
	if strings.HasSuffix(s, "\x00") {
		return s
	}
	return s + "\x00"
}

func safeStrings(list []string) []string {
	out := make([]string, len(list))
	for i, s := range list {
		out[i] = safeString(s)
	}
	return out
}

func containsName(names []string, name string) bool {
	name = strings.TrimRight(name, "\x00")
	for _, n := range names {
		if strings.TrimRight(n, "\x00") == name {
			return true
		}
	}
	return false
}
