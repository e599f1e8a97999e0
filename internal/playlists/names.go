package playlists

import (
	"strconv"
	"strings"
)

// DefaultName returns base if no existing name is base or "base N".
// Otherwise it returns "base N" with the smallest unused N >= 1.
func DefaultName(base string, existing []string) string {
	base = strings.TrimSpace(base)
	if base == "" {
		base = "Playlist"
	}

	taken := make(map[int]struct{})
	family := false
	for _, name := range existing {
		if name == base {
			family = true
			continue
		}
		suffix, ok := strings.CutPrefix(name, base+" ")
		if !ok {
			continue
		}
		n, err := strconv.Atoi(suffix)
		if err != nil || n < 1 || strconv.Itoa(n) != suffix {
			continue
		}
		taken[n] = struct{}{}
		family = true
	}

	if !family {
		return base
	}
	n := 1
	for {
		if _, ok := taken[n]; !ok {
			return base + " " + strconv.Itoa(n)
		}
		n++
	}
}
