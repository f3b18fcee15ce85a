package rib

import (
	"strings"

	"github.com/ixp-twin/twinctl/pkg/util"
)

// headerPrefixes mark legend and column-header lines of "bgpctl show rib".
var headerPrefixes = []string{"flags", "S = Stale", "origin"}

// routeFlags are the characters of the bgpctl flags column: valid,
// selected, IBGP, announced, stale, error and multipath.
const routeFlags = "*>IASEm"

// ParseDump turns the raw text of a route-server RIB dump into route lines.
// Inner whitespace collapses to single spaces, the leading flags column
// ("*>", "*", "I*>", "*>m") is stripped, and legend, header and empty lines
// are dropped. Route lines therefore compare equal whether or not a path
// was selected on either side.
func ParseDump(text string) []string {
	var out []string
	for _, line := range util.SplitLines(text) {
		line = util.CollapseSpaces(line)
		if isHeader(line) {
			continue
		}
		if line = stripFlags(line); line == "" {
			continue
		}
		out = append(out, line)
	}
	return out
}

func stripFlags(line string) string {
	flags, rest, found := strings.Cut(line, " ")
	if flags == "" || strings.Trim(flags, routeFlags) != "" {
		return line
	}
	if !found {
		return ""
	}
	return rest
}

func isHeader(line string) bool {
	for _, p := range headerPrefixes {
		if strings.HasPrefix(line, p) {
			return true
		}
	}
	return false
}
