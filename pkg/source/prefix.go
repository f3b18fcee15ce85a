package source

import (
	"context"
	"net/netip"
	"sort"

	"github.com/ixp-twin/twinctl/pkg/rib"
	"github.com/ixp-twin/twinctl/pkg/util"
)

// PrefixSource reduces the route lines of another source to their
// canonical prefixes, one per prefix and sorted, so that a full RIB dump
// compares against the prefix-only APPL_DB view.
type PrefixSource struct {
	Source Source
	Family int // 4, 6 or 0 for both
}

// Fetch fetches the wrapped source and keeps the prefix of each line. Lines
// without a prefix in network form are dropped.
func (s *PrefixSource) Fetch(ctx context.Context) ([]string, error) {
	lines, err := s.Source.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[netip.Prefix]bool, len(lines))
	prefixes := make([]string, 0, len(lines))
	dropped := 0
	for _, line := range lines {
		p, _, ok := rib.LinePrefix(line)
		if !ok {
			dropped++
			continue
		}
		if seen[p] || !familyMatches(p, s.Family) {
			continue
		}
		seen[p] = true
		prefixes = append(prefixes, p.String())
	}
	sort.Strings(prefixes)
	util.WithSource(s).Debugf("Kept %d prefixes of %d route lines, %d without a prefix", len(prefixes), len(lines), dropped)
	return prefixes, nil
}

func (s *PrefixSource) String() string {
	return s.Source.String() + " (prefixes)"
}
