package rib

import (
	"net/netip"

	"github.com/gaissmai/bart"
	"go4.org/netipx"
)

// Covered is a route line whose prefix lies inside a prefix from the other
// side of the diff.
type Covered struct {
	Line          string       `json:"line"`
	Prefix        netip.Prefix `json:"prefix"`
	CoveredBy     netip.Prefix `json:"covered_by"`
	CoveredByLine string       `json:"covered_by_line"`
}

// CoverageReport is the prefix-aware view of a Report's unmatched lines.
type CoverageReport struct {
	// ExtraCovered are extra routes inside an expected prefix, usually
	// more-specifics of an expected announcement.
	ExtraCovered   []Covered `json:"extra_covered"`
	ExtraUncovered []string  `json:"extra_uncovered"`

	// NotLoadedCovered are missing routes for which the actual table holds
	// a covering prefix.
	NotLoadedCovered   []Covered `json:"not_loaded_covered"`
	NotLoadedUncovered []string  `json:"not_loaded_uncovered"`

	// Unparsed lists unmatched lines that carry no usable prefix.
	Unparsed []string `json:"unparsed"`

	// ExpectedAggregates is the expected address space merged into the
	// fewest prefixes.
	ExpectedAggregates []netip.Prefix `json:"expected_aggregates"`
}

// Coverage looks up every not-loaded and extra line of r by longest prefix
// match against the opposite side. It does not change r.
func Coverage(r *Report) (*CoverageReport, error) {
	expected, expectedSpace := prefixTable(r.Expected)
	actual, _ := prefixTable(r.Actual)

	cr := &CoverageReport{
		ExtraCovered:       []Covered{},
		ExtraUncovered:     []string{},
		NotLoadedCovered:   []Covered{},
		NotLoadedUncovered: []string{},
		Unparsed:           []string{},
	}

	for _, line := range r.Extra {
		c, ok, parsed := cover(line, expected)
		switch {
		case !parsed:
			cr.Unparsed = append(cr.Unparsed, line)
		case ok:
			cr.ExtraCovered = append(cr.ExtraCovered, c)
		default:
			cr.ExtraUncovered = append(cr.ExtraUncovered, line)
		}
	}
	for _, line := range r.NotLoaded {
		c, ok, parsed := cover(line, actual)
		switch {
		case !parsed:
			cr.Unparsed = append(cr.Unparsed, line)
		case ok:
			cr.NotLoadedCovered = append(cr.NotLoadedCovered, c)
		default:
			cr.NotLoadedUncovered = append(cr.NotLoadedUncovered, line)
		}
	}

	set, err := expectedSpace.IPSet()
	if err != nil {
		return nil, err
	}
	cr.ExpectedAggregates = set.Prefixes()
	return cr, nil
}

// prefixTable indexes the prefixed lines by prefix. When several lines share
// a prefix the first one wins.
func prefixTable(lines []string) (*bart.Table[string], *netipx.IPSetBuilder) {
	tbl := new(bart.Table[string])
	var space netipx.IPSetBuilder
	seen := make(map[netip.Prefix]bool)
	for _, line := range lines {
		p, _, ok := LinePrefix(line)
		if !ok || seen[p] {
			continue
		}
		seen[p] = true
		tbl.Insert(p, line)
		space.AddPrefix(p)
	}
	return tbl, &space
}

func cover(line string, tbl *bart.Table[string]) (c Covered, covered, parsed bool) {
	p, _, ok := LinePrefix(line)
	if !ok {
		return Covered{}, false, false
	}
	lpm, by, found := tbl.LookupPrefixLPM(p)
	if !found {
		return Covered{}, false, true
	}
	return Covered{Line: line, Prefix: p, CoveredBy: lpm, CoveredByLine: by}, true, true
}
