// Package rib reconciles an expected route dump against an actual routing
// table.
//
// Diff is syntactic: two lines match only when they are byte-identical after
// trimming. No prefix canonicalization takes place, so "10.0.0.0/24" and
// "10.0.0.1/24" are different routes here. Coverage adds a prefix-aware view
// on top of a Report without changing its classes.
package rib

import (
	"math"
	"strings"

	"github.com/ixp-twin/twinctl/pkg/util"
)

// Report is the outcome of reconciling two route collections. Every list
// keeps first-seen order: Expected, Matching and NotLoaded follow the
// expected input, Actual and Extra follow the actual input.
type Report struct {
	Expected  []string `json:"expected"`
	Actual    []string `json:"actual"`
	Matching  []string `json:"matching"`
	NotLoaded []string `json:"not_loaded"`
	Extra     []string `json:"extra"`

	// MatchPercentage is len(Matching)/len(Expected)*100, unrounded.
	// It is 0 when Expected is empty.
	MatchPercentage float64 `json:"match_percentage"`
}

// Summary holds the counts of a Report. JSON names follow the route
// server diff API.
type Summary struct {
	ExpectedLen     int     `json:"expected_rib_len"`
	ActualLen       int     `json:"actual_rib_len"`
	MatchingLen     int     `json:"inters"`
	NotLoadedLen    int     `json:"notloaded"`
	ExtraLen        int     `json:"missing"`
	MatchPercentage float64 `json:"match_percentage"`
	Identical       bool    `json:"identical"`
}

// Normalize trims surrounding whitespace from a route line.
func Normalize(line string) string {
	return strings.TrimSpace(line)
}

// Diff classifies the lines of expected and actual into matching,
// not-loaded (expected only) and extra (actual only). Lines are trimmed,
// empty lines are dropped and duplicates collapse onto their first
// occurrence. Inputs are not modified.
func Diff(expected, actual []string) *Report {
	exp := normalizedSet(expected)
	act := normalizedSet(actual)

	matching := exp.Intersect(act)
	r := &Report{
		Expected:  exp.Lines(),
		Actual:    act.Lines(),
		Matching:  matching.Lines(),
		NotLoaded: exp.Difference(act).Lines(),
		Extra:     act.Difference(exp).Lines(),
	}
	if exp.Len() > 0 {
		r.MatchPercentage = float64(matching.Len()) / float64(exp.Len()) * 100
	}
	return r
}

// DiffDumps splits and normalizes two raw route-server dumps with ParseDump
// and reconciles them.
func DiffDumps(expectedText, actualText string) *Report {
	return Diff(ParseDump(expectedText), ParseDump(actualText))
}

func normalizedSet(lines []string) *LineSet {
	s := NewLineSet()
	for _, l := range lines {
		if l = Normalize(l); l != "" {
			s.Add(l)
		}
	}
	return s
}

// ExpectedLen returns the number of unique expected lines.
func (r *Report) ExpectedLen() int { return len(r.Expected) }

// ActualLen returns the number of unique actual lines.
func (r *Report) ActualLen() int { return len(r.Actual) }

// MatchingLen returns the number of lines present on both sides.
func (r *Report) MatchingLen() int { return len(r.Matching) }

// NotLoadedLen returns the number of expected lines missing from actual.
func (r *Report) NotLoadedLen() int { return len(r.NotLoaded) }

// ExtraLen returns the number of actual lines not expected.
func (r *Report) ExtraLen() int { return len(r.Extra) }

// Identical reports whether both sides hold the same set of lines.
func (r *Report) Identical() bool {
	return len(r.NotLoaded) == 0 && len(r.Extra) == 0
}

// MatchPercentageRounded returns MatchPercentage rounded to two decimals
// for display.
func (r *Report) MatchPercentageRounded() float64 {
	return math.Round(r.MatchPercentage*100) / 100
}

// Summary returns the report counts.
func (r *Report) Summary() Summary {
	return Summary{
		ExpectedLen:     r.ExpectedLen(),
		ActualLen:       r.ActualLen(),
		MatchingLen:     r.MatchingLen(),
		NotLoadedLen:    r.NotLoadedLen(),
		ExtraLen:        r.ExtraLen(),
		MatchPercentage: r.MatchPercentageRounded(),
		Identical:       r.Identical(),
	}
}

// NotLoadedText returns the not-loaded lines as newline-joined text.
func (r *Report) NotLoadedText() string {
	return util.JoinLines(r.NotLoaded)
}

// ExtraText returns the extra lines as newline-joined text.
func (r *Report) ExtraText() string {
	return util.JoinLines(r.Extra)
}
