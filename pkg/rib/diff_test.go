package rib

import (
	"reflect"
	"testing"
)

func TestDiff_Scenario(t *testing.T) {
	expected := []string{"10.0.0.0/24", "10.0.1.0/24"}
	actual := []string{"10.0.0.0/24", "10.0.2.0/24"}

	r := Diff(expected, actual)

	if !reflect.DeepEqual(r.Matching, []string{"10.0.0.0/24"}) {
		t.Errorf("Matching = %v", r.Matching)
	}
	if !reflect.DeepEqual(r.NotLoaded, []string{"10.0.1.0/24"}) {
		t.Errorf("NotLoaded = %v", r.NotLoaded)
	}
	if !reflect.DeepEqual(r.Extra, []string{"10.0.2.0/24"}) {
		t.Errorf("Extra = %v", r.Extra)
	}
	if r.MatchPercentage != 50.0 {
		t.Errorf("MatchPercentage = %v, want 50", r.MatchPercentage)
	}
	if r.Identical() {
		t.Error("Identical() = true for differing sets")
	}
}

func TestDiff_Identity(t *testing.T) {
	e := []string{"193.201.28.0/23", "2001:7f8:10::/48", "10.0.0.0/8"}
	r := Diff(e, e)

	if r.MatchingLen() != len(e) {
		t.Errorf("MatchingLen = %d, want %d", r.MatchingLen(), len(e))
	}
	if r.NotLoadedLen() != 0 || r.ExtraLen() != 0 {
		t.Errorf("NotLoadedLen = %d, ExtraLen = %d, want 0", r.NotLoadedLen(), r.ExtraLen())
	}
	if r.MatchPercentage != 100 {
		t.Errorf("MatchPercentage = %v, want 100", r.MatchPercentage)
	}
	if !r.Identical() {
		t.Error("Identical() = false")
	}
}

func TestDiff_Empty(t *testing.T) {
	tests := []struct {
		name     string
		expected []string
		actual   []string
	}{
		{"both nil", nil, nil},
		{"blank lines only", []string{"", "  ", "\t"}, []string{"\n"}},
		{"expected empty", nil, []string{"10.0.0.0/24"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Diff(tt.expected, tt.actual)
			if r.MatchPercentage != 0 {
				t.Errorf("MatchPercentage = %v, want 0", r.MatchPercentage)
			}
			if r.ExpectedLen() != 0 {
				t.Errorf("ExpectedLen = %d, want 0", r.ExpectedLen())
			}
		})
	}
}

func TestDiff_EqualSizeDifferentContent(t *testing.T) {
	r := Diff([]string{"a", "b"}, []string{"c", "d"})
	if r.ExpectedLen() != r.ActualLen() {
		t.Fatalf("sizes differ: %d vs %d", r.ExpectedLen(), r.ActualLen())
	}
	if r.Identical() {
		t.Error("Identical() = true for equal-size disjoint sets")
	}
	if r.NotLoadedLen() != 2 || r.ExtraLen() != 2 {
		t.Errorf("NotLoadedLen = %d, ExtraLen = %d, want 2 and 2", r.NotLoadedLen(), r.ExtraLen())
	}
}

func TestDiff_NormalizationAndDuplicates(t *testing.T) {
	expected := []string{"  10.0.1.0/24", "10.0.0.0/24  ", "10.0.1.0/24", "", "10.0.0.0/24"}
	actual := []string{"\t10.0.0.0/24\r", "10.0.0.0/24"}

	r := Diff(expected, actual)

	if !reflect.DeepEqual(r.Expected, []string{"10.0.1.0/24", "10.0.0.0/24"}) {
		t.Errorf("Expected = %v", r.Expected)
	}
	if !reflect.DeepEqual(r.Actual, []string{"10.0.0.0/24"}) {
		t.Errorf("Actual = %v", r.Actual)
	}
	if !reflect.DeepEqual(r.NotLoaded, []string{"10.0.1.0/24"}) {
		t.Errorf("NotLoaded = %v", r.NotLoaded)
	}
}

func TestDiff_IsSyntactic(t *testing.T) {
	r := Diff([]string{"2001:DB8::/32", "10.0.0.0/24"}, []string{"2001:db8::/32", "10.0.0.0/24 "})
	if r.MatchingLen() != 1 {
		t.Errorf("MatchingLen = %d, want 1 (case differs)", r.MatchingLen())
	}
	if !reflect.DeepEqual(r.Extra, []string{"2001:db8::/32"}) {
		t.Errorf("Extra = %v", r.Extra)
	}
}

func TestDiff_FirstSeenOrder(t *testing.T) {
	expected := []string{"c", "a", "b", "x"}
	actual := []string{"z", "b", "y", "a"}

	r := Diff(expected, actual)

	if !reflect.DeepEqual(r.Matching, []string{"a", "b"}) {
		t.Errorf("Matching = %v, want expected order", r.Matching)
	}
	if !reflect.DeepEqual(r.NotLoaded, []string{"c", "x"}) {
		t.Errorf("NotLoaded = %v", r.NotLoaded)
	}
	if !reflect.DeepEqual(r.Extra, []string{"z", "y"}) {
		t.Errorf("Extra = %v, want actual order", r.Extra)
	}
}

func TestDiff_Deterministic(t *testing.T) {
	expected := []string{"10.0.0.0/24", "10.0.1.0/24", "10.0.3.0/24", "10.0.4.0/24", "10.0.5.0/24"}
	actual := []string{"10.0.5.0/24", "10.0.2.0/24", "10.0.0.0/24", "10.0.9.0/24"}

	first := Diff(expected, actual)
	for i := 0; i < 20; i++ {
		if again := Diff(expected, actual); !reflect.DeepEqual(first, again) {
			t.Fatalf("Diff output changed between calls:\n%+v\n%+v", first, again)
		}
	}
}

func TestDiff_Disjointness(t *testing.T) {
	cases := [][2][]string{
		{{"a", "b", "c"}, {"b", "c", "d"}},
		{{"a"}, {}},
		{{}, {"a"}},
		{{"a", "a", "b"}, {"b", "b"}},
	}

	for _, c := range cases {
		r := Diff(c[0], c[1])
		matching := NewLineSet(r.Matching...)
		for _, l := range r.NotLoaded {
			if matching.Contains(l) {
				t.Errorf("%q in both matching and not_loaded", l)
			}
		}
		for _, l := range r.Extra {
			if matching.Contains(l) {
				t.Errorf("%q in both matching and extra", l)
			}
		}
		if r.ExpectedLen() != r.MatchingLen()+r.NotLoadedLen() {
			t.Errorf("|E| = %d, matching + not_loaded = %d", r.ExpectedLen(), r.MatchingLen()+r.NotLoadedLen())
		}
		if r.ActualLen() != r.MatchingLen()+r.ExtraLen() {
			t.Errorf("|A| = %d, matching + extra = %d", r.ActualLen(), r.MatchingLen()+r.ExtraLen())
		}
	}
}

func TestDiff_DoesNotModifyInput(t *testing.T) {
	expected := []string{" a ", "b"}
	Diff(expected, []string{"a"})
	if expected[0] != " a " {
		t.Errorf("input modified: %q", expected[0])
	}
}

func TestReport_MatchPercentage(t *testing.T) {
	r := Diff([]string{"a", "b", "c"}, []string{"a"})

	if r.MatchPercentage <= 33.33 || r.MatchPercentage >= 33.34 {
		t.Errorf("MatchPercentage = %v, want unrounded 33.33...", r.MatchPercentage)
	}
	if r.MatchPercentage == 33.33 {
		t.Error("MatchPercentage should not be rounded")
	}
	if got := r.MatchPercentageRounded(); got != 33.33 {
		t.Errorf("MatchPercentageRounded() = %v, want 33.33", got)
	}

	r = Diff([]string{"a", "b", "c"}, []string{"a", "b"})
	if got := r.MatchPercentageRounded(); got != 66.67 {
		t.Errorf("MatchPercentageRounded() = %v, want 66.67", got)
	}
}

func TestReport_Summary(t *testing.T) {
	r := Diff([]string{"a", "b", "c", "d"}, []string{"a", "b", "e"})
	s := r.Summary()

	want := Summary{
		ExpectedLen:     4,
		ActualLen:       3,
		MatchingLen:     2,
		NotLoadedLen:    2,
		ExtraLen:        1,
		MatchPercentage: 50,
		Identical:       false,
	}
	if s != want {
		t.Errorf("Summary() = %+v, want %+v", s, want)
	}
}

func TestReport_Text(t *testing.T) {
	r := Diff([]string{"a", "b", "c"}, []string{"a", "x", "y"})
	if got := r.NotLoadedText(); got != "b\nc\n" {
		t.Errorf("NotLoadedText() = %q", got)
	}
	if got := r.ExtraText(); got != "x\ny\n" {
		t.Errorf("ExtraText() = %q", got)
	}

	r = Diff([]string{"a"}, []string{"a"})
	if r.NotLoadedText() != "" || r.ExtraText() != "" {
		t.Error("identical report should have empty download lists")
	}
}

func TestLineSet(t *testing.T) {
	s := NewLineSet("b", "a", "b")
	if s.Len() != 2 {
		t.Errorf("Len() = %d, want 2", s.Len())
	}
	if s.Add("a") {
		t.Error("Add(existing) = true")
	}
	if !s.Add("c") {
		t.Error("Add(new) = false")
	}
	if !reflect.DeepEqual(s.Lines(), []string{"b", "a", "c"}) {
		t.Errorf("Lines() = %v", s.Lines())
	}

	lines := s.Lines()
	lines[0] = "mutated"
	if s.Lines()[0] != "b" {
		t.Error("Lines() should return a copy")
	}

	var nilSet *LineSet
	if nilSet.Contains("a") || nilSet.Len() != 0 {
		t.Error("nil set should be empty")
	}

	var zero LineSet
	zero.Add("x")
	if !zero.Contains("x") {
		t.Error("zero-value set should accept Add")
	}
}
