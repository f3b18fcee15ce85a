package rib

import (
	"reflect"
	"testing"
)

const bgpctlDump = `flags: * = Valid, > = Selected, I = via IBGP, A = Announced,
       S = Stale, E = Error
origin validation state: N = not-found, V = valid, ! = invalid
origin: i = IGP, e = EGP, ? = Incomplete

flags vs destination          gateway          lpref   med aspath origin
*> N 193.201.28.0/23      193.201.28.60      100     0 196959 i
*> N   10.0.0.0/24        193.201.28.61      100     0 65001 65002 i
   N 10.0.1.0/24          193.201.28.61      100     0 65001 i
`

func TestParseDump(t *testing.T) {
	got := ParseDump(bgpctlDump)
	want := []string{
		"N 193.201.28.0/23 193.201.28.60 100 0 196959 i",
		"N 10.0.0.0/24 193.201.28.61 100 0 65001 65002 i",
		"N 10.0.1.0/24 193.201.28.61 100 0 65001 i",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseDump() =\n%q\nwant\n%q", got, want)
	}
}

func TestParseDump_Flags(t *testing.T) {
	tests := []struct {
		name string
		line string
		want string
	}{
		{"best", "*> N 10.0.0.0/24 192.0.2.1 100 0 65001 i", "N 10.0.0.0/24 192.0.2.1 100 0 65001 i"},
		{"valid only", "* N 10.0.0.0/24 192.0.2.1 100 0 65001 i", "N 10.0.0.0/24 192.0.2.1 100 0 65001 i"},
		{"ibgp best", "I*> V 10.0.0.0/24 192.0.2.1 100 0 65001 i", "V 10.0.0.0/24 192.0.2.1 100 0 65001 i"},
		{"multipath", "*>m ! 10.0.0.0/24 192.0.2.1 100 0 65001 i", "! 10.0.0.0/24 192.0.2.1 100 0 65001 i"},
		{"stale", "*S N 10.0.0.0/24 192.0.2.1 100 0 65001 i", "N 10.0.0.0/24 192.0.2.1 100 0 65001 i"},
		{"no ovs column", "*> 10.0.0.0/24 192.0.2.1 100 0 65001 i", "10.0.0.0/24 192.0.2.1 100 0 65001 i"},
		{"no flags", "N 10.0.0.0/24 192.0.2.1 100 0 65001 i", "N 10.0.0.0/24 192.0.2.1 100 0 65001 i"},
		{"bare prefix", "10.0.0.0/24", "10.0.0.0/24"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseDump(tt.line)
			if len(got) != 1 || got[0] != tt.want {
				t.Errorf("ParseDump(%q) = %q, want %q", tt.line, got, tt.want)
			}
		})
	}
}

func TestDiffDumps_FlagsIgnored(t *testing.T) {
	expected := "*> N 10.0.0.0/24 192.0.2.1 100 0 65001 i\n"
	actual := "*  N 10.0.0.0/24 192.0.2.1 100 0 65001 i\n"

	r := DiffDumps(expected, actual)
	if !r.Identical() {
		t.Errorf("Summary() = %+v", r.Summary())
	}
}

func TestParseDump_Empty(t *testing.T) {
	if got := ParseDump(""); len(got) != 0 {
		t.Errorf("ParseDump(\"\") = %q", got)
	}
	if got := ParseDump("\n\n  \r\n"); len(got) != 0 {
		t.Errorf("ParseDump(blank) = %q", got)
	}
}

func TestDiffDumps(t *testing.T) {
	expected := "*> 10.0.0.0/24   192.0.2.1  100 0 65001 i\n*> 10.0.1.0/24 192.0.2.1 100 0 65001 i\n"
	actual := "flags destination gateway\n*>  10.0.0.0/24 192.0.2.1   100 0 65001 i\r\n"

	r := DiffDumps(expected, actual)
	if r.MatchingLen() != 1 || r.NotLoadedLen() != 1 || r.ExtraLen() != 0 {
		t.Errorf("Summary() = %+v", r.Summary())
	}
	if r.NotLoaded[0] != "10.0.1.0/24 192.0.2.1 100 0 65001 i" {
		t.Errorf("NotLoaded = %q", r.NotLoaded)
	}
}
