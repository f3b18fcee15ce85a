package rib

import (
	"net/netip"
	"reflect"
	"testing"
)

func TestLinePrefix(t *testing.T) {
	tests := []struct {
		line   string
		want   string
		wantOK bool
	}{
		{"193.201.28.0/23 193.201.28.60 100 0 196959 i", "193.201.28.0/23", true},
		{"2001:7f8:10::/48", "2001:7f8:10::/48", true},
		{"N 10.0.0.0/24 192.0.2.1", "10.0.0.0/24", true},
		{"no route here", "", false},
		{"10.0.0.1/24", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		p, _, ok := LinePrefix(tt.line)
		if ok != tt.wantOK {
			t.Errorf("LinePrefix(%q) ok = %v, want %v", tt.line, ok, tt.wantOK)
			continue
		}
		if ok && p.String() != tt.want {
			t.Errorf("LinePrefix(%q) = %s, want %s", tt.line, p, tt.want)
		}
	}
}

func TestCheck(t *testing.T) {
	lines := []string{
		"0.0.0.0/0 193.201.28.60",
		"10.0.0.0/8 193.201.28.60",
		"193.201.28.0/23 193.201.28.60",
		"193.201.28.5/24 193.201.28.60",
		"fd00::/8 2001:7f8:10::1",
		"2001:7f8:10::/48 2001:7f8:10::1",
		"not a route",
	}

	findings := Check(lines, CheckConfig{MaxPrefixes4: 2, MaxPrefixes6: 5})

	var checks []string
	for _, f := range findings {
		checks = append(checks, f.Check+":"+string(f.Severity))
	}
	want := []string{
		"default_route:error",
		"private_prefix:error",
		"network_form:warning",
		"private_prefix:error",
		"max_prefixes:error",
		"max_prefixes:info",
	}
	if !reflect.DeepEqual(checks, want) {
		t.Errorf("Check() = %v, want %v", checks, want)
	}
	if findings[2].Message != "prefix is not in network form, expected 193.201.28.0/24" {
		t.Errorf("network_form message = %q", findings[2].Message)
	}
	if !HasErrors(findings) {
		t.Error("HasErrors() = false")
	}
}

func TestCheck_Clean(t *testing.T) {
	findings := Check([]string{"193.201.28.0/23", "193.201.28.0/23"}, DefaultCheckConfig())
	if HasErrors(findings) {
		t.Errorf("unexpected errors: %+v", findings)
	}
	if len(findings) != 1 || findings[0].Message != "1/1000 IPv4 prefixes announced" {
		t.Errorf("Check() = %+v", findings)
	}
}

func TestCheck_EmptyRIB(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
	}{
		{"nil", nil},
		{"headers only", []string{"flags vs destination gateway", ""}},
		{"host bits only", []string{"10.0.0.1/24 192.0.2.1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			findings := Check(tt.lines, DefaultCheckConfig())
			last := findings[len(findings)-1]
			if last.Check != "empty_rib" || last.Severity != SeverityError || last.Message != "RIB is empty" {
				t.Errorf("Check() = %+v", findings)
			}
			if !HasErrors(findings) {
				t.Error("HasErrors() = false")
			}
		})
	}
}

func TestCheck_SpecialPurpose(t *testing.T) {
	tests := []struct {
		prefix string
		want   bool
	}{
		{"10.0.0.0/8", true},
		{"127.0.0.0/8", true},
		{"169.254.0.0/16", true},
		{"172.16.0.0/12", true},
		{"192.0.2.0/24", true},
		{"192.168.1.0/24", true},
		{"198.18.0.0/15", true},
		{"198.51.100.0/24", true},
		{"203.0.113.0/24", true},
		{"240.0.0.0/4", true},
		{"fd00::/8", true},
		{"fe80::/64", true},
		{"2001:db8::/32", true},
		{"::1/128", true},
		{"193.201.28.0/23", false},
		{"8.0.0.0/7", false},
		{"100.64.0.0/10", false},
		{"2001:7f8:10::/48", false},
		{"2a00::/12", false},
	}

	for _, tt := range tests {
		t.Run(tt.prefix, func(t *testing.T) {
			findings := Check([]string{tt.prefix}, CheckConfig{})
			got := len(findings) == 1 && findings[0].Check == "private_prefix"
			if got != tt.want {
				t.Errorf("Check(%s) = %+v, want private_prefix %v", tt.prefix, findings, tt.want)
			}
		})
	}
}

func TestCheck_Peer(t *testing.T) {
	cfg := CheckConfig{
		PeerIPs: []netip.Addr{netip.MustParseAddr("193.201.28.60"), netip.MustParseAddr("2001:7f8:10::60")},
		PeerASN: 196959,
	}

	tests := []struct {
		name string
		line string
		want string
	}{
		{"clean", "N 193.201.28.0/23 193.201.28.60 100 0 196959 i", ""},
		{"clean v6", "N 2a0d:1a40::/32 2001:7f8:10::60 100 0 196959 64512 i", ""},
		{"no ovs column", "193.201.28.0/23 193.201.28.60 100 0 196959 i", ""},
		{"foreign next hop", "N 193.201.28.0/23 193.201.28.61 100 0 196959 i", "next_hop"},
		{"foreign next hop v6", "N 2a0d:1a40::/32 2001:7f8:10::61 100 0 196959 i", "next_hop"},
		{"asn not first", "N 193.201.28.0/23 193.201.28.60 100 0 3356 196959 i", "as_path"},
		{"asn absent", "N 193.201.28.0/23 193.201.28.60 100 0 3356 i", ""},
		{"next hop wins over path", "N 193.201.28.0/23 193.201.28.61 100 0 3356 196959 i", "next_hop"},
		{"prefix only", "193.201.28.0/23", ""},
		{"private skips peer", "N 10.0.0.0/8 193.201.28.61 100 0 3356 196959 i", "private_prefix"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			for _, f := range Check([]string{tt.line}, cfg) {
				if f.Severity == SeverityError {
					got = f.Check
				}
			}
			if got != tt.want {
				t.Errorf("Check(%q) error check = %q, want %q", tt.line, got, tt.want)
			}
		})
	}
}

func TestCheck_PeerMessages(t *testing.T) {
	cfg := CheckConfig{PeerIPs: []netip.Addr{netip.MustParseAddr("193.201.28.60")}, PeerASN: 196959}
	findings := Check([]string{
		"N 193.201.28.0/23 193.201.28.61 100 0 196959 i",
		"N 193.201.30.0/24 193.201.28.60 100 0 3356 196959 i",
	}, cfg)

	want := []string{
		"prefix 193.201.28.0/23 has 193.201.28.61 as next hop, expected 193.201.28.60",
		"prefix 193.201.30.0/24 has AS path 3356 196959 not starting with 196959",
	}
	if len(findings) < 2 {
		t.Fatalf("Check() = %+v", findings)
	}
	for i, w := range want {
		if findings[i].Message != w {
			t.Errorf("findings[%d].Message = %q, want %q", i, findings[i].Message, w)
		}
	}
}

func TestCoverage(t *testing.T) {
	expected := []string{
		"193.201.28.0/23 via rs1",
		"2001:7f8:10::/48 via rs1",
		"10.10.0.0/16 via rs1",
		"garbage line",
	}
	actual := []string{
		"193.201.28.0/23 via rs1",
		"193.201.28.0/24 via rs1",
		"8.8.8.0/24 via rs1",
		"10.0.0.0/8 via rs2",
		"2001:7f8:10::/48 via rs1",
	}

	r := Diff(expected, actual)
	cr, err := Coverage(r)
	if err != nil {
		t.Fatalf("Coverage() error = %v", err)
	}

	if len(cr.ExtraCovered) != 1 {
		t.Fatalf("ExtraCovered = %+v", cr.ExtraCovered)
	}
	c := cr.ExtraCovered[0]
	if c.Line != "193.201.28.0/24 via rs1" || c.CoveredBy != netip.MustParsePrefix("193.201.28.0/23") || c.CoveredByLine != "193.201.28.0/23 via rs1" {
		t.Errorf("ExtraCovered[0] = %+v", c)
	}
	if !reflect.DeepEqual(cr.ExtraUncovered, []string{"8.8.8.0/24 via rs1", "10.0.0.0/8 via rs2"}) {
		t.Errorf("ExtraUncovered = %v", cr.ExtraUncovered)
	}

	if len(cr.NotLoadedCovered) != 1 || cr.NotLoadedCovered[0].CoveredBy != netip.MustParsePrefix("10.0.0.0/8") {
		t.Errorf("NotLoadedCovered = %+v", cr.NotLoadedCovered)
	}
	if len(cr.NotLoadedUncovered) != 0 {
		t.Errorf("NotLoadedUncovered = %v", cr.NotLoadedUncovered)
	}
	if !reflect.DeepEqual(cr.Unparsed, []string{"garbage line"}) {
		t.Errorf("Unparsed = %v", cr.Unparsed)
	}

	wantAgg := []netip.Prefix{
		netip.MustParsePrefix("10.10.0.0/16"),
		netip.MustParsePrefix("193.201.28.0/23"),
		netip.MustParsePrefix("2001:7f8:10::/48"),
	}
	if !reflect.DeepEqual(cr.ExpectedAggregates, wantAgg) {
		t.Errorf("ExpectedAggregates = %v, want %v", cr.ExpectedAggregates, wantAgg)
	}
}

func TestCoverage_DoesNotChangeReport(t *testing.T) {
	r := Diff([]string{"10.0.0.0/8"}, []string{"10.1.0.0/16"})
	before := r.Summary()
	if _, err := Coverage(r); err != nil {
		t.Fatal(err)
	}
	if r.Summary() != before {
		t.Errorf("report changed: %+v -> %+v", before, r.Summary())
	}
}
