package rib

import (
	"fmt"
	"net/netip"
	"strconv"
	"strings"

	"go4.org/netipx"

	"github.com/ixp-twin/twinctl/pkg/addr"
)

// Severity indicates the importance of a check finding
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Finding is one observation made by Check.
type Finding struct {
	Severity Severity `json:"severity"`
	Check    string   `json:"check"`
	Line     string   `json:"line,omitempty"`
	Message  string   `json:"message"`
}

// CheckConfig bounds the per-family number of announced prefixes.
// Zero disables the bound for that family.
type CheckConfig struct {
	MaxPrefixes4 int `json:"max_prefixes_4" yaml:"max_prefixes_4"`
	MaxPrefixes6 int `json:"max_prefixes_6" yaml:"max_prefixes_6"`

	// PeerIPs are the participant's peering addresses, at most one per
	// family. A route whose gateway is of a listed family must use it.
	PeerIPs []netip.Addr `json:"peer_ips,omitempty" yaml:"peer_ips,omitempty"`

	// PeerASN, when set, must be the first AS of any path it appears in.
	PeerASN uint32 `json:"peer_asn,omitempty" yaml:"peer_asn,omitempty"`
}

// specialPurpose holds the non-global ranges a participant must not
// announce: RFC 1918 and ULA space, loopback, link-local, documentation,
// benchmarking and reserved blocks.
var specialPurpose = mustIPSet(
	"0.0.0.0/8",
	"10.0.0.0/8",
	"127.0.0.0/8",
	"169.254.0.0/16",
	"172.16.0.0/12",
	"192.0.0.0/24",
	"192.0.2.0/24",
	"192.168.0.0/16",
	"198.18.0.0/15",
	"198.51.100.0/24",
	"203.0.113.0/24",
	"240.0.0.0/4",
	"::/128",
	"::1/128",
	"::ffff:0:0/96",
	"64:ff9b:1::/48",
	"100::/64",
	"2001::/23",
	"2001:db8::/32",
	"fc00::/7",
	"fe80::/10",
)

func mustIPSet(prefixes ...string) *netipx.IPSet {
	var b netipx.IPSetBuilder
	for _, p := range prefixes {
		b.AddPrefix(netip.MustParsePrefix(p))
	}
	set, err := b.IPSet()
	if err != nil {
		panic(err)
	}
	return set
}

// IsSpecialPurpose reports whether p lies entirely inside a non-global range.
func IsSpecialPurpose(p netip.Prefix) bool {
	return specialPurpose.ContainsPrefix(p)
}

// DefaultCheckConfig returns conservative per-family prefix limits.
func DefaultCheckConfig() CheckConfig {
	return CheckConfig{MaxPrefixes4: 1000, MaxPrefixes6: 1000}
}

// LinePrefix returns the prefix in the first field of a route line that
// carries a length, so leading status columns such as the origin
// validation flag of bgpctl are skipped. ok is false when that field is not
// a prefix in network form or the line has none.
func LinePrefix(line string) (netip.Prefix, addr.Result, bool) {
	for _, field := range strings.Fields(line) {
		if !strings.Contains(field, "/") {
			continue
		}
		p, res := addr.ParsePrefix(field)
		return p, res, res.IsValid()
	}
	return netip.Prefix{}, addr.Result{Kind: addr.KindEmpty, Reason: addr.ReasonEmpty}, false
}

// routeAttrs splits a bgpctl-style route line into the gateway after the
// prefix and the AS path between the med column and the origin code.
func routeAttrs(line string) (gateway netip.Addr, path []string, ok bool) {
	fields := strings.Fields(line)
	for i, f := range fields {
		if !strings.Contains(f, "/") {
			continue
		}
		rest := fields[i+1:]
		if len(rest) < 3 {
			return netip.Addr{}, nil, false
		}
		gw, err := netip.ParseAddr(rest[0])
		if err != nil {
			return netip.Addr{}, nil, false
		}
		path = rest[3:]
		if n := len(path); n > 0 && isOrigin(path[n-1]) {
			path = path[:n-1]
		}
		return gw.Unmap(), path, true
	}
	return netip.Addr{}, nil, false
}

func isOrigin(s string) bool {
	return s == "i" || s == "e" || s == "?"
}

// peerFor returns the configured peer address of gw's family.
func (c CheckConfig) peerFor(gw netip.Addr) (netip.Addr, bool) {
	for _, ip := range c.PeerIPs {
		if ip = ip.Unmap(); ip.Is4() == gw.Is4() {
			return ip, true
		}
	}
	return netip.Addr{}, false
}

// Check inspects announced route lines for an empty RIB, a default route,
// prefixes in special-purpose ranges, prefixes with host bits set and
// per-family counts above cfg. With cfg.PeerIPs or cfg.PeerASN set, the
// gateway and AS path columns are checked too. Lines without a prefix
// field are ignored. Findings come back in line order followed by the
// count checks.
func Check(lines []string, cfg CheckConfig) []Finding {
	var findings []Finding
	count := map[int]int{4: 0, 6: 0}
	seen := make(map[netip.Prefix]bool)

	for _, raw := range lines {
		line := Normalize(raw)
		p, res, ok := LinePrefix(line)
		if !ok {
			if res.Kind == addr.KindHostBitsSet {
				findings = append(findings, Finding{
					Severity: SeverityWarning,
					Check:    "network_form",
					Line:     line,
					Message:  fmt.Sprintf("prefix is not in network form, expected %s", res.Suggestion),
				})
			}
			continue
		}

		if !seen[p] {
			seen[p] = true
			if p.Addr().Is4() {
				count[4]++
			} else {
				count[6]++
			}
		}

		switch {
		case p.Bits() == 0:
			findings = append(findings, Finding{
				Severity: SeverityError,
				Check:    "default_route",
				Line:     line,
				Message:  fmt.Sprintf("default route %s announced", p),
			})
		case IsSpecialPurpose(p):
			findings = append(findings, Finding{
				Severity: SeverityError,
				Check:    "private_prefix",
				Line:     line,
				Message:  fmt.Sprintf("prefix %s is in a private range", p),
			})
		default:
			findings = append(findings, checkPeer(line, p, cfg)...)
		}
	}

	if count[4]+count[6] == 0 {
		return append(findings, Finding{
			Severity: SeverityError,
			Check:    "empty_rib",
			Message:  "RIB is empty",
		})
	}

	for _, fam := range []struct {
		version int
		max     int
	}{{4, cfg.MaxPrefixes4}, {6, cfg.MaxPrefixes6}} {
		if fam.max <= 0 || count[fam.version] == 0 {
			continue
		}
		if count[fam.version] > fam.max {
			findings = append(findings, Finding{
				Severity: SeverityError,
				Check:    "max_prefixes",
				Message:  fmt.Sprintf("%d IPv%d prefixes announced, more than the maximum of %d", count[fam.version], fam.version, fam.max),
			})
		} else {
			findings = append(findings, Finding{
				Severity: SeverityInfo,
				Check:    "max_prefixes",
				Message:  fmt.Sprintf("%d/%d IPv%d prefixes announced", count[fam.version], fam.max, fam.version),
			})
		}
	}
	return findings
}

// checkPeer verifies the gateway and AS path of a route against the
// participant. The AS path is only checked once the gateway is correct.
func checkPeer(line string, p netip.Prefix, cfg CheckConfig) []Finding {
	if len(cfg.PeerIPs) == 0 && cfg.PeerASN == 0 {
		return nil
	}
	gw, path, ok := routeAttrs(line)
	if !ok {
		return nil
	}
	if peer, ok := cfg.peerFor(gw); ok && gw != peer {
		return []Finding{{
			Severity: SeverityError,
			Check:    "next_hop",
			Line:     line,
			Message:  fmt.Sprintf("prefix %s has %s as next hop, expected %s", p, gw, peer),
		}}
	}
	if cfg.PeerASN == 0 || len(path) == 0 {
		return nil
	}
	asn := strconv.FormatUint(uint64(cfg.PeerASN), 10)
	for _, hop := range path {
		if hop == asn && path[0] != asn {
			return []Finding{{
				Severity: SeverityError,
				Check:    "as_path",
				Line:     line,
				Message:  fmt.Sprintf("prefix %s has AS path %s not starting with %s", p, strings.Join(path, " "), asn),
			}}
		}
	}
	return nil
}

// HasErrors reports whether any finding has error severity.
func HasErrors(findings []Finding) bool {
	for _, f := range findings {
		if f.Severity == SeverityError {
			return true
		}
	}
	return false
}
