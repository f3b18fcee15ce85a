package addr

import (
	"net/netip"
	"strings"

	"go4.org/netipx"
)

// ValidateIPAddress validates a single host address with no prefix suffix.
//
// Input without a colon that has the dotted-quad shape is judged as IPv4 only:
// an octet above 255 yields an out-of-range result instead of falling
// through to IPv6. Anything containing a colon is parsed as IPv6, where the
// unspecified address "::" and an embedded dotted quad are accepted.
func ValidateIPAddress(input string) Result {
	if isBlank(input) {
		return invalid(KindEmpty, ReasonEmpty)
	}

	if strings.Contains(input, ":") {
		if _, ok := parseIPv6(input, true); ok {
			return Valid()
		}
		return invalid(KindUnrecognized, ReasonUnrecognized)
	}

	if strings.Count(input, ".") == 3 {
		octets, ok := splitDottedQuad(input)
		if !ok {
			return invalid(KindUnrecognized, ReasonUnrecognized)
		}
		if _, ok := ipv4Value(octets); !ok {
			return invalid(KindOutOfRange, ReasonOctetRange)
		}
		return Valid()
	}

	return invalid(KindUnrecognized, ReasonUnrecognized)
}

// ValidateCIDR dispatches to ValidateIPv6CIDR when input contains a colon
// and to ValidateIPv4CIDR otherwise.
func ValidateCIDR(input string, opts ...Option) Result {
	if strings.Contains(input, ":") {
		return ValidateIPv6CIDR(input, opts...)
	}
	return ValidateIPv4CIDR(input)
}

// ParsePrefix validates input with ValidateCIDR and, when valid, returns the
// typed prefix.
func ParsePrefix(input string) (netip.Prefix, Result) {
	res := ValidateCIDR(input)
	if !res.IsValid() {
		return netip.Prefix{}, res
	}
	addrPart, _, _ := strings.Cut(input, "/")
	bits, _ := decimal(input[len(addrPart)+1:])

	var ip netip.Addr
	if strings.Contains(addrPart, ":") {
		raw, _ := parseIPv6(addrPart, false)
		ip = netip.AddrFrom16(raw)
	} else {
		octets, _ := splitDottedQuad(addrPart)
		v, _ := ipv4Value(octets)
		ip = netip.AddrFrom4([4]byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)})
	}
	return netip.PrefixFrom(ip, int(bits)), res
}

// ParseAddr validates input with ValidateIPAddress and, when valid, returns
// the typed address.
func ParseAddr(input string) (netip.Addr, Result) {
	res := ValidateIPAddress(input)
	if !res.IsValid() {
		return netip.Addr{}, res
	}
	if strings.Contains(input, ":") {
		raw, _ := parseIPv6(input, true)
		return netip.AddrFrom16(raw), res
	}
	octets, _ := splitDottedQuad(input)
	v, _ := ipv4Value(octets)
	return netip.AddrFrom4([4]byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)}), res
}

// Canonicalize returns the network form of a CIDR string. Valid input is
// returned unchanged; input with host bits set yields the suggestion; any
// other failure returns "" with the failing result.
func Canonicalize(input string) (string, Result) {
	res := ValidateCIDR(input)
	switch {
	case res.IsValid():
		return input, res
	case res.Kind == KindHostBitsSet:
		return res.Suggestion, res
	}
	return "", res
}

// Range describes the address span of a network prefix.
type Range struct {
	Prefix netip.Prefix `json:"prefix"`
	First  netip.Addr   `json:"first"`
	Last   netip.Addr   `json:"last"`
	Family int          `json:"family"`
}

// Describe returns the first and last address covered by p.
func Describe(p netip.Prefix) Range {
	p = p.Masked()
	family := 4
	if p.Addr().Is6() {
		family = 6
	}
	return Range{
		Prefix: p,
		First:  p.Addr(),
		Last:   netipx.PrefixLastIP(p),
		Family: family,
	}
}
