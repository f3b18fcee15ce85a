package addr

import (
	"net/netip"
	"strings"
)

// Option tunes validator behavior.
type Option func(*options)

type options struct {
	legacyIPv6NetworkCheck bool
}

// WithLegacyIPv6NetworkCheck replaces the bit-level host-bit test for IPv6
// prefixes with the older textual rule: a prefix shorter than /128 is
// accepted when its address contains "::" or ends in ":0". The rule misses
// host bits in addresses like 2001:db8::1/32 and exists only for
// compatibility with documents accepted under it.
func WithLegacyIPv6NetworkCheck() Option {
	return func(o *options) {
		o.legacyIPv6NetworkCheck = true
	}
}

// ValidateIPv6CIDR validates an RFC 4291 prefix of the form address/len.
//
// The address may use the full eight-group form or a single "::" run and must
// contain only hex digits and colons. Host bits are tested on the expanded
// 128-bit value, the same way ValidateIPv4CIDR does for IPv4.
func ValidateIPv6CIDR(input string, opts ...Option) Result {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	if isBlank(input) {
		return invalid(KindEmpty, ReasonEmpty)
	}

	addrPart, lenPart, ok := strings.Cut(input, "/")
	if !ok || strings.Contains(lenPart, "/") || !hexAndColons(addrPart) {
		return invalid(KindMalformed, ReasonMalformedCIDR)
	}
	raw, ok := parseIPv6(addrPart, false)
	if !ok {
		return invalid(KindMalformed, ReasonMalformedCIDR)
	}
	bits, ok := decimal(lenPart)
	if !ok {
		return invalid(KindMalformed, ReasonMalformedCIDR)
	}
	if bits > 128 {
		return invalid(KindOutOfRange, ReasonPrefixRange)
	}

	ip := netip.AddrFrom16(raw)
	network := netip.PrefixFrom(ip, int(bits)).Masked()

	if o.legacyIPv6NetworkCheck {
		if bits < 128 && !strings.Contains(addrPart, "::") && !strings.HasSuffix(addrPart, ":0") {
			return hostBitsSet(network.String())
		}
		return Valid()
	}

	if network.Addr() != ip {
		return hostBitsSet(network.String())
	}
	return Valid()
}

// parseIPv6 expands the textual address s into its 16-byte value. When
// embedded4 is set the last 32 bits may be written as a dotted quad
// (::ffff:192.0.2.1).
func parseIPv6(s string, embedded4 bool) ([16]byte, bool) {
	var out [16]byte
	if s == "" || strings.Contains(s, ":::") || strings.Count(s, "::") > 1 {
		return out, false
	}

	var head, tail []string
	compressed := false
	if h, t, found := strings.Cut(s, "::"); found {
		compressed = true
		head = splitGroups(h)
		tail = splitGroups(t)
	} else {
		head = strings.Split(s, ":")
	}

	var v4 []uint16
	last := &head
	if compressed {
		last = &tail
	}
	if n := len(*last); embedded4 && n > 0 && strings.Contains((*last)[n-1], ".") {
		octets, ok := splitDottedQuad((*last)[n-1])
		if !ok {
			return out, false
		}
		value, ok := ipv4Value(octets)
		if !ok {
			return out, false
		}
		v4 = []uint16{uint16(value >> 16), uint16(value)}
		*last = (*last)[:n-1]
	}

	headVals, ok := hexGroups(head)
	if !ok {
		return out, false
	}
	tailVals, ok := hexGroups(tail)
	if !ok {
		return out, false
	}
	tailVals = append(tailVals, v4...)

	total := len(headVals) + len(tailVals)
	if compressed && total > 7 || !compressed && total != 8 {
		return out, false
	}

	groups := make([]uint16, 0, 8)
	groups = append(groups, headVals...)
	for len(groups)+len(tailVals) < 8 {
		groups = append(groups, 0)
	}
	groups = append(groups, tailVals...)

	for i, g := range groups {
		out[2*i] = byte(g >> 8)
		out[2*i+1] = byte(g)
	}
	return out, true
}

// splitGroups splits one side of a "::" run. An empty side has no groups.
func splitGroups(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ":")
}

// hexGroups parses 16-bit groups of one to four hex digits.
func hexGroups(groups []string) ([]uint16, bool) {
	vals := make([]uint16, 0, len(groups))
	for _, g := range groups {
		if len(g) == 0 || len(g) > 4 {
			return nil, false
		}
		var v uint16
		for i := 0; i < len(g); i++ {
			d, ok := hexDigit(g[i])
			if !ok {
				return nil, false
			}
			v = v<<4 | uint16(d)
		}
		vals = append(vals, v)
	}
	return vals, true
}

func hexDigit(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

func hexAndColons(s string) bool {
	for i := 0; i < len(s); i++ {
		if _, ok := hexDigit(s[i]); !ok && s[i] != ':' {
			return false
		}
	}
	return true
}
