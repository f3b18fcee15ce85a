package addr

import (
	"strconv"
	"strings"
)

// ValidateIPv4CIDR validates a dotted-quad prefix of the form a.b.c.d/len.
//
// Lexical shape is checked before numeric ranges, so "a.b.c.d/24" is
// malformed while "256.1.1.0/24" is out of range. A prefix with host bits
// set is rejected with the canonical network form as suggestion.
func ValidateIPv4CIDR(input string) Result {
	if isBlank(input) {
		return invalid(KindEmpty, ReasonEmpty)
	}

	addrPart, lenPart, ok := strings.Cut(input, "/")
	if !ok || strings.Contains(lenPart, "/") {
		return invalid(KindMalformed, ReasonMalformedCIDR)
	}
	octets, ok := splitDottedQuad(addrPart)
	if !ok {
		return invalid(KindMalformed, ReasonMalformedCIDR)
	}
	bits, ok := decimal(lenPart)
	if !ok {
		return invalid(KindMalformed, ReasonMalformedCIDR)
	}

	value, ok := ipv4Value(octets)
	if !ok {
		return invalid(KindOutOfRange, ReasonOctetRange)
	}
	if bits > 32 {
		return invalid(KindOutOfRange, ReasonPrefixRange)
	}

	mask := ipv4Mask(int(bits))
	if value&mask != value {
		return hostBitsSet(formatIPv4(value&mask) + "/" + strconv.Itoa(int(bits)))
	}
	return Valid()
}

// ipv4Mask returns the network mask for a prefix length in [0,32].
func ipv4Mask(bits int) uint32 {
	if bits == 0 {
		return 0
	}
	return ^uint32(0) << (32 - bits)
}

// splitDottedQuad splits s into exactly four decimal tokens. Range is not
// checked here.
func splitDottedQuad(s string) ([4]uint64, bool) {
	var octets [4]uint64
	parts := strings.Split(s, ".")
	if len(parts) != 4 {
		return octets, false
	}
	for i, p := range parts {
		n, ok := decimal(p)
		if !ok {
			return octets, false
		}
		octets[i] = n
	}
	return octets, true
}

// ipv4Value packs four octets big-endian. ok is false if any octet exceeds 255.
func ipv4Value(octets [4]uint64) (uint32, bool) {
	var v uint32
	for _, o := range octets {
		if o > 255 {
			return 0, false
		}
		v = v<<8 | uint32(o)
	}
	return v, true
}

func formatIPv4(v uint32) string {
	var b strings.Builder
	for i := 3; i >= 0; i-- {
		b.WriteString(strconv.Itoa(int(v >> (8 * i) & 0xff)))
		if i > 0 {
			b.WriteByte('.')
		}
	}
	return b.String()
}

// decimal parses an unsigned base-10 token. ok is false for an empty token
// or any non-digit (signs included). Values stop growing once they pass
// 2^32, so an overlong token still reads as out of range.
func decimal(tok string) (uint64, bool) {
	if tok == "" {
		return 0, false
	}
	var n uint64
	for i := 0; i < len(tok); i++ {
		c := tok[i]
		if c < '0' || c > '9' {
			return 0, false
		}
		if n < 1<<32 {
			n = n*10 + uint64(c-'0')
		}
	}
	return n, true
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
