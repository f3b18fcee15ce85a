package source

import (
	"context"
	"fmt"
	"net/netip"
	"sort"
	"strings"

	"github.com/go-redis/redis/v8"

	"github.com/ixp-twin/twinctl/pkg/util"
)

const routeTablePrefix = "ROUTE_TABLE:"

// AppDBSource reads installed routes from a SONiC APPL_DB (Redis DB 0).
// fpmsyncd writes one ROUTE_TABLE hash per prefix, so the RIB is the set of
// key names: ROUTE_TABLE:<prefix> for the default VRF and
// ROUTE_TABLE:<vrf>:<prefix> otherwise.
type AppDBSource struct {
	Addr   string
	VRF    string // empty or "default" for the default VRF
	Family int

	// Via, when set, reaches Addr through an SSH tunnel to this host.
	Via         string
	SSHUser     string
	SSHPassword string
}

// Fetch scans ROUTE_TABLE and returns the canonical prefixes of the VRF in
// sorted order.
func (s *AppDBSource) Fetch(ctx context.Context) ([]string, error) {
	addr := s.Addr
	if s.Via != "" {
		tunnel, err := DialTunnel(ctx, s.Via, s.SSHUser, s.SSHPassword)
		if err != nil {
			return nil, err
		}
		defer tunnel.Close()
		if addr, err = tunnel.Forward(s.Addr); err != nil {
			return nil, err
		}
	}

	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   0, // APPL_DB
	})
	defer client.Close()

	keys, err := scanKeys(ctx, client, routeTablePrefix+"*")
	if err != nil {
		return nil, fmt.Errorf("scanning APPL_DB at %s: %w", s.Addr, err)
	}

	var lines []string
	for _, key := range keys {
		p, ok := RouteKeyPrefix(key, s.VRF)
		if !ok || !familyMatches(p, s.Family) {
			continue
		}
		lines = append(lines, p.String())
	}
	sort.Strings(lines)
	util.WithSource(s).Debugf("Read %d routes from %d ROUTE_TABLE keys", len(lines), len(keys))
	return lines, nil
}

func (s *AppDBSource) String() string {
	if s.Via != "" {
		return "redis:" + s.Addr + " via " + s.Via
	}
	return "redis:" + s.Addr
}

// scanKeys collects all keys matching pattern with SCAN, never KEYS.
func scanKeys(ctx context.Context, client *redis.Client, pattern string) ([]string, error) {
	var keys []string
	var cursor uint64
	for {
		batch, next, err := client.Scan(ctx, cursor, pattern, 1000).Result()
		if err != nil {
			return nil, err
		}
		keys = append(keys, batch...)
		cursor = next
		if cursor == 0 {
			return keys, nil
		}
	}
}

// RouteKeyPrefix extracts the prefix from a ROUTE_TABLE key when the key
// belongs to vrf. fpmsyncd may omit the mask of host routes, so a bare
// address reads as a /32 or /128.
func RouteKeyPrefix(key, vrf string) (netip.Prefix, bool) {
	rest, ok := strings.CutPrefix(key, routeTablePrefix)
	if !ok {
		return netip.Prefix{}, false
	}
	if vrf == "default" {
		vrf = ""
	}

	// A default-VRF IPv6 key contains colons too, so try the whole
	// remainder as a prefix before splitting off a VRF name.
	keyVRF := ""
	p, ok := parseRoutePrefix(rest)
	if !ok {
		name, pfx, found := strings.Cut(rest, ":")
		if !found {
			return netip.Prefix{}, false
		}
		if p, ok = parseRoutePrefix(pfx); !ok {
			return netip.Prefix{}, false
		}
		keyVRF = name
	}
	if keyVRF != vrf {
		return netip.Prefix{}, false
	}
	return p, true
}

func parseRoutePrefix(s string) (netip.Prefix, bool) {
	if strings.Contains(s, "/") {
		p, err := netip.ParsePrefix(s)
		if err != nil {
			return netip.Prefix{}, false
		}
		return p.Masked(), true
	}
	a, err := netip.ParseAddr(s)
	if err != nil {
		return netip.Prefix{}, false
	}
	return netip.PrefixFrom(a, a.BitLen()), true
}

func familyMatches(p netip.Prefix, family int) bool {
	switch family {
	case 4:
		return p.Addr().Is4()
	case 6:
		return p.Addr().Is6()
	}
	return true
}
