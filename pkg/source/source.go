// Package source fetches route lines for RIB comparison from dump files,
// live route servers over SSH and SONiC APPL_DB.
package source

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"
)

// Source produces the route lines of one RIB.
type Source interface {
	// Fetch returns the RIB as normalized route lines.
	Fetch(ctx context.Context) ([]string, error)
	// String names the source for logs and reports.
	String() string
}

// Options carries the settings needed to build sources from a locator.
type Options struct {
	ResourcesDir string // base for relative file paths
	SSHUser      string
	SSHPassword  string
	RSType       string // route server implementation for ssh sources
	Family       int    // 4, 6 or 0 for both
	Neighbor     string // restrict an ssh RIB to routes from this neighbor
	VRF          string // APPL_DB VRF, empty for default
	Via          string // SSH host that reaches a redis target

	// PrefixesOnly reduces file and ssh sources to their prefixes, the
	// form a redis source returns.
	PrefixesOnly bool
}

// Parse builds a source from a locator of the form scheme:target:
//
//	file:<path>        dump file, relative paths resolve against ResourcesDir
//	ssh:<host[:port]>  live route server RIB
//	redis:<host:port>  SONiC APPL_DB ROUTE_TABLE, through SSH when Via is set
//
// A locator without a scheme is a file path.
func Parse(locator string, opts Options) (Source, error) {
	src, err := parse(locator, opts)
	if err != nil {
		return nil, err
	}
	if _, ok := src.(*AppDBSource); opts.PrefixesOnly && !ok {
		return &PrefixSource{Source: src, Family: opts.Family}, nil
	}
	return src, nil
}

// IsRedis reports whether locator names an APPL_DB source.
func IsRedis(locator string) bool {
	return strings.HasPrefix(locator, "redis:")
}

func parse(locator string, opts Options) (Source, error) {
	scheme, target, ok := strings.Cut(locator, ":")
	if !ok {
		scheme, target = "file", locator
	}
	if target == "" {
		return nil, fmt.Errorf("empty target in source %q", locator)
	}

	switch scheme {
	case "file":
		return NewFileSource(target, opts.ResourcesDir), nil
	case "ssh":
		if opts.RSType == "" {
			return nil, fmt.Errorf("ssh source %q needs a route server type", locator)
		}
		return &SSHSource{
			Host:     target,
			User:     opts.SSHUser,
			Password: opts.SSHPassword,
			RSType:   opts.RSType,
			Family:   opts.Family,
			Neighbor: opts.Neighbor,
		}, nil
	case "redis":
		return &AppDBSource{
			Addr:        target,
			VRF:         opts.VRF,
			Family:      opts.Family,
			Via:         opts.Via,
			SSHUser:     opts.SSHUser,
			SSHPassword: opts.SSHPassword,
		}, nil
	}
	return nil, fmt.Errorf("unknown source scheme %q (want file, ssh or redis)", scheme)
}

// FetchPair fetches the expected and actual RIBs concurrently. The first
// failure cancels the other fetch.
func FetchPair(ctx context.Context, expected, actual Source) ([]string, []string, error) {
	var exp, act []string
	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		lines, err := expected.Fetch(groupCtx)
		if err != nil {
			return fmt.Errorf("expected RIB %s: %w", expected, err)
		}
		exp = lines
		return nil
	})
	group.Go(func() error {
		lines, err := actual.Fetch(groupCtx)
		if err != nil {
			return fmt.Errorf("actual RIB %s: %w", actual, err)
		}
		act = lines
		return nil
	})

	if err := group.Wait(); err != nil {
		return nil, nil, err
	}
	return exp, act, nil
}
