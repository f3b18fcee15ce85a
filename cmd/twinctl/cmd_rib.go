package main

import (
	"context"
	"fmt"
	"net/netip"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ixp-twin/twinctl/pkg/audit"
	"github.com/ixp-twin/twinctl/pkg/cli"
	"github.com/ixp-twin/twinctl/pkg/ixpconf"
	"github.com/ixp-twin/twinctl/pkg/rib"
	"github.com/ixp-twin/twinctl/pkg/source"
	"github.com/ixp-twin/twinctl/pkg/util"
)

var ribCmd = &cobra.Command{
	Use:   "rib",
	Short: "Reconcile route server RIBs",
	Long: `Compare the RIB a route server should hold with the RIB it loaded.

RIB sources are locators:
  <path> or file:<path>   dump file, relative to the resources directory
  ssh:<host[:port]>       live route server (needs --rs-type)
  redis:[host:port]       SONiC APPL_DB ROUTE_TABLE (--via to tunnel over SSH)

APPL_DB stores prefixes only, so when either side is redis the other side is
reduced to its prefixes before the diff.

With --config and --rs the expected dump and the route server address and
type come from the stored configuration document. The SSH password is read
from TWINCTL_SSH_PASSWORD or prompted for.

Examples:
  twinctl rib diff --config namex.json --rs rs1-rom-v4 -f 4
  twinctl rib diff --expected rib_v4.dump --actual ssh:193.201.28.60 --rs-type open_bgpd
  twinctl rib diff --expected rib_v4.dump --actual redis:127.0.0.1:6379 --via 10.0.0.1
  twinctl rib check rib_v4.dump
  twinctl rib coverage --expected rib_v4.dump --actual actual_v4.dump`,
}

var (
	ribExpected   string
	ribActual     string
	ribConfig     string
	ribRS         string
	ribRSType     string
	ribFamily     int
	ribNeighbor   string
	ribVRF        string
	ribVia        string
	ribSSHUser    string
	ribTimeout    time.Duration
	ribShowLines  bool
	ribWriteDir   string
	ribFailOnDiff bool
	ribMax4       int
	ribMax6       int
	ribPeerIPs    []string
	ribPeerASN    uint32
)

var ribDiffCmd = &cobra.Command{
	Use:   "diff",
	Short: "Diff the expected RIB against the loaded RIB",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := ribContext()
		defer cancel()

		plan, err := planDiff()
		if err != nil {
			return err
		}

		start := time.Now()
		report, err := runDiff(ctx, plan)
		recordDiff(plan, report, start, err)
		if err != nil {
			return err
		}

		if ribWriteDir != "" {
			if err := writeReportFiles(ribWriteDir, report); err != nil {
				return err
			}
		}

		if jsonOutput {
			out := map[string]interface{}{
				"expected": plan.expected.String(),
				"actual":   plan.actual.String(),
				"summary":  report.Summary(),
			}
			if ribShowLines {
				out["not_loaded"] = report.NotLoaded
				out["extra"] = report.Extra
			}
			if err := printJSON(out); err != nil {
				return err
			}
		} else {
			printDiff(plan, report)
		}

		if ribFailOnDiff && !report.Identical() {
			return fmt.Errorf("RIBs differ: %d not loaded, %d extra", report.NotLoadedLen(), report.ExtraLen())
		}
		return nil
	},
}

var ribCheckCmd = &cobra.Command{
	Use:   "check <locator>",
	Short: "Check a RIB for default routes, private prefixes and prefix limits",
	Long: `Check the routes of one RIB. Errors: an empty RIB, a default route, a
prefix inside a special-purpose range and more prefixes than allowed. With
--peer-ip the gateway of every route must be the participant address of
its family; with --peer-asn the participant AS must lead any path it is in.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := checkConfig()
		if err != nil {
			return err
		}

		ctx, cancel := ribContext()
		defer cancel()

		src, err := source.Parse(expandLocator(args[0]), sourceOptions(ribRSType, ribFamily))
		if err != nil {
			return err
		}
		if err := fillPassword(src); err != nil {
			return err
		}
		lines, err := src.Fetch(ctx)
		if err != nil {
			return err
		}

		findings := rib.Check(lines, cfg)
		if jsonOutput {
			if err := printJSON(findings); err != nil {
				return err
			}
		} else {
			t := cli.NewTable("SEVERITY", "CHECK", "LINE", "MESSAGE")
			for _, f := range findings {
				t.Row(cli.Status(string(f.Severity)), f.Check, f.Line, f.Message)
			}
			t.Flush()
		}

		if rib.HasErrors(findings) {
			return fmt.Errorf("RIB check failed for %s", src)
		}
		return nil
	},
}

var ribCoverageCmd = &cobra.Command{
	Use:   "coverage",
	Short: "Explain unmatched routes by longest prefix match",
	Long: `Diff two RIBs, then look up every unmatched route in the other RIB by
longest prefix match. An extra route inside an expected prefix is usually a
more-specific; a missing route whose space the loaded RIB still covers is
usually aggregated.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := ribContext()
		defer cancel()

		plan, err := planDiff()
		if err != nil {
			return err
		}
		report, err := runDiff(ctx, plan)
		if err != nil {
			return err
		}
		cr, err := rib.Coverage(report)
		if err != nil {
			return err
		}

		if jsonOutput {
			return printJSON(cr)
		}
		printCoverage(cr)
		return nil
	},
}

func init() {
	for _, cmd := range []*cobra.Command{ribDiffCmd, ribCoverageCmd} {
		cmd.Flags().StringVarP(&ribExpected, "expected", "e", "", "Expected RIB locator")
		cmd.Flags().StringVarP(&ribActual, "actual", "a", "", "Actual RIB locator")
		cmd.Flags().StringVar(&ribConfig, "config", "", "Configuration document supplying defaults")
		cmd.Flags().StringVar(&ribRS, "rs", "", "Route server name in the configuration document")
	}
	for _, cmd := range []*cobra.Command{ribDiffCmd, ribCheckCmd, ribCoverageCmd} {
		cmd.Flags().StringVar(&ribRSType, "rs-type", "", "Route server type for ssh sources (open_bgpd, bird, frr)")
		cmd.Flags().IntVarP(&ribFamily, "family", "f", 0, "Address family (4 or 6, 0 for both)")
		cmd.Flags().StringVar(&ribNeighbor, "neighbor", "", "Only routes from this neighbor (BIRD: protocol name)")
		cmd.Flags().StringVar(&ribVRF, "vrf", "", "APPL_DB VRF for redis sources")
		cmd.Flags().StringVar(&ribVia, "via", "", "SSH host used to reach redis sources")
		cmd.Flags().StringVar(&ribSSHUser, "ssh-user", "", "SSH login (default from settings)")
		cmd.Flags().DurationVar(&ribTimeout, "timeout", 2*time.Minute, "Overall timeout")
	}
	ribDiffCmd.Flags().BoolVarP(&ribShowLines, "lines", "l", false, "List not-loaded and extra routes")
	ribDiffCmd.Flags().StringVarP(&ribWriteDir, "write", "w", "", "Write not_loaded.txt and extra.txt to this directory")
	ribDiffCmd.Flags().BoolVar(&ribFailOnDiff, "fail-on-diff", false, "Exit non-zero unless the RIBs are identical")

	defaults := rib.DefaultCheckConfig()
	ribCheckCmd.Flags().IntVar(&ribMax4, "max-prefixes4", defaults.MaxPrefixes4, "IPv4 prefix limit (0 disables)")
	ribCheckCmd.Flags().IntVar(&ribMax6, "max-prefixes6", defaults.MaxPrefixes6, "IPv6 prefix limit (0 disables)")
	ribCheckCmd.Flags().StringSliceVar(&ribPeerIPs, "peer-ip", nil, "Participant address expected as next hop (one per family)")
	ribCheckCmd.Flags().Uint32Var(&ribPeerASN, "peer-asn", 0, "Participant AS expected first in the AS path")

	ribCmd.AddCommand(ribDiffCmd, ribCheckCmd, ribCoverageCmd)
}

// diffPlan is a resolved diff: both sources plus the names used for audit.
type diffPlan struct {
	config      string
	routeServer string
	expected    source.Source
	actual      source.Source
}

// planDiff resolves --expected/--actual, filling gaps from the configuration
// document named by --config.
func planDiff() (*diffPlan, error) {
	plan := &diffPlan{config: ribConfig, routeServer: ribRS}
	expected, actual, rsType, family := ribExpected, ribActual, ribRSType, ribFamily

	if ribConfig != "" {
		cfg, err := openStore().Get(ribConfig)
		if err != nil {
			return nil, err
		}
		name, rs, err := pickRouteServer(cfg, ribRS)
		if err != nil {
			return nil, err
		}
		plan.routeServer = name
		if family == 0 {
			family = addressFamily(rs.Address)
		}
		if rsType == "" {
			rsType = rs.Type
		}
		if expected == "" {
			if expected, err = cfg.RibDumpName(family); err != nil {
				return nil, err
			}
		}
		if actual == "" {
			actual = "ssh:" + rs.Address
		}
	}

	if expected == "" || actual == "" {
		return nil, fmt.Errorf("both RIBs are required: use --expected and --actual, or --config with --rs")
	}

	expected, actual = expandLocator(expected), expandLocator(actual)
	opts := sourceOptions(rsType, family)
	// APPL_DB holds prefixes only; compare the other side by prefix too.
	opts.PrefixesOnly = source.IsRedis(expected) || source.IsRedis(actual)

	var err error
	if plan.expected, err = source.Parse(expected, opts); err != nil {
		return nil, err
	}
	if plan.actual, err = source.Parse(actual, opts); err != nil {
		return nil, err
	}
	for _, src := range []source.Source{plan.expected, plan.actual} {
		if err := fillPassword(src); err != nil {
			return nil, err
		}
	}
	return plan, nil
}

// checkConfig builds the rib check limits and participant from the flags.
func checkConfig() (rib.CheckConfig, error) {
	cfg := rib.CheckConfig{MaxPrefixes4: ribMax4, MaxPrefixes6: ribMax6, PeerASN: ribPeerASN}
	families := make(map[bool]bool)
	for _, s := range ribPeerIPs {
		ip, err := netip.ParseAddr(s)
		if err != nil {
			return rib.CheckConfig{}, fmt.Errorf("--peer-ip %q: %w", s, err)
		}
		ip = ip.Unmap()
		if families[ip.Is4()] {
			return rib.CheckConfig{}, fmt.Errorf("--peer-ip %s: one address per family", ip)
		}
		families[ip.Is4()] = true
		cfg.PeerIPs = append(cfg.PeerIPs, ip)
	}
	return cfg, nil
}

// pickRouteServer returns the named route server, or the only one when
// name is empty.
func pickRouteServer(cfg *ixpconf.Config, name string) (string, ixpconf.RouteServer, error) {
	if name == "" {
		names := cfg.RouteServerNames()
		if len(names) != 1 {
			return "", ixpconf.RouteServer{}, fmt.Errorf("--rs required: configuration has %d route servers (%s)",
				len(names), strings.Join(names, ", "))
		}
		name = names[0]
	}
	rs, ok := cfg.RouteServers[name]
	if !ok {
		return "", ixpconf.RouteServer{}, util.NewNotFoundError("route server", name)
	}
	return name, rs, nil
}

// expandLocator fills a bare "redis:" locator with the configured APPL_DB
// address.
func expandLocator(locator string) string {
	if locator == "redis:" && userSettings != nil {
		return locator + userSettings.GetRedisAddr()
	}
	return locator
}

func addressFamily(address string) int {
	if strings.Contains(address, ":") {
		return 6
	}
	return 4
}

func sourceOptions(rsType string, family int) source.Options {
	user := ribSSHUser
	if user == "" && userSettings != nil {
		user = userSettings.GetSSHUser()
	}
	return source.Options{
		ResourcesDir: resourcesDir,
		SSHUser:      user,
		RSType:       rsType,
		Family:       family,
		Neighbor:     ribNeighbor,
		VRF:          ribVRF,
		Via:          ribVia,
	}
}

// fillPassword sets the SSH password on sources that log in over SSH.
func fillPassword(src source.Source) error {
	switch s := src.(type) {
	case *source.PrefixSource:
		return fillPassword(s.Source)
	case *source.SSHSource:
		pass, err := sshPassword()
		s.Password = pass
		return err
	case *source.AppDBSource:
		if s.Via == "" {
			return nil
		}
		pass, err := sshPassword()
		s.SSHPassword = pass
		return err
	}
	return nil
}

var cachedPassword *string

// sshPassword returns TWINCTL_SSH_PASSWORD or prompts once on the terminal.
func sshPassword() (string, error) {
	if cachedPassword != nil {
		return *cachedPassword, nil
	}
	pass := os.Getenv("TWINCTL_SSH_PASSWORD")
	if pass == "" {
		fd := int(os.Stdin.Fd())
		if !term.IsTerminal(fd) {
			return "", fmt.Errorf("SSH password required: set TWINCTL_SSH_PASSWORD")
		}
		fmt.Fprint(os.Stderr, "SSH password: ")
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("reading password: %w", err)
		}
		pass = string(b)
	}
	cachedPassword = &pass
	return pass, nil
}

func ribContext() (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	ctx, cancel := context.WithTimeout(ctx, ribTimeout)
	return ctx, func() {
		cancel()
		stop()
	}
}

func runDiff(ctx context.Context, plan *diffPlan) (*rib.Report, error) {
	logger := util.WithOperation(audit.OpRIBDiff)
	logger.Debugf("Fetching %s and %s", plan.expected, plan.actual)

	expected, actual, err := source.FetchPair(ctx, plan.expected, plan.actual)
	if err != nil {
		return nil, err
	}
	report := rib.Diff(expected, actual)
	logger.Debugf("Diff: %d expected, %d actual, %d matching", report.ExpectedLen(), report.ActualLen(), report.MatchingLen())
	return report, nil
}

func recordDiff(plan *diffPlan, report *rib.Report, start time.Time, err error) {
	event := audit.NewEvent(currentUser(), audit.OpRIBDiff).
		WithConfig(plan.config).
		WithRouteServer(plan.routeServer).
		WithDetail("expected", plan.expected.String()).
		WithDetail("actual", plan.actual.String()).
		Finish(start, err)
	if err == nil {
		s := report.Summary()
		event.WithDetail("match_percentage", fmt.Sprintf("%.2f", s.MatchPercentage)).
			WithDetail("not_loaded", fmt.Sprintf("%d", s.NotLoadedLen)).
			WithDetail("extra", fmt.Sprintf("%d", s.ExtraLen))
	}
	if logErr := audit.Log(event); logErr != nil {
		util.Warnf("audit: %v", logErr)
	}
}

func writeReportFiles(dir string, report *rib.Report) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	files := map[string]string{
		"not_loaded.txt": report.NotLoadedText(),
		"extra.txt":      report.ExtraText(),
	}
	for name, text := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(text), 0644); err != nil {
			return fmt.Errorf("writing %s: %w", name, err)
		}
	}
	return nil
}

func printDiff(plan *diffPlan, report *rib.Report) {
	s := report.Summary()
	const width = 20

	fmt.Printf("%s %s\n", cli.DotPad("Expected RIB", width), plan.expected)
	fmt.Printf("%s %s\n", cli.DotPad("Actual RIB", width), plan.actual)
	fmt.Println()
	fmt.Printf("%s %d\n", cli.DotPad("Expected routes", width), s.ExpectedLen)
	fmt.Printf("%s %d\n", cli.DotPad("Loaded routes", width), s.ActualLen)
	fmt.Printf("%s %d\n", cli.DotPad("Matching", width), s.MatchingLen)
	fmt.Printf("%s %d\n", cli.DotPad("Not loaded", width), s.NotLoadedLen)
	fmt.Printf("%s %d\n", cli.DotPad("Extra", width), s.ExtraLen)
	fmt.Printf("%s %s\n", cli.DotPad("Match", width), cli.Percent(s.MatchPercentage))

	if !ribShowLines {
		return
	}
	printLines("Not loaded", report.NotLoaded)
	printLines("Extra", report.Extra)
}

func printLines(title string, lines []string) {
	if len(lines) == 0 {
		return
	}
	fmt.Printf("\n%s:\n", cli.Bold(title))
	for _, line := range lines {
		fmt.Printf("  %s\n", line)
	}
}

func printCoverage(cr *rib.CoverageReport) {
	t := cli.NewTable("KIND", "ROUTE", "COVERED BY")
	for _, c := range cr.ExtraCovered {
		t.Row("extra", c.Prefix.String(), c.CoveredBy.String())
	}
	for _, line := range cr.ExtraUncovered {
		t.Row("extra", line, cli.Red("uncovered"))
	}
	for _, c := range cr.NotLoadedCovered {
		t.Row("not loaded", c.Prefix.String(), c.CoveredBy.String())
	}
	for _, line := range cr.NotLoadedUncovered {
		t.Row("not loaded", line, cli.Red("uncovered"))
	}
	for _, line := range cr.Unparsed {
		t.Row("unparsed", line, "-")
	}
	t.Flush()

	aggs := make([]string, 0, len(cr.ExpectedAggregates))
	for _, p := range cr.ExpectedAggregates {
		aggs = append(aggs, p.String())
	}
	fmt.Printf("\nExpected address space: %s\n", dash(strings.Join(aggs, " ")))
}

func currentUser() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "unknown"
}
