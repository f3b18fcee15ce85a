package source

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ixp-twin/twinctl/pkg/addr"
	"github.com/ixp-twin/twinctl/pkg/ixpconf"
	"github.com/ixp-twin/twinctl/pkg/rib"
	"github.com/ixp-twin/twinctl/pkg/util"
)

// DefaultSSHTimeout bounds an SSH fetch when ctx carries no deadline.
const DefaultSSHTimeout = 60 * time.Second

// SSHSource reads the RIB of a running route server over SSH.
type SSHSource struct {
	Host     string
	User     string
	Password string
	RSType   string // ixpconf.RSTypeOpenBGPD, RSTypeBIRD or RSTypeFRR
	Family   int
	Neighbor string
}

// Fetch connects, runs the RIB command for the route server type and parses
// the output as a dump.
func (s *SSHSource) Fetch(ctx context.Context) ([]string, error) {
	cmd, err := RIBCommand(s.RSType, s.Family, s.Neighbor)
	if err != nil {
		return nil, err
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultSSHTimeout)
		defer cancel()
	}

	logger := util.WithRouteServer(s.Host)
	logger.Debugf("Fetching RIB: %s", cmd)

	tunnel, err := DialTunnel(ctx, s.Host, s.User, s.Password)
	if err != nil {
		return nil, err
	}
	defer tunnel.Close()

	out, err := tunnel.ExecCommand(ctx, cmd)
	if err != nil {
		return nil, err
	}
	lines := rib.ParseDump(out)
	logger.Debugf("Fetched %d route lines", len(lines))
	return lines, nil
}

func (s *SSHSource) String() string {
	return "ssh:" + s.Host
}

// RIBCommand returns the shell command that prints a route server's RIB.
// family is 4, 6 or 0 for every family. neighbor restricts the output to
// routes learned from one peer; for BIRD it names the BGP protocol instead
// of an address.
func RIBCommand(rsType string, family int, neighbor string) (string, error) {
	if family != 0 && family != 4 && family != 6 {
		return "", fmt.Errorf("address family must be 4, 6 or 0, got %d", family)
	}
	if neighbor != "" {
		if err := checkNeighbor(rsType, neighbor); err != nil {
			return "", err
		}
	}

	switch rsType {
	case ixpconf.RSTypeOpenBGPD:
		args := []string{"bgpctl", "show", "rib"}
		if neighbor != "" {
			args = append(args, "in", "neighbor", neighbor)
		}
		switch family {
		case 4:
			args = append(args, "inet")
		case 6:
			args = append(args, "inet6")
		}
		return strings.Join(args, " "), nil

	case ixpconf.RSTypeBIRD:
		args := []string{"birdc", "show", "route"}
		switch family {
		case 4:
			args = append(args, "table", "master4")
		case 6:
			args = append(args, "table", "master6")
		}
		if neighbor != "" {
			args = append(args, "protocol", neighbor)
		}
		return strings.Join(args, " "), nil

	case ixpconf.RSTypeFRR:
		if family == 0 && neighbor != "" {
			family = 4
			if strings.Contains(neighbor, ":") {
				family = 6
			}
		}
		show := "show bgp all"
		if family != 0 {
			show = fmt.Sprintf("show bgp ipv%d unicast", family)
		}
		if neighbor != "" {
			show += " neighbors " + neighbor + " routes"
		}
		return fmt.Sprintf("vtysh -c '%s'", show), nil
	}
	return "", fmt.Errorf("unknown route server type %q", rsType)
}

// checkNeighbor keeps neighbor values safe to splice into a remote command.
func checkNeighbor(rsType, neighbor string) error {
	if rsType == ixpconf.RSTypeBIRD {
		for _, c := range neighbor {
			if !(c == '_' || c == '-' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z') {
				return fmt.Errorf("invalid BIRD protocol name %q", neighbor)
			}
		}
		return nil
	}
	if res := addr.ValidateIPAddress(neighbor); !res.IsValid() {
		return fmt.Errorf("invalid neighbor address %q: %s", neighbor, res)
	}
	return nil
}
