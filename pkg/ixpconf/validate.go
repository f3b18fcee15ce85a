package ixpconf

import (
	"fmt"

	"github.com/ixp-twin/twinctl/pkg/addr"
	"github.com/ixp-twin/twinctl/pkg/util"
)

var knownRSTypes = map[string]bool{
	RSTypeOpenBGPD: true,
	RSTypeBIRD:     true,
	RSTypeFRR:      true,
}

// ValidateOptions tunes document validation.
type ValidateOptions struct {
	// LegacyIPv6NetworkCheck applies the textual IPv6 network-form rule
	// instead of the bit-level test.
	LegacyIPv6NetworkCheck bool
}

// Validate checks every field of the document and reports all failures at
// once as a *util.ValidationError. Peering LAN prefixes are optional; route
// server name, type and address are required.
func (c *Config) Validate() error {
	return c.ValidateWith(ValidateOptions{})
}

// ValidateWith is Validate with options.
func (c *Config) ValidateWith(opts ValidateOptions) error {
	var v6opts []addr.Option
	if opts.LegacyIPv6NetworkCheck {
		v6opts = append(v6opts, addr.WithLegacyIPv6NetworkCheck())
	}

	v := &util.ValidationBuilder{}

	checkField(v, "peering_lan.4", addr.ValidateIPv4CIDR(c.PeeringLan.Four), false)
	checkField(v, "peering_lan.6", addr.ValidateIPv6CIDR(c.PeeringLan.Six, v6opts...), false)

	for _, name := range c.RouteServerNames() {
		rs := c.RouteServers[name]
		path := fmt.Sprintf("route_servers.%s", name)

		v.Add(name != "", "route_servers", "route server name is required")
		if rs.Type == "" {
			v.AddField(path+".type", "required", "")
		} else if !knownRSTypes[rs.Type] {
			v.AddFieldf(path+".type", "unknown route server type %q", rs.Type)
		}
		if err := util.ValidateASN(rs.ASNum); err != nil {
			v.AddField(path+".as_num", err.Error(), "")
		}
		checkField(v, path+".address", addr.ValidateIPAddress(rs.Address), true)
	}

	return v.Build()
}

// checkField records an invalid result under its field path, keeping reason
// and suggestion verbatim. Empty input passes unless required is set.
func checkField(v *util.ValidationBuilder, path string, res addr.Result, required bool) {
	switch {
	case res.IsValid():
	case res.IsEmpty() && !required:
	case res.IsEmpty():
		v.AddField(path, "required", "")
	default:
		v.AddField(path, res.Reason, res.Suggestion)
	}
}
