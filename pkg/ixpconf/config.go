// Package ixpconf models IXP digital-twin configuration documents and the
// directory store that holds them.
//
// A document names the peering LAN prefixes, the expected RIB dump files and
// the route servers of an exchange. Documents are JSON or YAML; both
// encodings share the same field names.
package ixpconf

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Route server implementations the twin knows how to drive.
const (
	RSTypeOpenBGPD = "open_bgpd"
	RSTypeBIRD     = "bird"
	RSTypeFRR      = "frr"
)

// Config is one IXP configuration document.
type Config struct {
	HostInterface string                 `json:"host_interface" yaml:"host_interface"`
	PeeringLan    PeeringLan             `json:"peering_lan" yaml:"peering_lan"`
	RibDumps      RibDumps               `json:"rib_dumps" yaml:"rib_dumps"`
	RouteServers  map[string]RouteServer `json:"route_servers" yaml:"route_servers"`
}

// PeeringLan holds the exchange's peering LAN prefix per address family.
type PeeringLan struct {
	Four string `json:"4" yaml:"4"`
	Six  string `json:"6" yaml:"6"`
}

// RibDumps names the expected RIB dump files kept in the resources directory.
type RibDumps struct {
	Type  string    `json:"type,omitempty" yaml:"type,omitempty"`
	Dumps DumpFiles `json:"dumps" yaml:"dumps"`
}

// DumpFiles holds one dump file name per address family.
type DumpFiles struct {
	Four string `json:"4" yaml:"4"`
	Six  string `json:"6" yaml:"6"`
}

// RouteServer describes one route server of the exchange.
type RouteServer struct {
	Type    string `json:"type" yaml:"type"`
	Image   string `json:"image,omitempty" yaml:"image,omitempty"`
	ASNum   int64  `json:"as_num" yaml:"as_num"`
	Config  string `json:"config,omitempty" yaml:"config,omitempty"`
	Address string `json:"address" yaml:"address"`
}

// Format is the encoding of a stored document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFor picks the encoding from a document name's extension.
func FormatFor(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unsupported document extension for %q (want .json, .yaml or .yml)", name)
}

// Decode parses a document in the given format. Unknown fields are rejected.
func Decode(data []byte, format Format) (*Config, error) {
	cfg := &Config{}
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(cfg); err != nil {
			return nil, fmt.Errorf("parsing JSON document: %w", err)
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil {
			return nil, fmt.Errorf("parsing YAML document: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
	return cfg, nil
}

// Encode renders the document in the given format.
func Encode(cfg *Config, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	case FormatYAML:
		return yaml.Marshal(cfg)
	}
	return nil, fmt.Errorf("unknown format %q", format)
}

// RouteServerNames returns the route server names in sorted order.
func (c *Config) RouteServerNames() []string {
	names := make([]string, 0, len(c.RouteServers))
	for name := range c.RouteServers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RibDumpName returns the expected dump file for an address family (4 or 6).
func (c *Config) RibDumpName(family int) (string, error) {
	switch family {
	case 4:
		return c.RibDumps.Dumps.Four, nil
	case 6:
		return c.RibDumps.Dumps.Six, nil
	}
	return "", fmt.Errorf("address family must be 4 or 6, got %d", family)
}
