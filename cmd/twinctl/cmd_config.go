package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ixp-twin/twinctl/pkg/cli"
	"github.com/ixp-twin/twinctl/pkg/ixpconf"
	"github.com/ixp-twin/twinctl/pkg/util"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage IXP configuration documents",
	Long: `Manage the IXP configuration documents kept in the config directory.

Documents are JSON (.json) or YAML (.yaml, .yml). Every write validates the
peering LAN prefixes and route server addresses first; a rejected document
is not stored and each failing field is reported with its suggested fix.

Examples:
  twinctl config list
  twinctl config show namex.json
  twinctl config put namex.json ./namex.json
  twinctl config check namex.json
  twinctl config delete namex.json`,
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored documents",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store := openStore()
		names, err := store.List()
		if err != nil {
			return err
		}

		type entry struct {
			Name         string   `json:"name"`
			PeeringLan4  string   `json:"peering_lan_4,omitempty"`
			PeeringLan6  string   `json:"peering_lan_6,omitempty"`
			RouteServers []string `json:"route_servers"`
			Error        string   `json:"error,omitempty"`
		}
		entries := make([]entry, 0, len(names))
		for _, name := range names {
			e := entry{Name: name}
			cfg, err := store.Get(name)
			if err != nil {
				e.Error = err.Error()
			} else {
				e.PeeringLan4 = cfg.PeeringLan.Four
				e.PeeringLan6 = cfg.PeeringLan.Six
				e.RouteServers = cfg.RouteServerNames()
			}
			entries = append(entries, e)
		}

		if jsonOutput {
			return printJSON(entries)
		}
		if len(entries) == 0 {
			fmt.Printf("No configuration documents in %s\n", store.Dir())
			return nil
		}
		t := cli.NewTable("NAME", "PEERING LAN 4", "PEERING LAN 6", "ROUTE SERVERS")
		for _, e := range entries {
			if e.Error != "" {
				t.Row(e.Name, cli.Red("unreadable"), "", e.Error)
				continue
			}
			t.Row(e.Name, dash(e.PeeringLan4), dash(e.PeeringLan6), fmt.Sprintf("%d", len(e.RouteServers)))
		}
		t.Flush()
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show a stored document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := openStore().Get(args[0])
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cfg)
		}

		format, _ := ixpconf.FormatFor(args[0])
		data, err := ixpconf.Encode(cfg, format)
		if err != nil {
			return err
		}
		os.Stdout.Write(data)
		return nil
	},
}

var configCheckCmd = &cobra.Command{
	Use:   "check <name>",
	Short: "Validate a stored document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := openStore().Check(args[0]); err != nil {
			return reportValidation(args[0], err)
		}
		if jsonOutput {
			return printJSON(map[string]interface{}{"name": args[0], "valid": true})
		}
		fmt.Printf("%s: %s\n", args[0], cli.Green("valid"))
		return nil
	},
}

var configPutCmd = &cobra.Command{
	Use:   "put <name> <file>",
	Short: "Validate a document and store it, replacing any existing one",
	Long: `Validate a document and store it under <name>.

The file's format comes from its extension; the stored format comes from
<name>, so "put namex.yaml namex.json" converts JSON to YAML.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, file := args[0], args[1]

		format, err := ixpconf.FormatFor(file)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("reading %s: %w", file, err)
		}
		cfg, err := ixpconf.Decode(data, format)
		if err != nil {
			return err
		}

		store := openStore()
		verb, write := "Updated", store.Update
		if _, getErr := store.Get(name); errors.Is(getErr, util.ErrNotFound) {
			verb, write = "Created", store.Create
		}
		if err := write(name, cfg); err != nil {
			return reportValidation(name, err)
		}
		fmt.Printf("%s %s\n", verb, name)
		return nil
	},
}

var configDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a stored document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := openStore().Delete(args[0]); err != nil {
			return err
		}
		fmt.Printf("Deleted %s\n", args[0])
		return nil
	},
}

func init() {
	configCmd.AddCommand(configListCmd, configShowCmd, configCheckCmd, configPutCmd, configDeleteCmd)
}

// reportValidation prints each rejected field of a validation failure and
// returns a short error. Other errors pass through unchanged.
func reportValidation(name string, err error) error {
	var verr *util.ValidationError
	if !errors.As(err, &verr) {
		return err
	}

	if jsonOutput {
		printJSON(map[string]interface{}{"name": name, "valid": false, "errors": verr.Fields})
	} else {
		fmt.Printf("%s: %s\n", name, cli.Red("rejected"))
		for _, msg := range verr.Messages() {
			fmt.Printf("  - %s\n", msg)
		}
	}
	return fmt.Errorf("%s: %d field(s) failed validation", name, len(verr.Fields))
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
