// Twinctl - IXP Digital Twin Control Tool
//
// A CLI for the route server side of an IXP digital twin:
//   - Validate IPv4/IPv6 prefixes and addresses before they enter a config
//   - Keep named IXP configuration documents in a directory store
//   - Reconcile an expected RIB dump against the RIB a route server loaded
//   - Audit logging of every config change and RIB diff
//
// Command groups:
//
//	twinctl validate cidr4|cidr6|ip <input>...
//	twinctl config list|show|check|put|delete
//	twinctl rib diff|check|coverage
//	twinctl settings show|set|clear
//
// Examples:
//
//	twinctl validate cidr4 193.201.28.0/23
//	twinctl config put namex.json ./namex.json
//	twinctl rib diff --config namex.json --rs rs1-rom-v4 -f 4
//	twinctl rib diff --expected rib_v4.dump --actual ssh:193.201.28.60 --rs-type open_bgpd
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ixp-twin/twinctl/pkg/audit"
	"github.com/ixp-twin/twinctl/pkg/cli"
	"github.com/ixp-twin/twinctl/pkg/ixpconf"
	"github.com/ixp-twin/twinctl/pkg/settings"
	"github.com/ixp-twin/twinctl/pkg/util"
	"github.com/ixp-twin/twinctl/pkg/version"
)

var (
	// Global option flags
	configDir    string // -C, --config-dir
	resourcesDir string // -R, --resources-dir
	verbose      bool
	logJSON      bool
	jsonOutput   bool
	legacyIPv6   bool

	// Global state
	userSettings *settings.Settings
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:               "twinctl",
	Short:             "IXP Digital Twin Control Tool",
	SilenceUsage:      true,
	SilenceErrors:     true,
	CompletionOptions: cobra.CompletionOptions{HiddenDefaultCmd: true},
	Long: `Twinctl validates IXP configuration data and reconciles route server RIBs
for an IXP digital twin.

Configuration documents live in the config directory; expected RIB dumps and
route server configs live in the resources directory.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		util.Configure(verbose, logJSON)
		if jsonOutput {
			cli.SetColor(false)
		}

		if isSettingsOrHelp(cmd) {
			return nil
		}

		var err error
		userSettings, err = settings.Load()
		if err != nil {
			util.Warnf("Could not load settings: %v", err)
			userSettings = &settings.Settings{}
		}
		if configDir == "" {
			configDir = userSettings.GetConfigDir()
		}
		if resourcesDir == "" {
			resourcesDir = userSettings.GetResourcesDir()
		}

		auditLogger, err := audit.NewFileLogger(filepath.Join(configDir, "audit.log"), audit.RotationConfig{
			MaxSize:    10 * 1024 * 1024, // 10MB
			MaxBackups: 10,
		})
		if err != nil {
			util.Warnf("Could not initialize audit logging: %v", err)
		} else {
			audit.SetDefaultLogger(auditLogger)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configDir, "config-dir", "C", "", "IXP configuration directory")
	rootCmd.PersistentFlags().StringVarP(&resourcesDir, "resources-dir", "R", "", "Resources directory (RIB dumps, route server configs)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "Log in JSON format")

	for _, cmd := range []*cobra.Command{validateCmd, configCmd, ribCmd, auditCmd, settingsCmd, versionCmd} {
		addOutputFlags(cmd)
	}
	for _, cmd := range []*cobra.Command{validateCmd, configCmd} {
		cmd.PersistentFlags().BoolVar(&legacyIPv6, "legacy-ipv6", false, "Apply the textual IPv6 network-form check instead of the bit-level one")
	}

	rootCmd.AddGroup(
		&cobra.Group{ID: "ixp", Title: "IXP Operations:"},
		&cobra.Group{ID: "meta", Title: "Configuration & Meta:"},
	)
	for _, cmd := range []*cobra.Command{validateCmd, configCmd, ribCmd} {
		cmd.GroupID = "ixp"
		rootCmd.AddCommand(cmd)
	}
	for _, cmd := range []*cobra.Command{settingsCmd, auditCmd, versionCmd} {
		cmd.GroupID = "meta"
		rootCmd.AddCommand(cmd)
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		if jsonOutput {
			return printJSON(version.Get())
		}
		if version.IsDev() {
			fmt.Println("twinctl dev build (set version ldflags for release info)")
		} else {
			fmt.Printf("twinctl %s\n", version.Info())
		}
		return nil
	},
}

// isSettingsOrHelp checks whether cmd (or any ancestor) is a settings, help, or version command.
func isSettingsOrHelp(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		switch c.Name() {
		case "help", "version", "settings":
			return true
		}
	}
	return false
}

// addOutputFlags registers --json as a local flag.
// For noun-group parent commands, this is a PersistentFlag so subcommands inherit.
func addOutputFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	if cmd.HasSubCommands() {
		flags = cmd.PersistentFlags()
	}
	flags.BoolVar(&jsonOutput, "json", false, "JSON output")
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// openStore returns the config store with the current validation options.
func openStore() *ixpconf.Store {
	return ixpconf.NewStore(configDir).
		WithValidateOptions(ixpconf.ValidateOptions{LegacyIPv6NetworkCheck: legacyIPv6})
}
