package main

import (
	"bufio"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ixp-twin/twinctl/pkg/addr"
	"github.com/ixp-twin/twinctl/pkg/cli"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate prefixes and addresses",
	Long: `Validate IPv4/IPv6 prefixes and single addresses.

Inputs come from the arguments, or one per line from stdin when none are
given. A prefix with host bits set is reported with its network form.

Examples:
  twinctl validate cidr4 193.201.28.0/23 10.0.0.1/8
  twinctl validate cidr6 2001:7f8:10::/48
  twinctl validate ip 2001:7f8:10::19:6959
  cat prefixes.txt | twinctl validate cidr4 --json`,
}

var validateCIDR4Cmd = &cobra.Command{
	Use:   "cidr4 [prefix...]",
	Short: "Validate IPv4 prefixes (a.b.c.d/len)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runValidate(cmd.InOrStdin(), args, addr.ValidateIPv4CIDR)
	},
}

var validateCIDR6Cmd = &cobra.Command{
	Use:   "cidr6 [prefix...]",
	Short: "Validate IPv6 prefixes",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runValidate(cmd.InOrStdin(), args, func(s string) addr.Result {
			return addr.ValidateIPv6CIDR(s, ipv6Options()...)
		})
	},
}

var validateIPCmd = &cobra.Command{
	Use:   "ip [address...]",
	Short: "Validate single IPv4 or IPv6 addresses",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runValidate(cmd.InOrStdin(), args, addr.ValidateIPAddress)
	},
}

func init() {
	validateCmd.AddCommand(validateCIDR4Cmd, validateCIDR6Cmd, validateIPCmd)
}

// validation pairs an input with its result for output.
type validation struct {
	Input  string      `json:"input"`
	Result addr.Result `json:"result"`
}

func runValidate(stdin io.Reader, args []string, validate func(string) addr.Result) error {
	inputs := args
	if len(inputs) == 0 {
		var err error
		if inputs, err = readLines(stdin); err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}
	}

	results := validateAll(inputs, validate)
	invalid := 0
	for _, v := range results {
		if !v.Result.IsValid() {
			invalid++
		}
	}

	if jsonOutput {
		if err := printJSON(results); err != nil {
			return err
		}
	} else {
		t := cli.NewTable("INPUT", "RESULT", "SUGGESTION")
		for _, v := range results {
			status := "valid"
			if !v.Result.IsValid() {
				status = "invalid"
			}
			detail := v.Result.Reason
			if detail == "" {
				detail = cli.Status(status)
			} else {
				detail = cli.Red(detail)
			}
			t.Row(v.Input, detail, v.Result.Suggestion)
		}
		t.Flush()
	}

	if invalid > 0 {
		return fmt.Errorf("%d of %d inputs invalid", invalid, len(results))
	}
	return nil
}

func validateAll(inputs []string, validate func(string) addr.Result) []validation {
	results := make([]validation, 0, len(inputs))
	for _, in := range inputs {
		results = append(results, validation{Input: in, Result: validate(in)})
	}
	return results
}

// readLines returns the non-empty lines of r. Lines are not trimmed, so
// stray whitespace shows up in the validation result.
func readLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if line := scanner.Text(); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, scanner.Err()
}

func ipv6Options() []addr.Option {
	if legacyIPv6 {
		return []addr.Option{addr.WithLegacyIPv6NetworkCheck()}
	}
	return nil
}
