// Package cli implements the bank command-line client.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	version = "dev"
	commit  = "none"
)

const defaultHost = "http://localhost:8080"

// Execute runs the CLI.
func Execute() int {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		if getOutputFormat(rootCmd) == outputJSON {
			errObj := map[string]interface{}{
				"error": err.Error(),
			}
			var apiErr *APIError
			if errors.As(err, &apiErr) {
				errObj["http_status"] = apiErr.HTTPStatus
				errObj["code"] = apiErr.Code
				if apiErr.CurrentBalance != "" {
					errObj["current_balance"] = apiErr.CurrentBalance
				}
			}
			_ = PrintJSON(os.Stdout, errObj)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

// outputFormat is a pflag.Value that only accepts "table" or "json".
type outputFormat string

var _ pflag.Value = (*outputFormat)(nil)

func (o *outputFormat) String() string { return string(*o) }

func (o *outputFormat) Set(v string) error {
	if err := validateOutputFormat(v); err != nil {
		return err
	}
	*o = outputFormat(v)
	return nil
}

// Type reports "string" so cobra's GetString works on the flag.
func (o *outputFormat) Type() string { return "string" }

// globalOptions holds the resolved persistent flags shared by all commands.
type globalOptions struct {
	host    string
	token   string
	output  outputFormat
	profile string
	client  *Client
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{output: outputTable}

	rootCmd := &cobra.Command{
		Use:           "bank",
		Short:         "bank-demo CLI",
		Long:          "Command-line client for the bank-demo API: log in, read the balance, deposit and withdraw.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.resolve(cmd.Root().PersistentFlags())
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.host, "host", defaultHost, "API host URL")
	flags.StringVar(&opts.token, "token", "", "Bearer token for authentication")
	flags.VarP(&opts.output, "output", "o", "Output format (table, json)")
	flags.StringVarP(&opts.profile, "profile", "p", "", "Config profile to use")

	rootCmd.AddCommand(newLoginCmd(opts))
	rootCmd.AddCommand(newBalanceCmd(opts))
	rootCmd.AddCommand(newDepositCmd(opts))
	rootCmd.AddCommand(newWithdrawCmd(opts))
	rootCmd.AddCommand(newAuthCmd(opts))
	rootCmd.AddCommand(newConfigCmd(opts))
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd())

	return rootCmd
}

// resolve applies precedence flag > env > profile > default and builds the client.
func (o *globalOptions) resolve(flags *pflag.FlagSet) error {
	cfg, err := LoadUserConfig()
	if err != nil {
		// Config file is optional
		cfg = newUserConfig()
	}
	// A missing profile is allowed here so login and config can create it.
	p := cfg.Profiles[cfg.profileName(o.profile)]

	if !flags.Changed("host") {
		if v := os.Getenv("BANK_HOST"); v != "" {
			o.host = v
		} else if p.Host != "" {
			o.host = p.Host
		}
	}
	if !flags.Changed("token") {
		if v := os.Getenv("BANK_TOKEN"); v != "" {
			o.token = v
		} else if p.Token != "" {
			o.token = p.Token
		}
	}
	if !flags.Changed("output") {
		if v := os.Getenv("BANK_OUTPUT"); v != "" {
			if err := o.output.Set(v); err != nil {
				return fmt.Errorf("BANK_OUTPUT: %w", err)
			}
		} else if p.Output != "" {
			if err := o.output.Set(p.Output); err != nil {
				return fmt.Errorf("profile output: %w", err)
			}
		}
	}

	host, err := normalizeHost(o.host)
	if err != nil {
		return err
	}
	o.host = host
	o.client = NewClient(o.host, o.token)
	return nil
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "completion [bash|zsh|fish|powershell]",
		Short:     "Generate shell completion scripts",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			default:
				return fmt.Errorf("unsupported shell: %s", args[0])
			}
		},
	}
}
