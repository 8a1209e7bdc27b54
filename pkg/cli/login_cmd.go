package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newLoginCmd(opts *globalOptions) *cobra.Command {
	var (
		identity string
		secret   string
		noSave   bool
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and save the token to the active profile",
		Long:  "Exchange an identity and secret for a bearer token. The secret is prompted for when --secret is omitted.",
		Example: `  # Prompt for the secret
  bank login --identity john_doe

  # Log in against another server and keep the token out of the config file
  bank login --identity john_doe --host http://bank.internal:8080 --no-save`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if secret == "" {
				s, err := readSecret(cmd.InOrStdin(), cmd.ErrOrStderr())
				if err != nil {
					return err
				}
				secret = s
			}

			res, err := opts.client.Login(cmd.Context(), identity, secret)
			if err != nil {
				return err
			}

			if !noSave {
				if _, err := updateProfile(opts.profile, func(p *Profile) {
					p.Host = opts.host
					p.Identity = identity
					p.Token = res.Token
				}); err != nil {
					return fmt.Errorf("save config: %w", err)
				}
			}

			out := cmd.OutOrStdout()
			if getOutputFormat(cmd) == outputJSON {
				return PrintJSON(out, res)
			}
			if noSave {
				_, _ = fmt.Fprintln(out, res.Token)
				return nil
			}
			_, _ = fmt.Fprintf(out, "Logged in as %s (token expires %s)\n", identity, res.ExpiresAt)
			return nil
		},
	}

	cmd.Flags().StringVar(&identity, "identity", "", "Identity to log in as (required)")
	cmd.Flags().StringVar(&secret, "secret", "", "Secret; prompted for when omitted")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "Print the token instead of saving it")
	_ = cmd.MarkFlagRequired("identity")

	return cmd
}

// readSecret prompts with echo disabled on a terminal, and otherwise reads
// one line from in.
func readSecret(in io.Reader, prompt io.Writer) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) { //nolint:gosec // fd fits in int
		_, _ = fmt.Fprint(prompt, "Secret: ")
		b, err := term.ReadPassword(int(f.Fd())) //nolint:gosec // fd fits in int
		_, _ = fmt.Fprintln(prompt)
		if err != nil {
			return "", fmt.Errorf("read secret: %w", err)
		}
		return string(b), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read secret: %w", err)
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", errors.New("secret is required: pass --secret or provide it on stdin")
	}
	return line, nil
}
