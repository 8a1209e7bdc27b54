package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"bank-demo/internal/token"
)

func newAuthCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authentication helpers",
	}

	cmd.AddCommand(newAuthTokenCmd(opts))
	return cmd
}

func newAuthTokenCmd(opts *globalOptions) *cobra.Command {
	var (
		identity string
		secret   string
		issuer   string
		expires  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a dev-mode token offline and save it to the active profile",
		Long:  "Sign an HS256 token with the server's JWT secret, without calling /login. The token is saved to the active profile.",
		Example: `  # Mint a token for the demo principal with the default dev secret
  bank auth token --identity john_doe --secret dev-secret-change-in-production

  # Short-lived token for expiry testing
  bank auth token --identity john_doe --secret mysecret --expires 30s`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			codec, err := token.NewCodec(secret, issuer)
			if err != nil {
				return err
			}
			issued, err := codec.Sign(identity, expires)
			if err != nil {
				return err
			}

			if _, err := updateProfile(opts.profile, func(p *Profile) {
				p.Identity = identity
				p.Token = issued.Token
			}); err != nil {
				return fmt.Errorf("save config: %w", err)
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), issued.Token)
			return nil
		},
	}

	cmd.Flags().StringVar(&identity, "identity", "", "Identity claim of the token")
	cmd.Flags().StringVar(&secret, "secret", "", "JWT signing secret (HS256)")
	cmd.Flags().StringVar(&issuer, "issuer", "bank-demo", "Issuer claim")
	cmd.Flags().DurationVar(&expires, "expires", 24*time.Hour, "Token lifetime")
	_ = cmd.MarkFlagRequired("identity")
	_ = cmd.MarkFlagRequired("secret")

	return cmd
}
