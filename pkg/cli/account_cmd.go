package cli

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func newBalanceCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "balance",
		Short: "Show the account balance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := opts.client.Balance(cmd.Context())
			if err != nil {
				return err
			}
			return printBalance(cmd, res)
		},
	}
}

func newDepositCmd(opts *globalOptions) *cobra.Command {
	return newMutationCmd("deposit", "Deposit an amount into the account", func(ctx context.Context, amount decimal.Decimal) (*BalanceResult, error) {
		return opts.client.Deposit(ctx, amount)
	})
}

func newWithdrawCmd(opts *globalOptions) *cobra.Command {
	return newMutationCmd("withdraw", "Withdraw an amount from the account", func(ctx context.Context, amount decimal.Decimal) (*BalanceResult, error) {
		return opts.client.Withdraw(ctx, amount)
	})
}

func newMutationCmd(name, short string, op func(context.Context, decimal.Decimal) (*BalanceResult, error)) *cobra.Command {
	return &cobra.Command{
		Use:     name + " <amount>",
		Short:   short,
		Example: fmt.Sprintf("  bank %s 250.50", name),
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmountArg(args[0])
			if err != nil {
				return err
			}
			res, err := op(cmd.Context(), amount)
			if err != nil {
				return err
			}
			return printBalance(cmd, res)
		},
	}
}

// parseAmountArg rejects amounts the server would refuse before any request is sent.
func parseAmountArg(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: must be a number", raw)
	}
	if !amount.IsPositive() {
		return decimal.Zero, fmt.Errorf("invalid amount %q: must be greater than zero", raw)
	}
	return amount, nil
}

func printBalance(cmd *cobra.Command, res *BalanceResult) error {
	out := cmd.OutOrStdout()
	if getOutputFormat(cmd) == outputJSON {
		return PrintJSON(out, res)
	}
	if res.Message != "" {
		_, _ = fmt.Fprintln(out, res.Message)
	}
	PrintTable(out, []string{"identity", "balance"}, [][]string{{res.Identity, res.Balance.String()}})
	return nil
}
