// cmd/bank/cmd_ledger.go

// 影響餘額的命令：transfer、bundle、electricity、loan、intl。
// 金額以原始字串交給 Ledger Engine 解析。

package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"minibank/internal/bank"
	"minibank/internal/money"
)

func newTransferCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "transfer <account-number> <amount>",
		Short: "Transfer funds to another account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := a.session(ctx)
			if err != nil {
				return err
			}
			res, err := a.bank.Transfer(ctx, s, bank.TransferRequest{ToAccount: args[0], Amount: args[1]})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Sent NGN %s to %s (%s)\n",
				money.Format(res.Debit.Amount), res.Recipient.Username, res.Recipient.AccountNumber)
			fmt.Fprintf(out, "Balance: NGN %s\n", money.Format(res.Sender.Balance))
			return nil
		},
	}
}

func newBundleCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bundle",
		Short: "List or buy data bundles",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List bundles per network",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				bundles := a.bank.AvailableBundles()
				out := cmd.OutOrStdout()
				for _, network := range sortedKeys(bundles) {
					fmt.Fprintln(out, network)
					for _, b := range bundles[network] {
						fmt.Fprintf(out, "  %-10s %-18s NGN %s\n", b.ID, b.Name, money.Format(b.Price))
					}
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "buy <network> <bundle-id>",
			Short: "Buy a data bundle",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx := cmd.Context()
				s, err := a.session(ctx)
				if err != nil {
					return err
				}
				res, err := a.bank.BuyBundle(ctx, s, bank.BundleRequest{Network: args[0], BundleID: args[1]})
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Bought %s on %s for NGN %s\n", res.Bundle.Name, res.Tx.Network, money.Format(res.Tx.Amount))
				fmt.Fprintf(out, "Balance: NGN %s\n", money.Format(res.Account.Balance))
				return nil
			},
		},
	)
	return cmd
}

func newElectricityCmd(a *app) *cobra.Command {
	var mode string
	cmd := &cobra.Command{
		Use:   "electricity <meter-number> <amount>",
		Short: "Pay an electricity bill",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := a.session(ctx)
			if err != nil {
				return err
			}
			res, err := a.bank.PayElectricity(ctx, s, bank.ElectricityRequest{MeterNumber: args[0], Amount: args[1], Mode: mode})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Paid NGN %s for meter %s (%s)\n", money.Format(res.Tx.Amount), res.Tx.MeterNumber, res.Tx.PaymentMode)
			if res.Token != "" {
				fmt.Fprintf(out, "Token: %s\n", res.Token)
			}
			fmt.Fprintf(out, "Balance: NGN %s\n", money.Format(res.Account.Balance))
			return nil
		},
	}
	cmd.Flags().StringVar(&mode, "mode", bank.ModePrepaid, "payment mode: prepaid or postpaid")
	return cmd
}

func newLoanCmd(a *app) *cobra.Command {
	var term int
	request := &cobra.Command{
		Use:   "request <amount>",
		Short: "Request a loan; the principal is credited immediately",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := a.session(ctx)
			if err != nil {
				return err
			}
			res, err := a.bank.RequestLoan(ctx, s, bank.LoanRequest{Amount: args[0], TermMonths: term})
			if err != nil {
				return err
			}
			l := res.Loan
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Loan %d approved: NGN %s over %d months\n", l.ID, money.Format(l.Principal), l.TermMonths)
			fmt.Fprintf(out, "Interest: NGN %s  Total: NGN %s  Monthly: NGN %s\n",
				money.Format(l.Interest), money.Format(l.Total), money.Format(l.Monthly))
			fmt.Fprintf(out, "Balance: NGN %s\n", money.Format(res.Account.Balance))
			return nil
		},
	}
	request.Flags().IntVar(&term, "term", 12, "term in months")

	repay := &cobra.Command{
		Use:   "repay <loan-id> <amount>",
		Short: "Repay part or all of a loan",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid loan id %q", args[0])
			}
			ctx := cmd.Context()
			s, err := a.session(ctx)
			if err != nil {
				return err
			}
			res, err := a.bank.RepayLoan(ctx, s, bank.RepayRequest{LoanID: id, Amount: args[1]})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Repaid NGN %s on loan %d\n", money.Format(res.Tx.Amount), res.Loan.ID)
			fmt.Fprintf(out, "Outstanding: NGN %s (%s)\n", money.Format(res.Loan.Outstanding), res.Loan.Status)
			fmt.Fprintf(out, "Balance: NGN %s\n", money.Format(res.Account.Balance))
			return nil
		},
	}

	cmd := &cobra.Command{
		Use:   "loan",
		Short: "Request or repay loans",
	}
	cmd.AddCommand(request, repay)
	return cmd
}

func newIntlCmd(a *app) *cobra.Command {
	var req bank.IntlRequest
	cmd := &cobra.Command{
		Use:   "intl <currency> <amount>",
		Short: "Send money abroad; the fee is added to the NGN debit",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := a.session(ctx)
			if err != nil {
				return err
			}
			req.Currency, req.Amount = args[0], args[1]
			res, err := a.bank.InternationalTransfer(ctx, s, req)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Sent %s %s to %s\n", res.Tx.Currency, money.Format(*res.Tx.RemoteAmount), res.Tx.ToName)
			fmt.Fprintf(out, "Converted: NGN %s  Fee: NGN %s  Total: NGN %s\n",
				money.Format(res.Converted), money.Format(res.Fee), money.Format(res.TotalNGN))
			fmt.Fprintf(out, "Balance: NGN %s\n", money.Format(res.Account.Balance))
			return nil
		},
	}
	cmd.Flags().StringVar(&req.ToName, "to-name", "", "recipient name")
	cmd.Flags().StringVar(&req.ToBank, "to-bank", "", "recipient bank")
	return cmd
}
