// cmd/bank/cmd_account.go

// 帳戶相關命令：register、login、logout、profile。

package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"minibank/internal/bank"
	"minibank/internal/money"
)

func newRegisterCmd(a *app) *cobra.Command {
	var req bank.RegisterRequest
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Open a new account and log in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.bank.Register(cmd.Context(), req)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Welcome, %s!\n", s.Account.Username)
			printAccount(out, s.Account)
			return nil
		},
	}
	cmd.Flags().StringVar(&req.Username, "username", "", "username (at least 3 characters)")
	cmd.Flags().StringVar(&req.Email, "email", "", "email address")
	cmd.Flags().StringVar(&req.Password, "password", "", "password (at least 6 characters)")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newLoginCmd(a *app) *cobra.Command {
	var username, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and replace the active session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.bank.Login(cmd.Context(), username, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", s.Account.Username)
			printAccount(cmd.OutOrStdout(), s.Account)
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "username")
	cmd.Flags().StringVar(&password, "password", "", "password")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the active session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := a.session(ctx)
			if err != nil {
				return err
			}
			if err := a.bank.Logout(ctx, s); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func newProfileCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "profile",
		Aliases: []string{"whoami"},
		Short:   "Show the account, recent transactions and loans",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := a.session(ctx)
			if err != nil {
				return err
			}
			p, err := a.bank.Profile(ctx, s)
			if err != nil {
				return err
			}
			printProfile(cmd.OutOrStdout(), p)
			return nil
		},
	}
}

func printAccount(w io.Writer, acc bank.Account) {
	fmt.Fprintf(w, "Account number: %s\n", acc.AccountNumber)
	fmt.Fprintf(w, "Balance: NGN %s\n", money.Format(acc.Balance))
}

func printProfile(w io.Writer, p *bank.Profile) {
	fmt.Fprintf(w, "%s <%s>\n", p.Account.Username, p.Account.Email)
	printAccount(w, p.Account)

	fmt.Fprintf(w, "\nRecent transactions (%d)\n", len(p.Transactions))
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tKIND\tAMOUNT\tNOTE")
	for _, tx := range p.Transactions {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
			tx.ID, tx.Date.Format("2006-01-02 15:04"), tx.Kind, money.Format(tx.Amount), tx.Note)
	}
	_ = tw.Flush()

	if len(p.Loans) == 0 {
		return
	}
	fmt.Fprintf(w, "\nLoans (%d)\n", len(p.Loans))
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPRINCIPAL\tTOTAL\tMONTHLY\tOUTSTANDING\tTERM\tSTATUS")
	for _, l := range p.Loans {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%d\t%s\n",
			l.ID, money.Format(l.Principal), money.Format(l.Total), money.Format(l.Monthly),
			money.Format(l.Outstanding), l.TermMonths, l.Status)
	}
	_ = tw.Flush()
}
