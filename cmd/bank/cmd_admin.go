// cmd/bank/cmd_admin.go

// 輔助命令：rates、reset、env。

package main

import (
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"minibank/internal/config"
	"minibank/internal/money"
)

func newRatesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rates",
		Short: "Show FX rates and fees",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rates := a.bank.FXRates()
			out := cmd.OutOrStdout()
			for _, code := range sortedKeys(rates) {
				r := rates[code]
				fmt.Fprintf(out, "%s  1 = NGN %s  fee %s%%\n", code, money.Format(r.Rate), r.FeePercent.String())
			}
			return nil
		},
	}
}

func newResetCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete every account, transaction, loan and the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("refusing to reset without --yes")
			}
			if err := a.bank.Reset(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "All data cleared")
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the reset")
	return cmd
}

func newEnvCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "env",
		Short:       "Describe the environment variables",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"skip-setup": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), config.Usage())
			return nil
		},
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
