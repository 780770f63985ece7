// cmd/bank/main.go

// bank 為 Ledger Engine 的命令列介面：開戶、登入、轉帳、繳費、貸款與國際匯款。
// 設定由環境變數載入（見 `bank env`），旗標可覆寫儲存後端與 log 層級。
// 登入狀態存在 Record Store 的 session 集合，跨次執行保留。

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"minibank/internal/bank"
	"minibank/internal/catalog"
	"minibank/internal/config"
	"minibank/internal/logger"
	"minibank/internal/storage"
)

// app 持有單次執行所需的元件，由 PersistentPreRunE 建立。
type app struct {
	cfg   *config.Config
	log   zerolog.Logger
	store storage.Store
	bank  *bank.Bank

	storeDriver string
	storePath   string
	logLevel    string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run 執行一次命令並回傳 exit code。
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	a := &app{}
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if a.store != nil {
		if cerr := a.store.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close store: %w", cerr)
		}
	}
	if err != nil {
		printError(stderr, err)
		return 1
	}
	return 0
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "bank",
		Short:         "Mini banking ledger",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Annotations["skip-setup"] == "true" {
				return nil
			}
			return a.setup(cmd)
		},
	}
	root.PersistentFlags().StringVar(&a.storeDriver, "store", "", "record store backend (memory, json, sqlite); overrides BANK_STORE_DRIVER")
	root.PersistentFlags().StringVar(&a.storePath, "store-path", "", "snapshot or database path; overrides BANK_STORE_PATH")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level; overrides BANK_LOG_LEVEL")

	root.AddCommand(
		newRegisterCmd(a),
		newLoginCmd(a),
		newLogoutCmd(a),
		newProfileCmd(a),
		newTransferCmd(a),
		newBundleCmd(a),
		newElectricityCmd(a),
		newLoanCmd(a),
		newIntlCmd(a),
		newRatesCmd(a),
		newResetCmd(a),
		newEnvCmd(),
	)
	return root
}

// setup 載入設定並建立 logger、Record Store、目錄與 Bank。
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if a.storeDriver != "" {
		cfg.StoreDriver = a.storeDriver
	}
	if a.storePath != "" {
		cfg.StorePath = a.storePath
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	a.cfg = cfg
	a.log = logger.WithLevel(logger.NewConsole(cmd.ErrOrStderr()), cfg.LogLevel)

	ctx := logger.WithContext(cmd.Context(), a.log)
	cmd.SetContext(ctx)

	cat, err := catalog.Load(cfg.CatalogFile)
	if err != nil {
		return err
	}
	st, err := storage.Open(ctx, cfg.StoreDriver, cfg.StorePath)
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.StoreDriver, err)
	}
	a.store = st

	a.bank = bank.New(st, bank.Options{
		Catalog:     cat,
		Logger:      &a.log,
		Latency:     cfg.Latency,
		WelcomeMin:  decimal.NewFromFloat(cfg.WelcomeMin),
		WelcomeMax:  decimal.NewFromFloat(cfg.WelcomeMax),
		LoanCeiling: decimal.NewFromFloat(cfg.LoanCeiling),
		LoanRate:    decimal.NewFromFloat(cfg.LoanRate),
		LoanMaxTerm: cfg.LoanMaxTerm,
	})
	a.log.Debug().Str("driver", cfg.StoreDriver).Str("path", cfg.StorePath).Msg("store opened")
	return nil
}

// session 取回持久化的登入狀態。
func (a *app) session(ctx context.Context) (*bank.Session, error) {
	s, err := a.bank.CurrentSession(ctx)
	if errors.Is(err, bank.ErrUnauthenticated) {
		return nil, fmt.Errorf("%w: run `bank login` first", err)
	}
	return s, err
}

// printError 以 kind 前綴輸出領域錯誤，欄位錯誤逐行列出。
func printError(w io.Writer, err error) {
	var e *bank.Error
	if !errors.As(err, &e) {
		fmt.Fprintln(w, "error:", err)
		return
	}
	fmt.Fprintf(w, "error [%s]: %s\n", e.Kind, e.Message)
	fields := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	for _, f := range fields {
		fmt.Fprintf(w, "  %s: %s\n", f, strings.Join(e.Fields[f], ", "))
	}
	if e.Err != nil {
		fmt.Fprintf(w, "  cause: %v\n", e.Err)
	}
}
