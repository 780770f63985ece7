// internal/bank/bank.go
//
// Package bank 定義核心商業邏輯：開戶、登入、轉帳、繳費、貸款與國際匯款。
// 所有「讀取整個集合 → 修改拷貝 → 整批寫回」的流程都在單一互斥鎖內完成，
// 多個呼叫端並發時不會發生後寫覆蓋前寫的資料遺失。
// 金額一律使用 decimal，寫入前經過 money.Round2。
package bank

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"minibank/internal/catalog"
	"minibank/internal/logger"
	"minibank/internal/money"
	"minibank/internal/storage"
)

// Options 為 Bank 的可調參數；零值欄位由 New 補上預設值。
type Options struct {
	Catalog *catalog.Catalog
	Logger  *zerolog.Logger

	// Rand 與 Now 可注入固定來源，讓測試結果可重現。
	Rand *rand.Rand
	Now  func() time.Time

	// Latency 為每個操作前的模擬延遲。
	Latency time.Duration

	WelcomeMin  decimal.Decimal
	WelcomeMax  decimal.Decimal
	LoanCeiling decimal.Decimal
	LoanRate    decimal.Decimal // 年利率（百分比）
	LoanMaxTerm int             // 最長期數（月）
}

// 預設值。
var (
	DefaultWelcomeMin  = decimal.NewFromInt(1000)
	DefaultWelcomeMax  = decimal.NewFromInt(16000)
	DefaultLoanCeiling = decimal.NewFromInt(500000)
	DefaultLoanRate    = decimal.NewFromInt(12)
)

const (
	DefaultLoanMaxTerm = 60

	// RecentLimit 為 profile 顯示的最近交易筆數。
	RecentLimit = 20

	minUsernameLen = 3
	minPasswordLen = 6

	accountNumberBase  = 1_000_000_000
	accountNumberSpan  = 9_000_000_000
	accountNumberTries = 64

	meterTokenBase = 100_000_000_000
	meterTokenSpan = 900_000_000_000
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Bank 為聚合根：持有 Record Store 與靜態目錄。
// mu 序列化所有操作，確保跨集合的寫回不會交錯。
type Bank struct {
	mu      sync.Mutex
	store   storage.Store
	catalog *catalog.Catalog
	log     zerolog.Logger
	rnd     *rand.Rand
	now     func() time.Time
	latency time.Duration

	welcomeMin  decimal.Decimal
	welcomeMax  decimal.Decimal
	loanCeiling decimal.Decimal
	loanRate    decimal.Decimal
	loanMaxTerm int
}

// New 建立 Bank。store 由呼叫端擁有並負責關閉。
func New(store storage.Store, opts Options) *Bank {
	b := &Bank{
		store:       store,
		catalog:     opts.Catalog,
		rnd:         opts.Rand,
		now:         opts.Now,
		latency:     opts.Latency,
		welcomeMin:  opts.WelcomeMin,
		welcomeMax:  opts.WelcomeMax,
		loanCeiling: opts.LoanCeiling,
		loanRate:    opts.LoanRate,
		loanMaxTerm: opts.LoanMaxTerm,
	}
	if opts.Logger != nil {
		b.log = *opts.Logger
	} else {
		b.log = logger.Nop()
	}
	if b.catalog == nil {
		b.catalog = catalog.Default()
	}
	if b.rnd == nil {
		b.rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if b.now == nil {
		b.now = time.Now
	}
	if b.welcomeMin.IsZero() && b.welcomeMax.IsZero() {
		b.welcomeMin, b.welcomeMax = DefaultWelcomeMin, DefaultWelcomeMax
	}
	if !b.loanCeiling.IsPositive() {
		b.loanCeiling = DefaultLoanCeiling
	}
	if b.loanRate.IsZero() {
		b.loanRate = DefaultLoanRate
	}
	if b.loanMaxTerm <= 0 {
		b.loanMaxTerm = DefaultLoanMaxTerm
	}
	return b
}

func (b *Bank) logger(ctx context.Context) *zerolog.Logger {
	l := logger.FromContext(ctx, b.log)
	return &l
}

// wait 模擬網路延遲；ctx 取消時提早返回。
func (b *Bank) wait(ctx context.Context) error {
	if b.latency <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(b.latency)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// authorize 驗證 session 是否為目前持久化的 active session，
// 並回傳帳戶集合與登入者索引。登入者以持久化的 session 為準，
// 不採信呼叫端快照中的帳戶欄位。
func (b *Bank) authorize(ctx context.Context, s *Session) ([]Account, int, error) {
	if s == nil || s.Token == "" {
		return nil, -1, ErrUnauthenticated
	}
	active, err := b.loadSession(ctx)
	if err != nil {
		return nil, -1, err
	}
	if active == nil || active.Token != s.Token {
		return nil, -1, ErrUnauthenticated
	}
	accounts, err := b.loadAccounts(ctx)
	if err != nil {
		return nil, -1, err
	}
	i := NewDirectory(accounts).IndexByID(active.Account.ID)
	if i < 0 {
		return nil, -1, ErrAccountMissing
	}
	return accounts, i, nil
}

// newAccountNumber 產生 10 位數帳號，與既有帳號重複時重試。
func (b *Bank) newAccountNumber(dir Directory) (string, error) {
	for i := 0; i < accountNumberTries; i++ {
		n := strconv.FormatInt(accountNumberBase+b.rnd.Int64N(accountNumberSpan), 10)
		if dir.IndexByAccountNumber(n) < 0 {
			return n, nil
		}
	}
	return "", errors.New("bank: could not allocate a unique account number")
}

// welcomeBalance 在 [welcomeMin, welcomeMax) 之間隨機產生開戶餘額。
func (b *Bank) welcomeBalance() decimal.Decimal {
	span := b.welcomeMax.Sub(b.welcomeMin)
	if !span.IsPositive() {
		return money.Round2(b.welcomeMin)
	}
	return money.Round2(b.welcomeMin.Add(span.Mul(decimal.NewFromFloat(b.rnd.Float64()))))
}

func (b *Bank) issueSession(ctx context.Context, a Account) (*Session, error) {
	s := &Session{Token: uuid.NewString(), Account: a.Public(), IssuedAt: b.now()}
	if err := b.saveSession(ctx, *s); err != nil {
		return nil, err
	}
	return s, nil
}

// RegisterRequest 為開戶輸入。
type RegisterRequest struct {
	Username string
	Email    string
	Password string
}

// Register 驗證輸入、建立帳戶、入帳開戶禮金並發出新 session。
// 欄位錯誤會一次收集後以 ErrValidation 類別回傳。
func (b *Bank) Register(ctx context.Context, req RegisterRequest) (*Session, error) {
	if err := b.wait(ctx); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	accounts, err := b.loadAccounts(ctx)
	if err != nil {
		return nil, err
	}
	dir := NewDirectory(accounts)

	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(req.Email)

	verr := validationError{}
	if len([]rune(username)) < minUsernameLen {
		verr.add("username", "at least 3 characters")
	}
	if !emailPattern.MatchString(email) {
		verr.add("email", "invalid email")
	}
	if len(req.Password) < minPasswordLen {
		verr.add("password", "at least 6 characters")
	}
	if username != "" && dir.IndexByUsername(username) >= 0 {
		verr.set("username", "username exists")
	}
	if email != "" && dir.IndexByEmail(email) >= 0 {
		verr.set("email", "email exists")
	}
	if err := verr.err(); err != nil {
		b.logger(ctx).Warn().Err(err).Str("username", username).Msg("registration rejected")
		return nil, err
	}

	number, err := b.newAccountNumber(dir)
	if err != nil {
		return nil, err
	}
	accountID, err := b.store.NextID(ctx)
	if err != nil {
		return nil, storeError("next id", err)
	}
	txID, err := b.store.NextID(ctx)
	if err != nil {
		return nil, storeError("next id", err)
	}

	now := b.now()
	a := Account{
		ID:            accountID,
		Username:      username,
		Email:         email,
		Password:      req.Password,
		AccountNumber: number,
		Balance:       b.welcomeBalance(),
		CreatedAt:     now,
	}
	accounts = append(accounts, a)
	if err := saveCollection(ctx, b.store, storage.Accounts, accounts); err != nil {
		return nil, err
	}
	welcome := Transaction{
		ID:     txID,
		Kind:   KindCredit,
		Amount: a.Balance,
		Date:   now,
		From:   SystemParty,
		To:     a.AccountNumber,
		Note:   "Welcome balance",
		UserID: a.ID,
	}
	if err := b.prependTransactions(ctx, welcome); err != nil {
		return nil, err
	}

	s, err := b.issueSession(ctx, a)
	if err != nil {
		return nil, err
	}
	b.logger(ctx).Info().
		Int64("user_id", a.ID).
		Str("account_number", a.AccountNumber).
		Str("balance", money.Format(a.Balance)).
		Msg("account registered")
	return s, nil
}

// Login 以不分大小寫的帳號與完全相同的密碼驗證，成功後發出新 session。
func (b *Bank) Login(ctx context.Context, username, password string) (*Session, error) {
	if err := b.wait(ctx); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	accounts, err := b.loadAccounts(ctx)
	if err != nil {
		return nil, err
	}
	i := NewDirectory(accounts).IndexByUsername(username)
	if i < 0 || accounts[i].Password != password {
		b.logger(ctx).Warn().Str("username", username).Msg("login rejected")
		return nil, ErrInvalidCredentials
	}
	s, err := b.issueSession(ctx, accounts[i])
	if err != nil {
		return nil, err
	}
	b.logger(ctx).Info().Int64("user_id", accounts[i].ID).Msg("logged in")
	return s, nil
}

// Logout 清除持久化的 session；傳入的 session 之後不再有效。
func (b *Bank) Logout(ctx context.Context, s *Session) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.store.Delete(ctx, storage.Session); err != nil {
		return storeError("delete session", err)
	}
	if s != nil {
		s.Token = ""
	}
	return nil
}

// CurrentSession 回傳持久化的 active session，供重新啟動的呈現層恢復登入狀態。
func (b *Bank) CurrentSession(ctx context.Context) (*Session, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	s, err := b.loadSession(ctx)
	if err != nil {
		return nil, err
	}
	if s == nil || s.Token == "" {
		return nil, ErrUnauthenticated
	}
	return s, nil
}

// IsAuthenticated 回報是否存在 active session。
func (b *Bank) IsAuthenticated(ctx context.Context) bool {
	_, err := b.CurrentSession(ctx)
	return err == nil
}

// Reset 清空所有集合（開發用）。
func (b *Bank) Reset(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, c := range storage.All {
		if err := b.store.Delete(ctx, c); err != nil {
			return storeError(fmt.Sprintf("reset %s", c), err)
		}
	}
	b.logger(ctx).Info().Msg("all collections reset")
	return nil
}

// Directory 回傳目前帳戶集合的唯讀視圖。
func (b *Bank) Directory(ctx context.Context) (Directory, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	accounts, err := b.loadAccounts(ctx)
	if err != nil {
		return Directory{}, err
	}
	return NewDirectory(accounts), nil
}

// AvailableBundles 回傳數據方案目錄的拷貝。
func (b *Bank) AvailableBundles() map[string][]catalog.Bundle {
	return b.catalog.BundlesCopy()
}

// FXRates 回傳匯率表的拷貝。
func (b *Bank) FXRates() map[string]catalog.Rate {
	return b.catalog.RatesCopy()
}
