// internal/bank/bank_test.go
//
// 開戶、登入、session 與持久化相關測試。
package bank

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minibank/internal/logger"
	"minibank/internal/storage"
)

// TestRegister 驗證開戶：10 位數帳號、開戶禮金、credit 交易與 session。
func TestRegister(t *testing.T) {
	b := newTestBank(t)
	ctx := context.Background()

	s := register(t, b, "alice")
	require.NotEmpty(t, s.Token)
	assert.Empty(t, s.Account.Password, "session snapshot must not carry the credential")
	assert.Regexp(t, regexp.MustCompile(`^\d{10}$`), s.Account.AccountNumber)
	requireAmount(t, "1000.00", s.Account.Balance)
	assert.Equal(t, fixedNow, s.Account.CreatedAt)

	p, err := b.Profile(ctx, s)
	require.NoError(t, err)
	require.Len(t, p.Transactions, 1)
	welcome := p.Transactions[0]
	assert.Equal(t, KindCredit, welcome.Kind)
	assert.Equal(t, "Welcome balance", welcome.Note)
	assert.Equal(t, SystemParty, welcome.From)
	assert.Equal(t, s.Account.AccountNumber, welcome.To)
	assert.Equal(t, s.Account.ID, welcome.UserID)
	requireAmount(t, "1000.00", welcome.Amount)

	assert.True(t, b.IsAuthenticated(ctx))
}

// TestRegisterValidation 驗證欄位錯誤一次收集，且不寫入任何資料。
func TestRegisterValidation(t *testing.T) {
	b := newTestBank(t)
	ctx := context.Background()

	_, err := b.Register(ctx, RegisterRequest{Username: " ab ", Email: "not-an-email", Password: "12345"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)
	var e *Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, KindValidation, e.Kind)
	assert.Contains(t, e.Fields, "username")
	assert.Contains(t, e.Fields, "email")
	assert.Contains(t, e.Fields, "password")

	for _, doc := range dump(t, b) {
		assert.Empty(t, doc)
	}

	register(t, b, "alice")
	_, err = b.Register(ctx, RegisterRequest{Username: "ALICE", Email: "Alice@Example.com", Password: "another-secret"})
	require.True(t, errors.As(err, &e))
	assert.Equal(t, []string{"username exists"}, e.Fields["username"])
	assert.Equal(t, []string{"email exists"}, e.Fields["email"])
}

// TestWelcomeBalanceRange 驗證預設範圍內的隨機開戶餘額皆為兩位小數。
func TestWelcomeBalanceRange(t *testing.T) {
	opts := testOptions()
	opts.WelcomeMin, opts.WelcomeMax = decimal.Zero, decimal.Zero
	b := New(storage.NewMemStore(), opts)

	for _, name := range []string{"amy", "ben", "cat", "dan", "eve"} {
		s := register(t, b, name)
		bal := s.Account.Balance
		assert.True(t, bal.GreaterThanOrEqual(DefaultWelcomeMin), "balance %s", bal)
		assert.True(t, bal.LessThanOrEqual(DefaultWelcomeMax), "balance %s", bal)
		assert.True(t, bal.Equal(bal.Round(2)))
	}
}

// TestAccountNumbersUnique 驗證多次開戶的帳號皆不重複。
func TestAccountNumbersUnique(t *testing.T) {
	b := newTestBank(t)
	seen := map[string]bool{}
	for _, name := range []string{"amy", "ben", "cat", "dan", "eve", "fay", "gus", "hal"} {
		s := register(t, b, name)
		assert.False(t, seen[s.Account.AccountNumber])
		seen[s.Account.AccountNumber] = true
	}
	dir, err := b.Directory(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 8, dir.Len())
}

// TestLogin 驗證帳號不分大小寫、密碼完全比對。
func TestLogin(t *testing.T) {
	b := newTestBank(t)
	ctx := context.Background()
	first := register(t, b, "alice")

	s, err := b.Login(ctx, "  ALICE ", "secret-alice")
	require.NoError(t, err)
	assert.NotEqual(t, first.Token, s.Token, "login issues a new token")
	assert.Equal(t, first.Account.ID, s.Account.ID)

	_, err = b.Login(ctx, "alice", "SECRET-alice")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = b.Login(ctx, "nobody", "whatever")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

// TestSessionLifecycle 驗證只有目前的 active session 可以操作。
func TestSessionLifecycle(t *testing.T) {
	b := newTestBank(t)
	ctx := context.Background()

	alice := register(t, b, "alice")
	bob := register(t, b, "bob")

	// bob 登入後 alice 的 session 失效
	_, err := b.Profile(ctx, alice)
	assert.ErrorIs(t, err, ErrUnauthenticated)
	_, err = b.Profile(ctx, bob)
	require.NoError(t, err)

	cur, err := b.CurrentSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, bob.Token, cur.Token)

	require.NoError(t, b.Logout(ctx, bob))
	assert.Empty(t, bob.Token)
	assert.False(t, b.IsAuthenticated(ctx))
	_, err = b.CurrentSession(ctx)
	assert.ErrorIs(t, err, ErrUnauthenticated)
	_, err = b.Profile(ctx, cur)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

// TestOperationsRequireSession 驗證每個操作在沒有 session 時皆回傳 ErrUnauthenticated。
func TestOperationsRequireSession(t *testing.T) {
	b := newTestBank(t)
	ctx := context.Background()
	register(t, b, "alice")

	for _, s := range []*Session{nil, {}, {Token: "forged"}} {
		_, err := b.Transfer(ctx, s, TransferRequest{ToAccount: "1234567890", Amount: "1"})
		assert.ErrorIs(t, err, ErrUnauthenticated)
		_, err = b.BuyBundle(ctx, s, BundleRequest{Network: "MTN", BundleID: "mtn-100"})
		assert.ErrorIs(t, err, ErrUnauthenticated)
		_, err = b.PayElectricity(ctx, s, ElectricityRequest{MeterNumber: "1", Amount: "1"})
		assert.ErrorIs(t, err, ErrUnauthenticated)
		_, err = b.RequestLoan(ctx, s, LoanRequest{Amount: "1", TermMonths: 3})
		assert.ErrorIs(t, err, ErrUnauthenticated)
		_, err = b.RepayLoan(ctx, s, RepayRequest{LoanID: 1, Amount: "1"})
		assert.ErrorIs(t, err, ErrUnauthenticated)
		_, err = b.InternationalTransfer(ctx, s, IntlRequest{ToName: "x", Currency: "USD", Amount: "1"})
		assert.ErrorIs(t, err, ErrUnauthenticated)
		_, err = b.Profile(ctx, s)
		assert.ErrorIs(t, err, ErrUnauthenticated)
		assert.Equal(t, KindUnauthenticated, KindOf(err))
	}
}

// TestAccountMissing 驗證 session 指向已不存在的帳戶時回傳 ErrAccountMissing。
func TestAccountMissing(t *testing.T) {
	b := newTestBank(t)
	ctx := context.Background()
	s := register(t, b, "alice")

	require.NoError(t, b.store.Delete(ctx, storage.Accounts))
	_, err := b.Profile(ctx, s)
	assert.ErrorIs(t, err, ErrAccountMissing)
	assert.Equal(t, KindNotFound, KindOf(err))
}

// TestCorruptCollectionReadsAsEmpty 驗證無法解碼的集合視為空集合。
func TestCorruptCollectionReadsAsEmpty(t *testing.T) {
	b := newTestBank(t)
	ctx := context.Background()
	register(t, b, "alice")

	require.NoError(t, b.store.Save(ctx, storage.Accounts, []byte("{garbage")))
	_, err := b.Login(ctx, "alice", "secret-alice")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	s := register(t, b, "alice")
	assert.NotEmpty(t, s.Token)
}

// TestStoreFailuresSurface 驗證後端 I/O 錯誤以 ErrStore 回傳並保留原始錯誤。
func TestStoreFailuresSurface(t *testing.T) {
	fs := &flakyStore{Store: storage.NewMemStore()}
	b := New(fs, testOptions())
	ctx := context.Background()
	s := register(t, b, "alice")

	fs.failSave = true
	_, err := b.BuyBundle(ctx, s, BundleRequest{Network: "MTN", BundleID: "mtn-100"})
	assert.ErrorIs(t, err, ErrStore)
	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, KindStore, KindOf(err))

	fs.failSave, fs.failLoad = false, true
	_, err = b.Login(ctx, "alice", "secret-alice")
	assert.ErrorIs(t, err, ErrStore)
}

// TestLatencyHonoursContext 驗證模擬延遲可被 context 取消。
func TestLatencyHonoursContext(t *testing.T) {
	opts := testOptions()
	opts.Latency = time.Hour
	b := New(storage.NewMemStore(), opts)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := b.Register(ctx, RegisterRequest{Username: "alice", Email: "a@b.co", Password: "secret"})
	assert.ErrorIs(t, err, context.Canceled)

	b.latency = time.Millisecond
	_, err = b.Register(context.Background(), RegisterRequest{Username: "alice", Email: "a@b.co", Password: "secret"})
	assert.NoError(t, err)
}

// TestPersistAcrossReopen 驗證 JSON 快照後端重新開啟後可恢復 session 與資料。
func TestPersistAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data.json")

	st, err := storage.NewJSONStore(path)
	require.NoError(t, err)
	b := New(st, testOptions())
	register(t, b, "bob")
	alice := register(t, b, "alice")
	bobNumber := func() string {
		dir, err := b.Directory(ctx)
		require.NoError(t, err)
		bob, ok := dir.ByUsername("bob")
		require.True(t, ok)
		return bob.AccountNumber
	}()
	_, err = b.Transfer(ctx, alice, TransferRequest{ToAccount: bobNumber, Amount: "100"})
	require.NoError(t, err)

	st2, err := storage.NewJSONStore(path)
	require.NoError(t, err)
	b2 := New(st2, testOptions())

	s, err := b2.CurrentSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, alice.Token, s.Token)
	requireAmount(t, "900.00", s.Account.Balance)

	p, err := b2.Profile(ctx, s)
	require.NoError(t, err)
	requireAmount(t, "900.00", p.Account.Balance)
	assert.Len(t, p.Transactions, 3, "welcome, debit and the recipient's credit record")
}

// TestReset 驗證重設後所有集合清空。
func TestReset(t *testing.T) {
	b := newTestBank(t)
	ctx := context.Background()
	register(t, b, "alice")

	require.NoError(t, b.Reset(ctx))
	for c, doc := range dump(t, b) {
		assert.Empty(t, doc, "collection %s", c)
	}
	assert.False(t, b.IsAuthenticated(ctx))
}

// TestCatalogAccessorsReturnCopies 驗證靜態目錄存取器回傳拷貝。
func TestCatalogAccessorsReturnCopies(t *testing.T) {
	b := newTestBank(t)

	bundles := b.AvailableBundles()
	require.Contains(t, bundles, "MTN")
	bundles["MTN"] = nil
	assert.Len(t, b.AvailableBundles()["MTN"], 3)

	rates := b.FXRates()
	require.Contains(t, rates, "USD")
	delete(rates, "USD")
	assert.Contains(t, b.FXRates(), "USD")
}

// TestActorComesFromActiveSession 驗證登入者以持久化 session 為準，而非呼叫端快照的帳戶。
func TestActorComesFromActiveSession(t *testing.T) {
	b := newTestBank(t)
	ctx := context.Background()
	alice := register(t, b, "alice")
	bob := register(t, b, "bob")

	forged := &Session{Token: bob.Token, Account: alice.Account}
	res, err := b.Transfer(ctx, forged, TransferRequest{ToAccount: alice.Account.AccountNumber, Amount: "100"})
	require.NoError(t, err)

	assert.Equal(t, bob.Account.ID, res.Debit.UserID)
	requireAmount(t, "900.00", balanceOf(t, b, bob.Account.ID))
	requireAmount(t, "1100.00", balanceOf(t, b, alice.Account.ID))
	assert.Equal(t, bob.Account.ID, forged.Account.ID, "snapshot resynced to the active account")

	p, err := b.Profile(ctx, &Session{Token: bob.Token, Account: alice.Account})
	require.NoError(t, err)
	assert.Equal(t, "bob", p.Account.Username)
}

// TestOperationsLogToContextLogger 驗證操作結果寫入 context 中的 logger。
func TestOperationsLogToContextLogger(t *testing.T) {
	b := newTestBank(t)
	buf := &bytes.Buffer{}
	ctx := logger.WithContext(context.Background(), logger.NewWithWriter(buf))

	s := register(t, b, "alice")
	_, err := b.BuyBundle(ctx, s, BundleRequest{Network: "MTN", BundleID: "mtn-100"})
	require.NoError(t, err)
	_, err = b.BuyBundle(ctx, s, BundleRequest{Network: "MTN", BundleID: "mtn-1500"})
	require.ErrorIs(t, err, ErrInsufficientFunds)
	_, err = b.Login(ctx, "alice", "wrong-password")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	out := buf.String()
	assert.Contains(t, out, `"message":"bundle purchased"`)
	assert.Contains(t, out, `"bundle":"mtn-100"`)
	assert.Contains(t, out, `"message":"login rejected"`)
}
