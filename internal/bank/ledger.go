// internal/bank/ledger.go
//
// Ledger Engine：所有影響餘額的操作。
// 每個操作都依照相同流程：
//  1. 驗證 session 與輸入 → 2. 檢查對象存在與餘額 → 3. 修改拷貝 → 4. 依序寫回。
//
// 任一檢查失敗皆發生在修改之前，不會留下部分寫入。
package bank

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"minibank/internal/catalog"
	"minibank/internal/money"
)

// 繳費模式。
const (
	ModePrepaid  = "prepaid"
	ModePostpaid = "postpaid"
)

// TransferRequest 為轉帳輸入；Amount 為未經信任的原始字串。
type TransferRequest struct {
	ToAccount string
	Amount    string
}

// TransferResult 回傳雙邊交易紀錄與更新後的帳戶。
type TransferResult struct {
	Debit     Transaction
	Credit    Transaction
	Sender    Account
	Recipient Account
}

// Transfer 從登入者轉帳到指定帳號；雙方餘額在同一臨界區內更新，
// 並分別為轉出方與轉入方各寫入一筆交易。
func (b *Bank) Transfer(ctx context.Context, s *Session, req TransferRequest) (*TransferResult, error) {
	if err := b.wait(ctx); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	accounts, si, err := b.authorize(ctx, s)
	if err != nil {
		return nil, err
	}
	amt, err := money.Parse(req.Amount)
	if err != nil {
		return nil, ErrInvalidAmount
	}
	ri := NewDirectory(accounts).IndexByAccountNumber(strings.TrimSpace(req.ToAccount))
	if ri < 0 {
		return nil, ErrRecipientNotFound
	}
	if ri == si {
		return nil, ErrSameAccount
	}
	if accounts[si].Balance.LessThan(amt) {
		b.logger(ctx).Warn().Int64("user_id", accounts[si].ID).Str("amount", money.Format(amt)).Msg("transfer rejected: insufficient funds")
		return nil, ErrInsufficientFunds
	}

	ids, err := b.nextIDs(ctx, 2)
	if err != nil {
		return nil, err
	}

	sender, recipient := &accounts[si], &accounts[ri]
	sender.Balance = money.Round2(sender.Balance.Sub(amt))
	recipient.Balance = money.Round2(recipient.Balance.Add(amt))

	now := b.now()
	debit := Transaction{
		ID:     ids[0],
		Kind:   KindTransfer,
		Amount: amt,
		Date:   now,
		From:   sender.AccountNumber,
		To:     recipient.AccountNumber,
		Note:   "Transfer to " + recipient.Username,
		UserID: sender.ID,
	}
	credit := debit
	credit.ID = ids[1]
	credit.UserID = recipient.ID
	credit.Note = "Received from " + sender.Username

	if err := b.commit(ctx, s, accounts, si, nil, debit, credit); err != nil {
		return nil, err
	}
	b.logger(ctx).Info().
		Int64("user_id", sender.ID).
		Int64("recipient_id", recipient.ID).
		Str("amount", money.Format(amt)).
		Msg("transfer completed")
	return &TransferResult{Debit: debit, Credit: credit, Sender: sender.Public(), Recipient: recipient.Public()}, nil
}

// BundleRequest 為購買數據方案輸入。
type BundleRequest struct {
	Network  string
	BundleID string
}

// BundleResult 回傳交易、更新後帳戶與購買的方案。
type BundleResult struct {
	Tx      Transaction
	Account Account
	Bundle  catalog.Bundle
}

// BuyBundle 依目錄價格扣款購買數據方案。
func (b *Bank) BuyBundle(ctx context.Context, s *Session, req BundleRequest) (*BundleResult, error) {
	if err := b.wait(ctx); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	accounts, i, err := b.authorize(ctx, s)
	if err != nil {
		return nil, err
	}
	bundle, ok := b.catalog.Bundle(req.Network, req.BundleID)
	if !ok {
		return nil, ErrBundleNotFound
	}
	price := money.Round2(bundle.Price)
	if accounts[i].Balance.LessThan(price) {
		return nil, ErrInsufficientFunds
	}

	ids, err := b.nextIDs(ctx, 1)
	if err != nil {
		return nil, err
	}
	a := &accounts[i]
	a.Balance = money.Round2(a.Balance.Sub(price))
	tx := Transaction{
		ID:       ids[0],
		Kind:     KindDataBundle,
		Amount:   price,
		Date:     b.now(),
		Network:  req.Network,
		BundleID: bundle.ID,
		Note:     "Bought " + bundle.Name,
		UserID:   a.ID,
	}
	if err := b.commit(ctx, s, accounts, i, nil, tx); err != nil {
		return nil, err
	}
	b.logger(ctx).Info().Int64("user_id", a.ID).Str("bundle", bundle.ID).Str("amount", money.Format(price)).Msg("bundle purchased")
	return &BundleResult{Tx: tx, Account: a.Public(), Bundle: bundle}, nil
}

// ElectricityRequest 為電費繳納輸入；Mode 空白時視為 prepaid。
type ElectricityRequest struct {
	MeterNumber string
	Amount      string
	Mode        string
}

// ElectricityResult 回傳交易與更新後帳戶；prepaid 時 Token 為 12 位數儲值碼。
type ElectricityResult struct {
	Tx      Transaction
	Account Account
	Token   string
}

// PayElectricity 扣款繳納電費；prepaid 模式另產生儲值碼附在交易上。
func (b *Bank) PayElectricity(ctx context.Context, s *Session, req ElectricityRequest) (*ElectricityResult, error) {
	if err := b.wait(ctx); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	accounts, i, err := b.authorize(ctx, s)
	if err != nil {
		return nil, err
	}
	amt, err := money.Parse(req.Amount)
	if err != nil {
		return nil, ErrInvalidAmount
	}
	meter := strings.TrimSpace(req.MeterNumber)
	mode := strings.ToLower(strings.TrimSpace(req.Mode))
	if mode == "" {
		mode = ModePrepaid
	}
	verr := validationError{}
	if meter == "" {
		verr.add("meter_number", "required")
	}
	if mode != ModePrepaid && mode != ModePostpaid {
		verr.add("mode", "must be prepaid or postpaid")
	}
	if err := verr.err(); err != nil {
		return nil, err
	}
	if accounts[i].Balance.LessThan(amt) {
		return nil, ErrInsufficientFunds
	}

	ids, err := b.nextIDs(ctx, 1)
	if err != nil {
		return nil, err
	}
	var token string
	if mode == ModePrepaid {
		token = strconv.FormatInt(meterTokenBase+b.rnd.Int64N(meterTokenSpan), 10)
	}
	a := &accounts[i]
	a.Balance = money.Round2(a.Balance.Sub(amt))
	tx := Transaction{
		ID:          ids[0],
		Kind:        KindElectricity,
		Amount:      amt,
		Date:        b.now(),
		MeterNumber: meter,
		PaymentMode: mode,
		Token:       token,
		Note:        fmt.Sprintf("Paid electricity (%s)", mode),
		UserID:      a.ID,
	}
	if err := b.commit(ctx, s, accounts, i, nil, tx); err != nil {
		return nil, err
	}
	b.logger(ctx).Info().Int64("user_id", a.ID).Str("meter", meter).Str("mode", mode).Str("amount", money.Format(amt)).Msg("electricity paid")
	return &ElectricityResult{Tx: tx, Account: a.Public(), Token: token}, nil
}

// LoanRequest 為貸款申請輸入。
type LoanRequest struct {
	Amount     string
	TermMonths int
}

// LoanResult 回傳新貸款、撥款交易與更新後帳戶。
type LoanResult struct {
	Loan    Loan
	Tx      Transaction
	Account Account
}

// LoanQuote 計算貸款的利息、總額與月付金：
//
//	interest = round2(principal × rate% × term/12)
//	total    = principal + interest
//	monthly  = round2(total / term)
func LoanQuote(principal, ratePercent decimal.Decimal, termMonths int) (interest, total, monthly decimal.Decimal) {
	term := decimal.NewFromInt(int64(termMonths))
	interest = money.Round2(principal.Mul(ratePercent).Mul(term).Div(decimal.NewFromInt(1200)))
	total = money.Round2(principal.Add(interest))
	monthly = money.Round2(total.Div(term))
	return interest, total, monthly
}

// loanLimit 為 max(固定上限, 10 × 目前餘額)。
func (b *Bank) loanLimit(balance decimal.Decimal) decimal.Decimal {
	return money.Max(b.loanCeiling, balance.Mul(decimal.NewFromInt(10)))
}

// RequestLoan 核准並撥款：建立 active 貸款，本金入帳。
func (b *Bank) RequestLoan(ctx context.Context, s *Session, req LoanRequest) (*LoanResult, error) {
	if err := b.wait(ctx); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	accounts, i, err := b.authorize(ctx, s)
	if err != nil {
		return nil, err
	}
	principal, err := money.Parse(req.Amount)
	if err != nil {
		return nil, ErrInvalidAmount
	}
	if req.TermMonths <= 0 || req.TermMonths > b.loanMaxTerm {
		verr := validationError{}
		verr.add("term_months", fmt.Sprintf("must be between 1 and %d", b.loanMaxTerm))
		return nil, verr.err()
	}
	if principal.GreaterThan(b.loanLimit(accounts[i].Balance)) {
		b.logger(ctx).Warn().Int64("user_id", accounts[i].ID).Str("amount", money.Format(principal)).Msg("loan rejected: limit exceeded")
		return nil, ErrLoanLimitExceeded
	}
	loans, err := b.loadLoans(ctx)
	if err != nil {
		return nil, err
	}

	ids, err := b.nextIDs(ctx, 2)
	if err != nil {
		return nil, err
	}
	now := b.now()
	a := &accounts[i]
	interest, total, monthly := LoanQuote(principal, b.loanRate, req.TermMonths)
	loan := Loan{
		ID:          ids[0],
		UserID:      a.ID,
		Principal:   principal,
		Interest:    interest,
		Total:       total,
		TermMonths:  req.TermMonths,
		Monthly:     monthly,
		Outstanding: total,
		Status:      LoanActive,
		CreatedAt:   now,
	}
	loans = append(loans, loan)
	a.Balance = money.Round2(a.Balance.Add(principal))

	tx := Transaction{
		ID:     ids[1],
		Kind:   KindLoanCredit,
		Amount: principal,
		Date:   now,
		Note:   fmt.Sprintf("Loan disbursed (%d)", loan.ID),
		UserID: a.ID,
		LoanID: loan.ID,
	}
	if err := b.commit(ctx, s, accounts, i, loans, tx); err != nil {
		return nil, err
	}
	b.logger(ctx).Info().
		Int64("user_id", a.ID).
		Int64("loan_id", loan.ID).
		Str("principal", money.Format(principal)).
		Str("total", money.Format(total)).
		Int("term_months", req.TermMonths).
		Msg("loan disbursed")
	return &LoanResult{Loan: loan, Tx: tx, Account: a.Public()}, nil
}

// RepayRequest 為還款輸入。
type RepayRequest struct {
	LoanID int64
	Amount string
}

// RepayResult 回傳更新後的貸款、還款交易與帳戶。
type RepayResult struct {
	Loan    Loan
	Tx      Transaction
	Account Account
}

// RepayLoan 扣款並降低未償餘額（最低為 0），歸零時結清。
// 已結清的貸款拒絕再扣款。
func (b *Bank) RepayLoan(ctx context.Context, s *Session, req RepayRequest) (*RepayResult, error) {
	if err := b.wait(ctx); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	accounts, i, err := b.authorize(ctx, s)
	if err != nil {
		return nil, err
	}
	amt, err := money.Parse(req.Amount)
	if err != nil {
		return nil, ErrInvalidAmount
	}
	loans, err := b.loadLoans(ctx)
	if err != nil {
		return nil, err
	}
	li := -1
	for k, l := range loans {
		if l.ID == req.LoanID && l.UserID == accounts[i].ID {
			li = k
			break
		}
	}
	if li < 0 {
		return nil, ErrLoanNotFound
	}
	if loans[li].Status == LoanClosed {
		return nil, ErrLoanClosed
	}
	if accounts[i].Balance.LessThan(amt) {
		return nil, ErrInsufficientFunds
	}

	ids, err := b.nextIDs(ctx, 1)
	if err != nil {
		return nil, err
	}
	a, loan := &accounts[i], &loans[li]
	a.Balance = money.Round2(a.Balance.Sub(amt))
	loan.Outstanding = money.Round2(money.Max(decimal.Zero, loan.Outstanding.Sub(amt)))
	if !loan.Outstanding.IsPositive() {
		loan.Outstanding = decimal.Zero
		loan.Status = LoanClosed
	}
	tx := Transaction{
		ID:     ids[0],
		Kind:   KindLoanRepayment,
		Amount: amt,
		Date:   b.now(),
		Note:   "Loan repayment",
		UserID: a.ID,
		LoanID: loan.ID,
	}
	if err := b.commit(ctx, s, accounts, i, loans, tx); err != nil {
		return nil, err
	}
	b.logger(ctx).Info().
		Int64("user_id", a.ID).
		Int64("loan_id", loan.ID).
		Str("amount", money.Format(amt)).
		Str("outstanding", money.Format(loan.Outstanding)).
		Str("status", string(loan.Status)).
		Msg("loan repaid")
	return &RepayResult{Loan: *loan, Tx: tx, Account: a.Public()}, nil
}

// IntlRequest 為國際匯款輸入；Amount 以外幣計價。
type IntlRequest struct {
	ToName   string
	ToBank   string
	Currency string
	Amount   string
}

// IntlResult 回傳交易、帳戶與換算明細（皆為本地貨幣）。
type IntlResult struct {
	Tx        Transaction
	Account   Account
	Converted decimal.Decimal
	Fee       decimal.Decimal
	TotalNGN  decimal.Decimal
}

// IntlQuote 依匯率計算換算金額、手續費與總扣款：
//
//	converted = amount × rate
//	fee       = feePercent% × converted
//	total     = round2(converted + fee)
//
// converted 與 fee 以兩位小數回傳供顯示。
func IntlQuote(amount decimal.Decimal, r catalog.Rate) (converted, fee, total decimal.Decimal) {
	c := amount.Mul(r.Rate)
	f := money.Percent(c, r.FeePercent)
	return money.Round2(c), money.Round2(f), money.Round2(c.Add(f))
}

// InternationalTransfer 以外幣金額換算本地貨幣並加計手續費後扣款。
// 手續費不入任何帳戶，視為離開本系統。
func (b *Bank) InternationalTransfer(ctx context.Context, s *Session, req IntlRequest) (*IntlResult, error) {
	if err := b.wait(ctx); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	accounts, i, err := b.authorize(ctx, s)
	if err != nil {
		return nil, err
	}
	amt, err := money.Parse(req.Amount)
	if err != nil {
		return nil, ErrInvalidAmount
	}
	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	rate, ok := b.catalog.Rate(currency)
	if !ok {
		return nil, ErrUnsupportedCurrency
	}
	toName := strings.TrimSpace(req.ToName)
	if toName == "" {
		verr := validationError{}
		verr.add("to_name", "required")
		return nil, verr.err()
	}
	converted, fee, total := IntlQuote(amt, rate)
	if accounts[i].Balance.LessThan(total) {
		b.logger(ctx).Warn().Int64("user_id", accounts[i].ID).Str("total", money.Format(total)).Msg("intl transfer rejected: insufficient funds")
		return nil, ErrInsufficientFundsIncludingFees
	}

	ids, err := b.nextIDs(ctx, 1)
	if err != nil {
		return nil, err
	}
	a := &accounts[i]
	a.Balance = money.Round2(a.Balance.Sub(total))
	tx := Transaction{
		ID:           ids[0],
		Kind:         KindIntlTransfer,
		Amount:       total,
		Date:         b.now(),
		Currency:     currency,
		RemoteAmount: &amt,
		Fee:          &fee,
		Converted:    &converted,
		ToName:       toName,
		ToBank:       strings.TrimSpace(req.ToBank),
		Note:         fmt.Sprintf("Intl transfer to %s (%s)", toName, currency),
		UserID:       a.ID,
	}
	if err := b.commit(ctx, s, accounts, i, nil, tx); err != nil {
		return nil, err
	}
	b.logger(ctx).Info().
		Int64("user_id", a.ID).
		Str("currency", currency).
		Str("remote_amount", money.Format(amt)).
		Str("fee", money.Format(fee)).
		Str("total", money.Format(total)).
		Msg("intl transfer completed")
	return &IntlResult{Tx: tx, Account: a.Public(), Converted: converted, Fee: fee, TotalNGN: total}, nil
}

// nextIDs 由 Record Store 取得 n 個遞增 ID。
func (b *Bank) nextIDs(ctx context.Context, n int) ([]int64, error) {
	ids := make([]int64, n)
	for k := range ids {
		id, err := b.store.NextID(ctx)
		if err != nil {
			return nil, storeError("next id", err)
		}
		ids[k] = id
	}
	return ids, nil
}
