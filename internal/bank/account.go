// internal/bank/account.go
//
// Package bank 定義核心領域模型與業務規則。
// 本檔定義 Account、Transaction、Loan、Session 等結構，不含任何儲存細節。
package bank

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account 代表一個銀行帳戶。Password 僅為示範用途，原樣保存。
type Account struct {
	ID            int64           `json:"id"`
	Username      string          `json:"username"`
	Email         string          `json:"email"`
	Password      string          `json:"password,omitempty"`
	AccountNumber string          `json:"account_number"`
	Balance       decimal.Decimal `json:"balance"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Public 回傳去除憑證的值拷貝，用於 session 與 profile。
func (a Account) Public() Account {
	a.Password = ""
	return a
}

// TxKind 為交易種類。
type TxKind string

const (
	KindCredit        TxKind = "credit"
	KindTransfer      TxKind = "transfer"
	KindDataBundle    TxKind = "data_bundle"
	KindElectricity   TxKind = "electricity"
	KindLoanCredit    TxKind = "loan_credit"
	KindLoanRepayment TxKind = "loan_repayment"
	KindIntlTransfer  TxKind = "intl_transfer"
)

// SystemParty 為系統入帳（例如開戶禮金）的來源。
const SystemParty = "system"

// Transaction 為不可變的交易紀錄；新紀錄插在日誌最前面。
// 依種類不同，只會填入部分欄位。
type Transaction struct {
	ID     int64           `json:"id"`
	Kind   TxKind          `json:"type"`
	Amount decimal.Decimal `json:"amount"`
	Date   time.Time       `json:"date"`
	From   string          `json:"from,omitempty"`
	To     string          `json:"to,omitempty"`
	Note   string          `json:"note"`
	UserID int64           `json:"user_id"`

	Network  string `json:"network,omitempty"`
	BundleID string `json:"bundle_id,omitempty"`

	MeterNumber string `json:"meter_number,omitempty"`
	PaymentMode string `json:"payment_mode,omitempty"`
	Token       string `json:"token,omitempty"`

	LoanID int64 `json:"loan_id,omitempty"`

	Currency     string           `json:"currency,omitempty"`
	RemoteAmount *decimal.Decimal `json:"remote_amount,omitempty"`
	Fee          *decimal.Decimal `json:"fee,omitempty"`
	Converted    *decimal.Decimal `json:"converted,omitempty"`
	ToName       string           `json:"to_name,omitempty"`
	ToBank       string           `json:"to_bank,omitempty"`
}

// Touches 判斷交易是否與該帳戶相關：由其擁有、由其轉出或轉入。
func (t Transaction) Touches(a Account) bool {
	return t.UserID == a.ID || t.From == a.AccountNumber || t.To == a.AccountNumber
}

// LoanStatus 為貸款狀態。
type LoanStatus string

const (
	LoanActive LoanStatus = "active"
	LoanClosed LoanStatus = "closed"
)

// Loan 為一筆貸款。Outstanding 只減不增，歸零時 Status 轉為 closed。
type Loan struct {
	ID          int64           `json:"id"`
	UserID      int64           `json:"user_id"`
	Principal   decimal.Decimal `json:"principal"`
	Interest    decimal.Decimal `json:"interest"`
	Total       decimal.Decimal `json:"total"`
	TermMonths  int             `json:"term_months"`
	Monthly     decimal.Decimal `json:"monthly"`
	Outstanding decimal.Decimal `json:"outstanding"`
	Status      LoanStatus      `json:"status"`
	CreatedAt   time.Time       `json:"created"`
}

// Session 為目前登入帳戶的快照與不透明 token。
// 權威資料在帳戶集合；每次變更餘額後都會重新同步此快照。
type Session struct {
	Token    string    `json:"token"`
	Account  Account   `json:"user"`
	IssuedAt time.Time `json:"issued_at"`
}

// Profile 為呈現層使用的帳戶總覽。
type Profile struct {
	Account      Account       `json:"user"`
	Transactions []Transaction `json:"transactions"`
	Loans        []Loan        `json:"loans"`
}
