// internal/bank/errors.go
//
// 本檔集中定義「領域錯誤（domain errors）」。
// 每個錯誤帶有機器可讀的 Kind 與人類可讀的訊息，由呈現層決定如何顯示。
package bank

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Kind 為錯誤分類。
type Kind string

const (
	KindUnauthenticated     Kind = "unauthenticated"
	KindValidation          Kind = "validation_failed"
	KindInvalidAmount       Kind = "invalid_amount"
	KindInvalidCredentials  Kind = "invalid_credentials"
	KindNotFound            Kind = "not_found"
	KindInsufficientFunds   Kind = "insufficient_funds"
	KindLimitExceeded       Kind = "limit_exceeded"
	KindUnsupportedCurrency Kind = "unsupported_currency"
	KindLoanClosed          Kind = "loan_closed"
	KindStore               Kind = "store_error"
)

// Error 為結構化的領域錯誤。Fields 只在欄位驗證失敗時填入。
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string][]string
	Err     error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	if len(e.Fields) > 0 {
		keys := make([]string, 0, len(e.Fields))
		for k := range e.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s: %s", k, strings.Join(e.Fields[k], ", ")))
		}
		b.WriteString(" (")
		b.WriteString(strings.Join(parts, "; "))
		b.WriteString(")")
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is 讓 errors.Is 以 Kind 與 Message 比對，而非指標相等。
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

// KindOf 取出錯誤分類；非領域錯誤回傳空字串。
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

var (
	// ErrUnauthenticated 代表沒有有效的 session。
	ErrUnauthenticated = &Error{Kind: KindUnauthenticated, Message: "authentication required"}

	// ErrAccountMissing 代表 session 指向的帳戶已不存在。
	ErrAccountMissing = &Error{Kind: KindNotFound, Message: "account missing"}

	// ErrValidation 為欄位驗證失敗的通用比對目標。
	ErrValidation = &Error{Kind: KindValidation, Message: "validation failed"}

	// ErrSameAccount 代表轉帳對象為自己。
	ErrSameAccount = &Error{Kind: KindValidation, Message: "cannot transfer to own account"}

	// ErrInvalidAmount 代表金額無法解析或不大於 0。
	ErrInvalidAmount = &Error{Kind: KindInvalidAmount, Message: "invalid amount"}

	// ErrInvalidCredentials 代表登入帳密不符。
	ErrInvalidCredentials = &Error{Kind: KindInvalidCredentials, Message: "invalid credentials"}

	ErrRecipientNotFound = &Error{Kind: KindNotFound, Message: "recipient not found"}
	ErrBundleNotFound    = &Error{Kind: KindNotFound, Message: "bundle not found"}
	ErrLoanNotFound      = &Error{Kind: KindNotFound, Message: "loan not found"}

	// ErrInsufficientFunds 代表餘額不足。
	ErrInsufficientFunds = &Error{Kind: KindInsufficientFunds, Message: "insufficient funds"}

	// ErrInsufficientFundsIncludingFees 為國際匯款含手續費後餘額不足。
	ErrInsufficientFundsIncludingFees = &Error{Kind: KindInsufficientFunds, Message: "insufficient funds (including fees)"}

	ErrLoanLimitExceeded   = &Error{Kind: KindLimitExceeded, Message: "loan amount exceeds limit"}
	ErrUnsupportedCurrency = &Error{Kind: KindUnsupportedCurrency, Message: "unsupported currency"}

	// ErrLoanClosed 代表貸款已結清，拒絕再次還款扣款。
	ErrLoanClosed = &Error{Kind: KindLoanClosed, Message: "loan already closed"}

	// ErrStore 為 Record Store 讀寫失敗的比對目標。
	ErrStore = &Error{Kind: KindStore, Message: "store failure"}
)

// validationError 收集欄位錯誤。
type validationError map[string][]string

func (v validationError) add(field, msg string) { v[field] = append(v[field], msg) }

// set 以單一訊息取代欄位既有錯誤。
func (v validationError) set(field, msg string) { v[field] = []string{msg} }

func (v validationError) err() error {
	if len(v) == 0 {
		return nil
	}
	return &Error{Kind: KindValidation, Message: ErrValidation.Message, Fields: v}
}

func storeError(op string, err error) error {
	return &Error{Kind: KindStore, Message: ErrStore.Message, Err: fmt.Errorf("%s: %w", op, err)}
}
