// internal/money/money.go
//
// Package money 提供貨幣金額的解析、兩位小數四捨五入與格式化。
// 所有寫入儲存層或回傳給呼叫端的金額都必須先經過 Round2。
package money

import (
	"errors"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Places 為金額保留的小數位數。
const Places = 2

// ErrInvalidAmount 代表金額無法解析、非有限值或不大於 0。
var ErrInvalidAmount = errors.New("invalid amount")

// MaxInputLen 為可接受的金額字串長度上限。
const MaxInputLen = 32

// amountPattern 只接受一般十進位表示；科學記號會讓 Round2 產生極大的整數運算。
var amountPattern = regexp.MustCompile(`^\d+(\.\d+)?$`)

// Zero 為 0.00。
var Zero = decimal.Zero

// Round2 以 half-up 規則四捨五入到兩位小數。
// 金額皆為非負值，half-up 與 half-away-from-zero 相同。
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(Places)
}

// Format 回傳固定兩位小數的字串，例如 "750.00"。
func Format(d decimal.Decimal) string {
	return d.StringFixed(Places)
}

// Parse 將呼叫端傳入的原始字串轉為金額。
// 空字串、NaN/Inf、科學記號、超過 MaxInputLen、四捨五入後 <= 0 皆視為 ErrInvalidAmount。
func Parse(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	if s == "" || len(s) > MaxInputLen || !amountPattern.MatchString(s) {
		return Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Zero, ErrInvalidAmount
	}
	d = Round2(d)
	if !d.IsPositive() {
		return Zero, ErrInvalidAmount
	}
	return d, nil
}

// MustParse 供常數與測試使用；解析失敗時 panic。
func MustParse(s string) decimal.Decimal {
	return Round2(decimal.RequireFromString(s))
}

// Max 回傳兩者較大值。
func Max(a, b decimal.Decimal) decimal.Decimal {
	if a.GreaterThan(b) {
		return a
	}
	return b
}

// Percent 計算 d 的 pct%，不做四捨五入。
func Percent(d, pct decimal.Decimal) decimal.Decimal {
	return d.Mul(pct).Div(decimal.NewFromInt(100))
}
