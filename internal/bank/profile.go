// internal/bank/profile.go
package bank

import (
	"context"
)

// Profile 組出登入者的帳戶總覽：帳戶欄位、最近 RecentLimit 筆相關交易與其貸款。
// session 快照與帳戶不一致時會一併同步。
func (b *Bank) Profile(ctx context.Context, s *Session) (*Profile, error) {
	if err := b.wait(ctx); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	accounts, i, err := b.authorize(ctx, s)
	if err != nil {
		return nil, err
	}
	a := accounts[i]

	txs, err := b.loadTransactions(ctx)
	if err != nil {
		return nil, err
	}
	recent := make([]Transaction, 0, RecentLimit)
	for _, t := range txs {
		if len(recent) == RecentLimit {
			break
		}
		if t.Touches(a) {
			recent = append(recent, t)
		}
	}

	all, err := b.loadLoans(ctx)
	if err != nil {
		return nil, err
	}
	loans := make([]Loan, 0)
	for _, l := range all {
		if l.UserID == a.ID {
			loans = append(loans, l)
		}
	}

	if !sameSnapshot(s.Account, a.Public()) {
		if err := b.resync(ctx, s, a); err != nil {
			return nil, err
		}
	}
	return &Profile{Account: a.Public(), Transactions: recent, Loans: loans}, nil
}

func sameSnapshot(x, y Account) bool {
	return x.ID == y.ID &&
		x.Username == y.Username &&
		x.Email == y.Email &&
		x.AccountNumber == y.AccountNumber &&
		x.Balance.Equal(y.Balance)
}
