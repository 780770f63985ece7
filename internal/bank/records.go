// internal/bank/records.go
//
// 型別化的集合讀寫：讀出整個集合、在拷貝上修改、整批寫回。
// 集合內容無法解碼時視為空集合並記錄警告；後端 I/O 錯誤則回傳 ErrStore。
package bank

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"

	"minibank/internal/storage"
)

func loadCollection[T any](ctx context.Context, st storage.Store, log *zerolog.Logger, c storage.Collection) ([]T, error) {
	raw, err := st.Load(ctx, c)
	if err != nil {
		return nil, storeError("load "+string(c), err)
	}
	if len(raw) == 0 {
		return nil, nil
	}
	var out []T
	if err := json.Unmarshal(raw, &out); err != nil {
		log.Warn().Err(err).Str("collection", string(c)).Msg("unreadable collection treated as empty")
		return nil, nil
	}
	return out, nil
}

func saveCollection[T any](ctx context.Context, st storage.Store, c storage.Collection, items []T) error {
	if items == nil {
		items = []T{}
	}
	doc, err := json.Marshal(items)
	if err != nil {
		return storeError("encode "+string(c), err)
	}
	if err := st.Save(ctx, c, doc); err != nil {
		return storeError("save "+string(c), err)
	}
	return nil
}

func (b *Bank) loadAccounts(ctx context.Context) ([]Account, error) {
	return loadCollection[Account](ctx, b.store, b.logger(ctx), storage.Accounts)
}

func (b *Bank) loadTransactions(ctx context.Context) ([]Transaction, error) {
	return loadCollection[Transaction](ctx, b.store, b.logger(ctx), storage.Transactions)
}

func (b *Bank) loadLoans(ctx context.Context) ([]Loan, error) {
	return loadCollection[Loan](ctx, b.store, b.logger(ctx), storage.Loans)
}

// loadSession 回傳持久化的 active session；不存在時回傳 nil。
func (b *Bank) loadSession(ctx context.Context) (*Session, error) {
	list, err := loadCollection[Session](ctx, b.store, b.logger(ctx), storage.Session)
	if err != nil || len(list) == 0 {
		return nil, err
	}
	s := list[0]
	return &s, nil
}

func (b *Bank) saveSession(ctx context.Context, s Session) error {
	return saveCollection(ctx, b.store, storage.Session, []Session{s})
}

// prependTransactions 將新交易依序插入日誌最前面：最後一筆位於最前。
func (b *Bank) prependTransactions(ctx context.Context, txs ...Transaction) error {
	log, err := b.loadTransactions(ctx)
	if err != nil {
		return err
	}
	out := make([]Transaction, 0, len(log)+len(txs))
	for i := len(txs) - 1; i >= 0; i-- {
		out = append(out, txs[i])
	}
	out = append(out, log...)
	return saveCollection(ctx, b.store, storage.Transactions, out)
}

// commit 依固定順序寫回：帳戶 → 貸款（若有）→ 交易日誌 → session 快照。
// actor 為登入者在 accounts 中的索引。
// 中途失敗時，已寫入的部分可由帳戶集合（權威資料）重新同步。
func (b *Bank) commit(ctx context.Context, s *Session, accounts []Account, actor int, loans []Loan, txs ...Transaction) error {
	if err := saveCollection(ctx, b.store, storage.Accounts, accounts); err != nil {
		return err
	}
	if loans != nil {
		if err := saveCollection(ctx, b.store, storage.Loans, loans); err != nil {
			return err
		}
	}
	if len(txs) > 0 {
		if err := b.prependTransactions(ctx, txs...); err != nil {
			return err
		}
	}
	return b.resync(ctx, s, accounts[actor])
}

// resync 將 session 快照更新為帳戶的最新狀態，並寫回 session 集合。
func (b *Bank) resync(ctx context.Context, s *Session, a Account) error {
	s.Account = a.Public()
	return b.saveSession(ctx, *s)
}
