// internal/storage/store.go
//
// Package storage 定義 Record Store 契約：以「集合 (collection)」為單位
// 整批讀寫文件，並負責產生單調遞增的記錄 ID。
// 本層不認識帳戶、交易等領域型別，只搬運已序列化的位元組。
package storage

import (
	"context"
	"errors"
	"fmt"
)

// Collection 為集合名稱。
type Collection string

const (
	Accounts     Collection = "accounts"
	Transactions Collection = "transactions"
	Loans        Collection = "loans"
	Session      Collection = "session"
)

// All 列出所有集合，用於重設。
var All = []Collection{Accounts, Transactions, Loans, Session}

// ErrUnknownDriver 代表 Open 收到不支援的後端名稱。
var ErrUnknownDriver = errors.New("unknown store driver")

// Store 是 Record Store 契約。
//   - Load 對不存在的集合回傳 (nil, nil)。
//   - Save 以整個集合取代舊內容；沒有部分更新。
//   - NextID 回傳單調遞增且持久化的 ID。
//
// 實作需可被多個 goroutine 同時呼叫；跨集合不保證交易性。
type Store interface {
	Load(ctx context.Context, c Collection) ([]byte, error)
	Save(ctx context.Context, c Collection, doc []byte) error
	Delete(ctx context.Context, c Collection) error
	NextID(ctx context.Context) (int64, error)
	Close() error
}

// Driver 名稱。
const (
	DriverMemory = "memory"
	DriverJSON   = "json"
	DriverSQLite = "sqlite"
)

// Open 依 driver 建立對應後端。path 對 memory 無意義。
func Open(ctx context.Context, driver, path string) (Store, error) {
	switch driver {
	case DriverMemory, "":
		return NewMemStore(), nil
	case DriverJSON:
		return NewJSONStore(path)
	case DriverSQLite:
		return NewSQLiteStore(ctx, path)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
}
