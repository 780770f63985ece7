// internal/storage/jsonstore.go
//
// JSON 快照後端：整個 Record Store 保存在單一 JSON 檔。
// 每次 Save / Delete / NextID 都會重寫整個檔案，並採「原子寫入」：
// 先寫入 .tmp 檔，再以 rename() 取代原檔，寫入中斷時原檔不會損壞。
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// LoadSnapshot 讀取指定路徑的 JSON 快照。
// 檔案不存在時回傳的錯誤滿足 errors.Is(err, fs.ErrNotExist)。
func LoadSnapshot(path string) (Snapshot, error) {
	snap := newSnapshot()
	f, err := os.Open(path)
	if err != nil {
		return snap, err
	}
	defer f.Close()
	if err := json.NewDecoder(f).Decode(&snap); err != nil {
		return newSnapshot(), fmt.Errorf("decode snapshot %s: %w", path, err)
	}
	if snap.Collections == nil {
		snap.Collections = make(map[string]json.RawMessage)
	}
	return snap, nil
}

// SaveSnapshot 將 Snapshot 寫入 path+".tmp" 後 rename 為正式檔案。
func SaveSnapshot(path string, snap Snapshot) error {
	snap.Meta.Storage = "json_snapshot"
	snap.Meta.Version = SnapshotVersion
	snap.Meta.Timestamp = time.Now()
	tmp := path + ".tmp"

	f, err := os.Create(tmp)
	if err != nil {
		return err
	}

	// 縮排輸出，方便人工檢視
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	return os.Rename(tmp, path)
}

// JSONStore 以 JSON 快照檔實作 Store。
// 快照常駐記憶體，mu 序列化所有讀寫與落盤。
type JSONStore struct {
	mu   sync.Mutex
	path string
	snap Snapshot
}

// NewJSONStore 開啟（或建立）path 上的快照檔。
// 檔案不存在時以空白快照啟動；檔案損毀則回傳錯誤，避免覆寫既有資料。
func NewJSONStore(path string) (*JSONStore, error) {
	if path == "" {
		return nil, errors.New("json store: empty path")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("json store: create dir: %w", err)
		}
	}
	snap, err := LoadSnapshot(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("json store: %w", err)
	}
	return &JSONStore{path: path, snap: snap}, nil
}

// Path 回傳快照檔路徑。
func (s *JSONStore) Path() string { return s.path }

func (s *JSONStore) Load(_ context.Context, c Collection) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.snap.Collections[string(c)]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), doc...), nil
}

func (s *JSONStore) Save(_ context.Context, c Collection, doc []byte) error {
	if !json.Valid(doc) {
		return fmt.Errorf("json store: collection %s: invalid json document", c)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, had := s.snap.Collections[string(c)]
	s.snap.Collections[string(c)] = append(json.RawMessage(nil), doc...)
	if err := SaveSnapshot(s.path, s.snap); err != nil {
		// 落盤失敗時還原記憶體狀態，維持與檔案一致
		if had {
			s.snap.Collections[string(c)] = prev
		} else {
			delete(s.snap.Collections, string(c))
		}
		return fmt.Errorf("json store: save %s: %w", c, err)
	}
	return nil
}

func (s *JSONStore) Delete(_ context.Context, c Collection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, had := s.snap.Collections[string(c)]
	if !had {
		return nil
	}
	delete(s.snap.Collections, string(c))
	if err := SaveSnapshot(s.path, s.snap); err != nil {
		s.snap.Collections[string(c)] = prev
		return fmt.Errorf("json store: delete %s: %w", c, err)
	}
	return nil
}

func (s *JSONStore) NextID(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.NextID++
	if err := SaveSnapshot(s.path, s.snap); err != nil {
		s.snap.NextID--
		return 0, fmt.Errorf("json store: next id: %w", err)
	}
	return s.snap.NextID, nil
}

func (s *JSONStore) Close() error { return nil }

var _ Store = (*JSONStore)(nil)
