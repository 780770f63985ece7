// internal/storage/sqlitestore.go
//
// SQLite 後端：每個集合為 collections 表中的一列，整列取代寫入；
// ID 計數器存於 counters 表，以單一 UPDATE ... RETURNING 遞增。
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// SQLiteStore 以 modernc.org/sqlite（純 Go，無 cgo）實作 Store。
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore 開啟或建立資料庫並初始化 schema。
func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, errors.New("sqlite store: empty path")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("sqlite store: create dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("sqlite store: open: %w", err)
	}
	// 單一連線：SQLite 寫入本來就序列化，避免 SQLITE_BUSY
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db, path: path}
	if err := s.initSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite store: init schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS collections (
		name TEXT PRIMARY KEY,
		doc BLOB NOT NULL,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS counters (
		name TEXT PRIMARY KEY,
		value INTEGER NOT NULL
	);

	INSERT OR IGNORE INTO counters (name, value) VALUES ('records', 0);
	`
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Path 回傳資料庫檔案路徑。
func (s *SQLiteStore) Path() string { return s.path }

func (s *SQLiteStore) Load(ctx context.Context, c Collection) ([]byte, error) {
	var doc []byte
	err := s.db.QueryRowContext(ctx, "SELECT doc FROM collections WHERE name = ?", string(c)).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite store: load %s: %w", c, err)
	}
	return doc, nil
}

func (s *SQLiteStore) Save(ctx context.Context, c Collection, doc []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO collections (name, doc, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(name) DO UPDATE SET doc = excluded.doc, updated_at = excluded.updated_at`,
		string(c), doc)
	if err != nil {
		return fmt.Errorf("sqlite store: save %s: %w", c, err)
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, c Collection) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM collections WHERE name = ?", string(c)); err != nil {
		return fmt.Errorf("sqlite store: delete %s: %w", c, err)
	}
	return nil
}

func (s *SQLiteStore) NextID(ctx context.Context) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx,
		"UPDATE counters SET value = value + 1 WHERE name = 'records' RETURNING value").Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("sqlite store: next id: %w", err)
	}
	return id, nil
}

// Close 關閉資料庫連線。
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

var _ Store = (*SQLiteStore)(nil)
