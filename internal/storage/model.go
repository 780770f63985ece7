// internal/storage/model.go
//
// 定義 JSON 快照檔的結構：中繼資料、ID 計數器與各集合的原始文件。
package storage

import (
	"encoding/json"
	"time"
)

// SnapshotVersion 為目前快照格式版本。
const SnapshotVersion = 2

// Meta 為快照的中繼資料，用於版本比對與除錯。
type Meta struct {
	Storage   string    `json:"storage"`        // 儲存類型，例如 "json_snapshot"
	Version   int       `json:"version"`        // 結構版本號
	Timestamp time.Time `json:"timestamp"`      // 快照寫入時間
	Note      string    `json:"note,omitempty"` // 備註
}

// Snapshot 為整個 Record Store 的完整快照。
// Collections 內的值保持原始 JSON，不在本層解碼。
type Snapshot struct {
	Meta        Meta                       `json:"_meta"`
	NextID      int64                      `json:"next_id"`
	Collections map[string]json.RawMessage `json:"collections"`
}

func newSnapshot() Snapshot {
	return Snapshot{
		Meta:        Meta{Storage: "json_snapshot", Version: SnapshotVersion},
		Collections: make(map[string]json.RawMessage),
	}
}
