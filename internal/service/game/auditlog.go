package game

import "time"

// 日志条目类型
const (
	LOG_START   = "START"
	LOG_CLUE    = "CLUE"
	LOG_VOTE    = "VOTE"
	LOG_REVEAL  = "REVEAL"
	LOG_TURN    = "TURN"
	LOG_SWITCH  = "SWITCH"
	LOG_RESTART = "RESTART"
)

type LogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Kind      string    `json:"kind"`
	Text      string    `json:"text"`
}

// AuditLog 是只追加的事件日志。条目随对应的状态变更一起写入，
// 写入后不再修改或重排。
type AuditLog struct {
	entries []LogEntry
}

func (al *AuditLog) Append(kind, text string) {
	al.entries = append(al.entries, LogEntry{
		Timestamp: time.Now(),
		Kind:      kind,
		Text:      text,
	})
}

func (al *AuditLog) Entries() []LogEntry {
	return al.entries
}

func (al *AuditLog) Len() int {
	return len(al.entries)
}

// Reset 清空日志，仅在开始新对局或重置回大厅时调用
func (al *AuditLog) Reset() {
	al.entries = nil
}
