package selection

// Record 可序列化的完整狀態（含歷史），用於 session 持久化
type Record struct {
	Current Snapshot   `json:"current"`
	History []Snapshot `json:"history,omitempty"`
}

// Export 匯出目前狀態與歷史
func (s *State) Export() Record {
	history := make([]Snapshot, len(s.history))
	copy(history, s.history)
	return Record{Current: s.Snapshot(), History: history}
}

// FromRecord 由匯出的紀錄重建狀態；超出上限的舊歷史會被捨棄
func FromRecord(rec Record, opts Options) *State {
	s := New(opts)
	s.restore(rec.Current)

	history := rec.History
	if over := len(history) - s.opts.HistoryLimit; over > 0 {
		history = history[over:]
	}
	s.history = append([]Snapshot(nil), history...)
	return s
}
