package cache

// Key layout. Each conversation's copilot history lives under its own key so
// writes for different threads never touch the same record.
const (
	HistoryKeyPrefix  = "copilot-history-"
	DefaultHistoryKey = HistoryKeyPrefix + "default"
	ThreadsKey        = "inbox-threads"
	SelectedThreadKey = "inbox-selected-thread"
)

// HistoryKey returns the copilot history key for threadID. An empty id maps
// to the default key used when no thread is selected.
func HistoryKey(threadID string) string {
	if threadID == "" {
		return DefaultHistoryKey
	}
	return HistoryKeyPrefix + threadID
}
