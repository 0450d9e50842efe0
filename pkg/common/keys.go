package common

import "fmt"

var (
	// Session keys
	sessionToken          string = "involex:session:token"
	sessionMatters        string = "involex:session:matters"
	sessionSelectedMatter string = "involex:session:selected_matter"

	// Analysis history keys; the numeric part is zero-padded unix-nanos so
	// lexicographic key order is chronological order.
	analysisPrefix string = "involex:analysis:"
	analysisEntry  string = "involex:analysis:%020d"

	// Settings
	settingsRecord string = "involex:settings"

	// Locks
	historyPruneLock string = "involex:lock:history:prune"

	// Event bus channel
	eventsChannel string = "involex:events"
)

var Keys = &storeKeys{}

type storeKeys struct{}

func (k *storeKeys) SessionToken() string {
	return sessionToken
}

func (k *storeKeys) SessionMatters() string {
	return sessionMatters
}

func (k *storeKeys) SessionSelectedMatter() string {
	return sessionSelectedMatter
}

func (k *storeKeys) AnalysisPrefix() string {
	return analysisPrefix
}

func (k *storeKeys) AnalysisEntry(unixNano int64) string {
	return fmt.Sprintf(analysisEntry, unixNano)
}

func (k *storeKeys) SettingsRecord() string {
	return settingsRecord
}

func (k *storeKeys) HistoryPruneLock() string {
	return historyPruneLock
}

func (k *storeKeys) EventsChannel() string {
	return eventsChannel
}
