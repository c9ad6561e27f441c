package metrics

// HistoryObserver is told about every history write attempt.
type HistoryObserver interface {
	RecordWrite(target, action string)
	RecordFailure(target, action string)
}

type NopHistoryObserver struct{}

func (NopHistoryObserver) RecordWrite(string, string)   {}
func (NopHistoryObserver) RecordFailure(string, string) {}
