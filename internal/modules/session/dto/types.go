package dto

import "time"

type KeyOutput struct {
	NID         int
	Name        string
	Repetitions int
}

type EntryOutput struct {
	State   string
	Label   string
	At      time.Time
	KeyName string
}

type ActionOutput struct {
	Name    string
	Label   string
	Enabled bool
}

type SnapshotOutput struct {
	State         string
	StateLabel    string
	Phase         string
	CurrentKey    KeyOutput
	HasCurrentKey bool
	LegalTargets  []string
	Actions       []ActionOutput
	Keys          []KeyOutput
	History       []EntryOutput
	LastReceipt   ReceiptSummaryOutput
	HasReceipt    bool
}

type TransitionInput struct {
	Target string
}

type DispatchOutput struct {
	State     string
	Recovered bool
	Finished  bool
	Receipt   ReceiptSummaryOutput
}

type ActionInput struct {
	Action string
}

type EndOutput struct {
	Receipt  ReceiptSummaryOutput
	NotePath string
}

type ReceiptSummaryOutput struct {
	ID               string
	StartedAt        time.Time
	EndedAt          time.Time
	DurationSec      int64
	TotalRepetitions int
	KeysPracticed    int
	NotePath         string
}

type KeyReportOutput struct {
	Name        string
	Repetitions int
	WorkSec     int64
}

type ReceiptDetailOutput struct {
	ReceiptSummaryOutput

	Keys    []KeyReportOutput
	History []EntryOutput
	RestSec int64
	Content string
}

type PreferencesOutput struct {
	Theme string
}
