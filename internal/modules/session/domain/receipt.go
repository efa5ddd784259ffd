package domain

import "time"

const SchemaVersion = 1

// Receipt is the end-of-session snapshot. KeyArchive is a value copy of the
// catalog and TimeStampArchive is cloned when the receipt is built.
type Receipt struct {
	ID               string
	StartedAt        time.Time
	EndedAt          time.Time
	KeyArchive       Catalog
	TimeStampArchive History
}

type KeyReport struct {
	Key  Key
	Name string
	Work time.Duration
}

func (r Receipt) Duration() time.Duration {
	if r.StartedAt.IsZero() || r.EndedAt.Before(r.StartedAt) {
		return 0
	}
	return r.EndedAt.Sub(r.StartedAt)
}

// TimeIn sums the spans spent in state.
func (r Receipt) TimeIn(state State) time.Duration {
	var total time.Duration
	for _, span := range r.TimeStampArchive.Spans(r.EndedAt) {
		if span.Entry.State == state {
			total += span.Duration
		}
	}
	return total
}

// Report lists every key with its repetitions and the Working time attributed
// to it through the history's key tags.
func (r Receipt) Report() []KeyReport {
	var work [KeyCount]time.Duration
	for _, span := range r.TimeStampArchive.Spans(r.EndedAt) {
		if span.Entry.State != StateWorking {
			continue
		}
		if id := span.Entry.KeyID; id >= 0 && id < KeyCount {
			work[id] += span.Duration
		}
	}
	out := make([]KeyReport, 0, KeyCount)
	for _, k := range r.KeyArchive {
		out = append(out, KeyReport{Key: k, Name: k.Name(), Work: work[k.NID]})
	}
	return out
}

// KeysPracticed counts keys with at least one repetition.
func (r Receipt) KeysPracticed() int {
	n := 0
	for _, k := range r.KeyArchive {
		if k.Repetitions > 0 {
			n++
		}
	}
	return n
}
