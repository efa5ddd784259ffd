package domain

import "time"

// TimeEntry records that State was entered at At (unix seconds). From is the
// state the machine left, KeyID the current key at that moment or NoKey.
type TimeEntry struct {
	State State `json:"state" yaml:"state"`
	At    int64 `json:"at" yaml:"at"`
	From  State `json:"from" yaml:"from"`
	KeyID int   `json:"key" yaml:"key"`
}

func (e TimeEntry) Time() time.Time {
	return time.Unix(e.At, 0).UTC()
}

// History is append-only apart from TruncateTail. Both operations return a
// fresh slice so earlier values never observe later changes.
type History []TimeEntry

func (h History) Append(e TimeEntry) History {
	out := make(History, len(h), len(h)+1)
	copy(out, h)
	return append(out, e)
}

func (h History) TruncateTail() History {
	if len(h) == 0 {
		return h
	}
	return h[:len(h)-1].Clone()
}

func (h History) Tail() (TimeEntry, bool) {
	if len(h) == 0 {
		return TimeEntry{}, false
	}
	return h[len(h)-1], true
}

func (h History) Clone() History {
	if h == nil {
		return nil
	}
	out := make(History, len(h))
	copy(out, h)
	return out
}

// Span is the time spent in one history entry: from its own timestamp to the
// next entry's, or to end for the last one.
type Span struct {
	Entry    TimeEntry
	Duration time.Duration
}

func (h History) Spans(end time.Time) []Span {
	out := make([]Span, 0, len(h))
	for i, e := range h {
		stop := end.Unix()
		if i+1 < len(h) {
			stop = h[i+1].At
		}
		d := time.Duration(stop-e.At) * time.Second
		if d < 0 {
			d = 0
		}
		out = append(out, Span{Entry: e, Duration: d})
	}
	return out
}
