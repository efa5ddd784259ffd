package domain

import "time"

// Data is the practice-fact store of one session. Every mutating method has
// a value receiver and returns the updated copy; on error the caller keeps
// its previous value untouched.
type Data struct {
	catalog    Catalog
	history    History
	current    Key
	hasCurrent bool
	pending    TimeEntry
	hasPending bool
	receipt    Receipt
	phase      Phase
}

func NewData() Data {
	return Data{catalog: NewCatalog(), phase: PhaseIdle}
}

func (d Data) Catalog() Catalog { return d.catalog }

func (d Data) History() History { return d.history.Clone() }

func (d Data) Phase() Phase { return d.phase }

func (d Data) CurrentKey() (Key, bool) {
	return d.current, d.hasCurrent
}

// Receipt returns the last finalized receipt. It survives Reset and is only
// replaced by the next finalize.
func (d Data) Receipt() (Receipt, bool) {
	return d.receipt, d.receipt.ID != ""
}

func (d Data) SelectKey(sel Selector) Data {
	idx := sel.Select(d.catalog)
	if idx < 0 || idx >= KeyCount {
		idx = 0
	}
	d.current = d.catalog[idx]
	d.hasCurrent = true
	return d
}

// ApplyRepetitionDelta adds delta to the current key, writes the copy back
// into the catalog by nid and refreshes the current-key snapshot.
func (d Data) ApplyRepetitionDelta(delta int) (Data, error) {
	if !d.hasCurrent {
		return d, ErrNoCurrentKey
	}
	key := d.catalog[d.current.NID]
	key.Repetitions += delta
	d.catalog[key.NID] = key
	d.current = key
	return d, nil
}

// Mark stores the pending start marker for a just-entered state.
func (d Data) Mark(state, from State, at time.Time) Data {
	keyID := NoKey
	if d.hasCurrent {
		keyID = d.current.NID
	}
	d.pending = TimeEntry{State: state, At: at.Unix(), From: from, KeyID: keyID}
	d.hasPending = true
	return d
}

// Commit appends the pending marker to the history. Without a marker it is
// a no-op.
func (d Data) Commit() Data {
	if !d.hasPending {
		return d
	}
	d.history = d.history.Append(d.pending)
	d.pending = TimeEntry{}
	d.hasPending = false
	d.phase = PhaseInProgress
	return d
}

func (d Data) DropPending() Data {
	d.pending = TimeEntry{}
	d.hasPending = false
	return d
}

func (d Data) TruncateHistory() Data {
	d.history = d.history.TruncateTail()
	return d
}

func (d Data) Tail() (TimeEntry, bool) {
	return d.history.Tail()
}

func (d Data) ConstructReceipt(id string, at time.Time) Receipt {
	r := Receipt{
		ID:               id,
		EndedAt:          at.UTC(),
		KeyArchive:       d.catalog,
		TimeStampArchive: d.history.Clone(),
	}
	if len(d.history) > 0 {
		r.StartedAt = d.history[0].Time()
	} else {
		r.StartedAt = r.EndedAt
	}
	return r
}

func (d Data) WithReceipt(r Receipt) Data {
	d.receipt = r
	d.phase = PhaseFinished
	return d
}

// Reset clears the operational data for the next session and keeps the
// receipt and phase.
func (d Data) Reset() Data {
	next := NewData()
	next.receipt = d.receipt
	next.phase = d.phase
	return next
}
