package service

import (
	"errors"

	"keycycle/internal/modules/session/domain"
)

// Outcome describes one dispatch. Receipt is only meaningful when Finished.
type Outcome struct {
	State     domain.State
	Recovered bool
	Finished  bool
	Receipt   domain.Receipt
}

// Dispatch runs the entry behavior of the current state exactly once.
// NoCurrentKey never escapes: it is logged and the machine falls back to
// RequestingNewKey so the next dispatch selects a key.
func (m *Machine) Dispatch() Outcome {
	out := Outcome{State: m.state}
	switch m.state {
	case domain.StateWaiting:
		m.logger.Debug("waiting for a key request or session end")

	case domain.StateRequestingNewKey:
		m.data = m.data.SelectKey(m.selector)
		key, _ := m.data.CurrentKey()
		m.logger.Debug("selected key", "nid", key.NID, "name", key.Name())

	case domain.StateSkippingKey:
		next, err := m.data.ApplyRepetitionDelta(-1)
		if err != nil {
			m.data = m.data.DropPending()
			return m.recover(out, err)
		}
		next = next.DropPending()
		// Only a request stamped for the skipped key is removed. Work and
		// rest before the skip stay in the history.
		if tail, ok := next.Tail(); ok && tail.State == domain.StateRequestingNewKey {
			next = next.TruncateHistory()
		}
		m.data = next

	case domain.StateWorking:
		tail, ok := m.data.Tail()
		if !ok || tail.State != domain.StateWorking || tail.From != domain.StateRequestingNewKey {
			return out
		}
		next, err := m.data.ApplyRepetitionDelta(1)
		if err != nil {
			return m.recover(out, err)
		}
		m.data = next

	case domain.StateResting:

	case domain.StateFinishing:
		receipt := m.data.ConstructReceipt(m.idGen.New(), m.clock.Now())
		m.data = m.data.WithReceipt(receipt)
		m.logger.Info("key data archive", "keys", receipt.KeyArchive.Keys())
		m.logger.Info("time stamp archive", "history", receipt.TimeStampArchive)
		m.logger.Info("practice session finished", "receipt", receipt.ID, "duration", receipt.Duration())
		m.data = m.data.Reset()
		out.Finished = true
		out.Receipt = receipt
	}
	return out
}

func (m *Machine) recover(out Outcome, err error) Outcome {
	if errors.Is(err, domain.ErrNoCurrentKey) {
		m.logger.Error("repetition update failed, requesting a new key", "state", m.state, "error", err)
	} else {
		m.logger.Error("dispatch failed, requesting a new key", "state", m.state, "error", err)
	}
	m.state = domain.StateRequestingNewKey
	out.Recovered = true
	return out
}
