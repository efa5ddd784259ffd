package service

import (
	"fmt"

	hclog "github.com/hashicorp/go-hclog"

	"keycycle/internal/modules/session/domain"
	"keycycle/internal/platform/clock"
	"keycycle/internal/platform/id"
)

// Machine is the practice-session state machine. It owns the state tag and
// holds the session data; all practice facts change through domain.Data.
//
// Transition methods only move the tag and stamp the history. Entry behavior
// runs in Dispatch, so a host may render between the two calls.
type Machine struct {
	clock    clock.Clock
	idGen    id.Generator
	selector domain.Selector
	logger   hclog.Logger

	state domain.State
	data  domain.Data
}

func NewMachine(clock clock.Clock, idGen id.Generator, selector domain.Selector, logger hclog.Logger) *Machine {
	if selector == nil {
		selector = domain.NewUniformSelector(nil)
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Machine{
		clock:    clock,
		idGen:    idGen,
		selector: selector,
		logger:   logger,
		state:    domain.StateWaiting,
		data:     domain.NewData(),
	}
}

func (m *Machine) State() domain.State { return m.state }

func (m *Machine) Data() domain.Data { return m.data }

func (m *Machine) LegalTargets() []domain.State {
	return domain.LegalTargets(m.state)
}

// Transition moves to target when the edge is legal. Entering Waiting is
// silent, entering SkippingKey only marks, every other target is marked and
// committed to the history.
func (m *Machine) Transition(target domain.State) error {
	if err := domain.CheckTransition(m.state, target); err != nil {
		return err
	}
	from := m.state
	m.state = target
	switch target {
	case domain.StateWaiting:
	case domain.StateSkippingKey:
		m.data = m.data.Mark(target, from, m.clock.Now())
	default:
		m.data = m.data.Mark(target, from, m.clock.Now()).Commit()
	}
	m.logger.Debug("transition", "from", from, "to", target)
	return nil
}

func (m *Machine) ToWaiting() error          { return m.Transition(domain.StateWaiting) }
func (m *Machine) ToRequestingNewKey() error { return m.Transition(domain.StateRequestingNewKey) }
func (m *Machine) ToSkippingKey() error      { return m.Transition(domain.StateSkippingKey) }
func (m *Machine) ToWorking() error          { return m.Transition(domain.StateWorking) }
func (m *Machine) ToResting() error          { return m.Transition(domain.StateResting) }
func (m *Machine) ToFinishing() error        { return m.Transition(domain.StateFinishing) }

// Perform runs every step of an action as transition then dispatch. A step
// whose state the machine already holds and cannot re-enter is dispatched
// without a transition.
//
// After a NoCurrentKey recovery the forced request is stamped and dispatched
// once, and a following RequestingNewKey step is consumed by it.
func (m *Machine) Perform(action domain.Action) (Outcome, error) {
	steps := action.Steps()
	if len(steps) == 0 {
		return Outcome{}, fmt.Errorf("%w: %q", domain.ErrUnknownAction, action)
	}
	if !action.Available(m.state, m.data.Phase()) {
		if err := domain.CheckTransition(m.state, steps[0]); err != nil {
			return Outcome{}, err
		}
		return Outcome{}, fmt.Errorf("%w: %s while %s", domain.ErrActionUnavailable, action, m.state)
	}
	var out Outcome
	recovered := false
	for idx := 0; idx < len(steps); idx++ {
		step := steps[idx]
		if m.state != step || domain.CanTransition(m.state, step) {
			if err := m.Transition(step); err != nil {
				return out, err
			}
		}
		failed := m.state
		out = m.Dispatch()
		if !out.Recovered {
			continue
		}
		recovered = true
		m.data = m.data.Mark(domain.StateRequestingNewKey, failed, m.clock.Now()).Commit()
		out = m.Dispatch()
		if idx+1 < len(steps) && steps[idx+1] == domain.StateRequestingNewKey {
			idx++
		}
	}
	out.Recovered = recovered
	return out, nil
}
