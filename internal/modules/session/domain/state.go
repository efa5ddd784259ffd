package domain

import (
	"fmt"
	"strings"
)

type State string

const (
	StateWaiting          State = "waiting"
	StateRequestingNewKey State = "requesting_new_key"
	StateSkippingKey      State = "skipping_key"
	StateWorking          State = "working"
	StateResting          State = "resting"
	StateFinishing        State = "finishing"
)

var stateLabels = map[State]string{
	StateWaiting:          "Waiting",
	StateRequestingNewKey: "Requesting New Key",
	StateSkippingKey:      "Skipping Key",
	StateWorking:          "Working",
	StateResting:          "Resting",
	StateFinishing:        "Finishing",
}

var stateOrder = []State{
	StateWaiting,
	StateRequestingNewKey,
	StateSkippingKey,
	StateWorking,
	StateResting,
	StateFinishing,
}

// transitions lists the legal targets of each state. Finishing is reachable
// from every state and is not repeated here.
var transitions = map[State][]State{
	StateWaiting:          {StateRequestingNewKey},
	StateRequestingNewKey: {StateWorking, StateSkippingKey},
	StateSkippingKey:      {StateRequestingNewKey},
	StateWorking:          {StateResting, StateSkippingKey, StateRequestingNewKey},
	StateResting:          {StateWorking, StateSkippingKey, StateRequestingNewKey},
	StateFinishing:        {StateRequestingNewKey, StateWaiting},
}

func (s State) Label() string {
	if label, ok := stateLabels[s]; ok {
		return label
	}
	return string(s)
}

func (s State) Validate() error {
	if _, ok := stateLabels[s]; ok {
		return nil
	}
	return fmt.Errorf("unknown state %q", string(s))
}

// ParseState accepts either the identifier ("requesting_new_key") or the
// label ("Requesting New Key"), case-insensitively.
func ParseState(raw string) (State, error) {
	norm := strings.ToLower(strings.TrimSpace(raw))
	norm = strings.NewReplacer(" ", "_", "-", "_").Replace(norm)
	s := State(norm)
	if err := s.Validate(); err != nil {
		return "", err
	}
	return s, nil
}

func States() []State {
	out := make([]State, len(stateOrder))
	copy(out, stateOrder)
	return out
}

func CanTransition(from, to State) bool {
	if to.Validate() != nil {
		return false
	}
	if to == StateFinishing {
		return true
	}
	for _, target := range transitions[from] {
		if target == to {
			return true
		}
	}
	return false
}

// LegalTargets returns every state reachable from s, in declaration order.
func LegalTargets(from State) []State {
	out := make([]State, 0, len(stateOrder))
	for _, s := range stateOrder {
		if CanTransition(from, s) {
			out = append(out, s)
		}
	}
	return out
}

type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseInProgress Phase = "in_progress"
	PhaseFinished   Phase = "finished"
)
