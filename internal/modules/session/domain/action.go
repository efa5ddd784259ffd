package domain

import (
	"fmt"
	"strings"
)

// Action is a user-facing practice command. Each one expands into a fixed
// sequence of transitions, each followed by a dispatch.
type Action string

const (
	ActionRequestKey Action = "request"
	ActionSkipKey    Action = "skip"
	ActionPause      Action = "pause"
	ActionResume     Action = "resume"
	ActionEnd        Action = "end"
)

var actionOrder = []Action{ActionRequestKey, ActionSkipKey, ActionPause, ActionResume, ActionEnd}

var actionSteps = map[Action][]State{
	ActionRequestKey: {StateRequestingNewKey, StateWorking},
	ActionSkipKey:    {StateSkippingKey, StateRequestingNewKey, StateWorking},
	ActionPause:      {StateResting},
	ActionResume:     {StateWorking},
	ActionEnd:        {StateFinishing},
}

var actionLabels = map[Action]string{
	ActionRequestKey: "Request New Key",
	ActionSkipKey:    "Skip Selected Key",
	ActionPause:      "Pause Practice Session",
	ActionResume:     "Resume Practice Session",
	ActionEnd:        "End Practice Session",
}

func Actions() []Action {
	out := make([]Action, len(actionOrder))
	copy(out, actionOrder)
	return out
}

func ParseAction(raw string) (Action, error) {
	a := Action(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := actionSteps[a]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownAction, raw)
	}
	return a, nil
}

func (a Action) Label() string {
	if label, ok := actionLabels[a]; ok {
		return label
	}
	return string(a)
}

func (a Action) Steps() []State {
	steps := actionSteps[a]
	out := make([]State, len(steps))
	copy(out, steps)
	return out
}

// Available reports whether the action's first step can start from state.
// A machine left in RequestingNewKey, as after a recovery, may run request
// directly. Pause while resting and resume while working are rejected. End
// needs a session in progress.
func (a Action) Available(from State, phase Phase) bool {
	steps := actionSteps[a]
	if len(steps) == 0 {
		return false
	}
	if a == ActionEnd {
		return phase == PhaseInProgress
	}
	if from == StateRequestingNewKey && steps[0] == StateRequestingNewKey {
		return true
	}
	return CanTransition(from, steps[0])
}
