package domain_test

import (
	"errors"
	"testing"

	"keycycle/internal/modules/session/domain"
)

func TestTransitionTable(t *testing.T) {
	t.Parallel()
	legal := []struct{ from, to domain.State }{
		{domain.StateWaiting, domain.StateRequestingNewKey},
		{domain.StateRequestingNewKey, domain.StateWorking},
		{domain.StateRequestingNewKey, domain.StateSkippingKey},
		{domain.StateSkippingKey, domain.StateRequestingNewKey},
		{domain.StateWorking, domain.StateResting},
		{domain.StateWorking, domain.StateSkippingKey},
		{domain.StateResting, domain.StateWorking},
		{domain.StateResting, domain.StateSkippingKey},
		{domain.StateFinishing, domain.StateWaiting},
		{domain.StateFinishing, domain.StateRequestingNewKey},
	}
	for _, tc := range legal {
		if err := domain.CheckTransition(tc.from, tc.to); err != nil {
			t.Fatalf("%s -> %s should be legal: %v", tc.from, tc.to, err)
		}
	}
	for _, from := range domain.States() {
		if !domain.CanTransition(from, domain.StateFinishing) {
			t.Fatalf("%s -> finishing must always be legal", from)
		}
	}

	illegal := []struct{ from, to domain.State }{
		{domain.StateWaiting, domain.StateWorking},
		{domain.StateWaiting, domain.StateResting},
		{domain.StateWaiting, domain.StateSkippingKey},
		{domain.StateRequestingNewKey, domain.StateResting},
		{domain.StateSkippingKey, domain.StateWorking},
		{domain.StateWorking, domain.StateWorking},
		{domain.StateResting, domain.StateWaiting},
		{domain.StateWorking, domain.State("dancing")},
	}
	for _, tc := range illegal {
		if err := domain.CheckTransition(tc.from, tc.to); !errors.Is(err, domain.ErrIllegalTransition) {
			t.Fatalf("%s -> %s should be illegal, got %v", tc.from, tc.to, err)
		}
	}
}

func TestLegalTargets(t *testing.T) {
	t.Parallel()
	got := domain.LegalTargets(domain.StateWaiting)
	if len(got) != 2 || got[0] != domain.StateRequestingNewKey || got[1] != domain.StateFinishing {
		t.Fatalf("unexpected waiting targets: %v", got)
	}
	got = domain.LegalTargets(domain.StateResting)
	want := []domain.State{domain.StateRequestingNewKey, domain.StateSkippingKey, domain.StateWorking, domain.StateFinishing}
	if len(got) != len(want) {
		t.Fatalf("unexpected resting targets: %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("unexpected resting targets: %v", got)
		}
	}
}

func TestParseStateAcceptsLabels(t *testing.T) {
	t.Parallel()
	for raw, want := range map[string]domain.State{
		"Requesting New Key": domain.StateRequestingNewKey,
		"skipping-key":       domain.StateSkippingKey,
		" working ":          domain.StateWorking,
	} {
		got, err := domain.ParseState(raw)
		if err != nil || got != want {
			t.Fatalf("parse %q: got %q err %v", raw, got, err)
		}
	}
	if _, err := domain.ParseState("napping"); err == nil {
		t.Fatalf("unknown state should fail")
	}
	if domain.StateRequestingNewKey.Label() != "Requesting New Key" {
		t.Fatalf("unexpected label %q", domain.StateRequestingNewKey.Label())
	}
}

func TestActions(t *testing.T) {
	t.Parallel()
	if _, err := domain.ParseAction("dance"); !errors.Is(err, domain.ErrUnknownAction) {
		t.Fatalf("expected unknown action error, got %v", err)
	}
	skip, err := domain.ParseAction("Skip")
	if err != nil {
		t.Fatalf("parse skip: %v", err)
	}
	steps := skip.Steps()
	if len(steps) != 3 || steps[0] != domain.StateSkippingKey || steps[2] != domain.StateWorking {
		t.Fatalf("unexpected skip steps: %v", steps)
	}
	if domain.ActionPause.Available(domain.StateWaiting, domain.PhaseIdle) {
		t.Fatalf("pause must not be available while waiting")
	}
	if !domain.ActionRequestKey.Available(domain.StateRequestingNewKey, domain.PhaseInProgress) {
		t.Fatalf("request should run when already requesting")
	}
	if domain.ActionResume.Available(domain.StateWorking, domain.PhaseInProgress) ||
		domain.ActionPause.Available(domain.StateResting, domain.PhaseInProgress) {
		t.Fatalf("resume while working and pause while resting must be rejected")
	}
	if !domain.ActionEnd.Available(domain.StateSkippingKey, domain.PhaseInProgress) {
		t.Fatalf("end should be available during a session")
	}
	if domain.ActionEnd.Available(domain.StateWaiting, domain.PhaseIdle) ||
		domain.ActionEnd.Available(domain.StateFinishing, domain.PhaseFinished) {
		t.Fatalf("end needs a session in progress")
	}
	if domain.ActionEnd.Label() != "End Practice Session" {
		t.Fatalf("unexpected label %q", domain.ActionEnd.Label())
	}
}
