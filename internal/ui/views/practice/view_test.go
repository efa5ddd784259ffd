package practice

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	sessiondto "keycycle/internal/modules/session/dto"
)

type fakePort struct {
	snap      sessiondto.SnapshotOutput
	performed []string
}

func (f *fakePort) Snapshot(context.Context) (sessiondto.SnapshotOutput, error) {
	return f.snap, nil
}

func (f *fakePort) Perform(_ context.Context, input sessiondto.ActionInput) (sessiondto.DispatchOutput, error) {
	f.performed = append(f.performed, input.Action)
	return sessiondto.DispatchOutput{State: f.snap.State}, nil
}

func waitingSnapshot() sessiondto.SnapshotOutput {
	return sessiondto.SnapshotOutput{
		State:      "waiting",
		StateLabel: "Waiting",
		Actions: []sessiondto.ActionOutput{
			{Name: "request", Label: "Request new key", Enabled: true},
			{Name: "skip", Label: "Skip key", Enabled: false},
			{Name: "pause", Label: "Pause", Enabled: false},
			{Name: "resume", Label: "Resume", Enabled: false},
			{Name: "end", Label: "End session", Enabled: false},
		},
	}
}

func TestRunRejectsDisabledAction(t *testing.T) {
	t.Parallel()
	port := &fakePort{snap: waitingSnapshot()}
	m := New(port)
	m, _ = m.Update(SnapshotMsg{Snapshot: port.snap})

	m, cmd := m.Run("pause")
	if cmd != nil {
		t.Fatalf("expected no command for a disabled action")
	}
	if m.err == nil || !strings.Contains(m.err.Error(), "not available while waiting") {
		t.Fatalf("unexpected error: %v", m.err)
	}
	if len(port.performed) != 0 {
		t.Fatalf("disabled action reached the port: %v", port.performed)
	}
}

func TestShortcutPerformsAction(t *testing.T) {
	t.Parallel()
	port := &fakePort{snap: waitingSnapshot()}
	m := New(port)
	m, _ = m.Update(SnapshotMsg{Snapshot: port.snap})

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	if cmd == nil || !m.busy {
		t.Fatalf("expected request to start")
	}
	msg, ok := cmd().(PerformedMsg)
	if !ok {
		t.Fatalf("expected PerformedMsg")
	}
	if msg.Action != "request" || len(port.performed) != 1 {
		t.Fatalf("unexpected perform: %+v %v", msg, port.performed)
	}

	// Input is ignored until the action reports back.
	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("e")}); cmd != nil {
		t.Fatalf("expected busy model to ignore keys")
	}
	m, _ = m.Update(msg)
	if m.busy {
		t.Fatalf("expected busy flag cleared")
	}
}

func TestEnterRunsSelectedControl(t *testing.T) {
	t.Parallel()
	port := &fakePort{snap: waitingSnapshot()}
	m := New(port)
	m, _ = m.Update(SnapshotMsg{Snapshot: port.snap})

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatalf("expected request to run")
	}
	if msg := cmd().(PerformedMsg); msg.Action != "request" {
		t.Fatalf("expected request, got %s", msg.Action)
	}

	for range 4 {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	}
	m, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil || m.err == nil {
		t.Fatalf("end is disabled before practice starts")
	}
}
