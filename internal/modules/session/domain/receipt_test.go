package domain_test

import (
	"testing"
	"time"

	"keycycle/internal/modules/session/domain"
)

func at(minute int) time.Time {
	return time.Date(2026, 10, 15, 10, minute, 0, 0, time.UTC)
}

func TestHistoryAppendAndTruncateDoNotAlias(t *testing.T) {
	t.Parallel()
	var h domain.History
	h1 := h.Append(domain.TimeEntry{State: domain.StateRequestingNewKey, At: at(0).Unix()})
	h2 := h1.Append(domain.TimeEntry{State: domain.StateWorking, At: at(1).Unix()})
	if len(h1) != 1 || len(h2) != 2 {
		t.Fatalf("unexpected lengths %d %d", len(h1), len(h2))
	}
	h3 := h2.TruncateTail()
	if len(h3) != 1 || len(h2) != 2 {
		t.Fatalf("truncate should remove exactly one entry without touching the source")
	}
	h4 := h3.Append(domain.TimeEntry{State: domain.StateResting, At: at(2).Unix()})
	if h2[1].State != domain.StateWorking || h4[1].State != domain.StateResting {
		t.Fatalf("append after truncate must not overwrite earlier history")
	}
	if empty := (domain.History{}).TruncateTail(); len(empty) != 0 {
		t.Fatalf("truncating an empty history should be a no-op")
	}
	if _, ok := (domain.History{}).Tail(); ok {
		t.Fatalf("empty history has no tail")
	}
}

func TestReceiptIsASnapshot(t *testing.T) {
	t.Parallel()
	data := domain.NewData().SelectKey(domain.LastKeySelector{})
	data = data.Mark(domain.StateWorking, domain.StateRequestingNewKey, at(0)).Commit()
	data, err := data.ApplyRepetitionDelta(1)
	if err != nil {
		t.Fatalf("increment: %v", err)
	}
	receipt := data.ConstructReceipt("r-1", at(5))

	later, err := data.ApplyRepetitionDelta(1)
	if err != nil {
		t.Fatalf("increment: %v", err)
	}
	later = later.Mark(domain.StateResting, domain.StateWorking, at(6)).Commit()

	if receipt.KeyArchive[11].Repetitions != 1 {
		t.Fatalf("receipt archive changed after catalog mutation: %d", receipt.KeyArchive[11].Repetitions)
	}
	if len(receipt.TimeStampArchive) != 1 || len(later.History()) != 2 {
		t.Fatalf("receipt history must not follow later appends")
	}
	if !receipt.StartedAt.Equal(at(0)) || receipt.Duration() != 5*time.Minute {
		t.Fatalf("unexpected receipt times: %s %s", receipt.StartedAt, receipt.Duration())
	}
}

func TestReceiptReportAttributesWorkToKeys(t *testing.T) {
	t.Parallel()
	var h domain.History
	h = h.Append(domain.TimeEntry{State: domain.StateRequestingNewKey, At: at(0).Unix(), KeyID: domain.NoKey})
	h = h.Append(domain.TimeEntry{State: domain.StateWorking, At: at(1).Unix(), KeyID: 2})
	h = h.Append(domain.TimeEntry{State: domain.StateResting, At: at(11).Unix(), KeyID: 2})
	h = h.Append(domain.TimeEntry{State: domain.StateWorking, At: at(13).Unix(), KeyID: 2})
	h = h.Append(domain.TimeEntry{State: domain.StateRequestingNewKey, At: at(18).Unix(), KeyID: 2})
	h = h.Append(domain.TimeEntry{State: domain.StateWorking, At: at(18).Unix(), KeyID: 7})
	h = h.Append(domain.TimeEntry{State: domain.StateFinishing, At: at(30).Unix(), KeyID: 7})

	catalog := domain.NewCatalog()
	catalog[2].Repetitions = 1
	catalog[7].Repetitions = 1
	r := domain.Receipt{ID: "r", StartedAt: at(0), EndedAt: at(30), KeyArchive: catalog, TimeStampArchive: h}

	report := r.Report()
	if len(report) != domain.KeyCount {
		t.Fatalf("expected a row per key, got %d", len(report))
	}
	if report[2].Work != 15*time.Minute || report[2].Name != "D" {
		t.Fatalf("expected 15m on D, got %s on %s", report[2].Work, report[2].Name)
	}
	if report[7].Work != 12*time.Minute {
		t.Fatalf("expected 12m on G, got %s", report[7].Work)
	}
	if r.TimeIn(domain.StateResting) != 2*time.Minute {
		t.Fatalf("expected 2m resting, got %s", r.TimeIn(domain.StateResting))
	}
	if r.KeysPracticed() != 2 || r.KeyArchive.TotalRepetitions() != 2 {
		t.Fatalf("unexpected totals")
	}
}
