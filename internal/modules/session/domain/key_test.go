package domain_test

import (
	"errors"
	"math/rand/v2"
	"testing"

	"keycycle/internal/modules/session/domain"
)

func TestNewCatalogHasTwelveKeys(t *testing.T) {
	t.Parallel()
	c := domain.NewCatalog()
	if len(c.Keys()) != 12 {
		t.Fatalf("expected 12 keys, got %d", len(c.Keys()))
	}
	for i, k := range c {
		if k.NID != i || k.Repetitions != 0 || k.Weight != domain.DefaultWeight {
			t.Fatalf("unexpected key at %d: %+v", i, k)
		}
	}
	if c[1].Name() != "C#" || c[3].Name() != "Eb" || c[11].Name() != "B" {
		t.Fatalf("unexpected note names: %s %s %s", c[1].Name(), c[3].Name(), c[11].Name())
	}
	if domain.KeyName(domain.NoKey) != "-" {
		t.Fatalf("NoKey should render as -")
	}
}

func TestApplyRepetitionDeltaWithoutCurrentKey(t *testing.T) {
	t.Parallel()
	data := domain.NewData()
	next, err := data.ApplyRepetitionDelta(1)
	if !errors.Is(err, domain.ErrNoCurrentKey) {
		t.Fatalf("expected ErrNoCurrentKey, got %v", err)
	}
	if next.Catalog() != domain.NewCatalog() {
		t.Fatalf("catalog must be unmutated on failure")
	}
	if _, err := data.ApplyRepetitionDelta(-1); !errors.Is(err, domain.ErrNoCurrentKey) {
		t.Fatalf("decrement should fail the same way, got %v", err)
	}
}

func TestRepetitionDeltaRoundTrip(t *testing.T) {
	t.Parallel()
	data := domain.NewData().SelectKey(domain.LastKeySelector{})
	before, ok := data.CurrentKey()
	if !ok {
		t.Fatalf("expected current key after selection")
	}

	up, err := data.ApplyRepetitionDelta(1)
	if err != nil {
		t.Fatalf("increment: %v", err)
	}
	if k, _ := up.CurrentKey(); k.Repetitions != before.Repetitions+1 {
		t.Fatalf("expected %d repetitions, got %d", before.Repetitions+1, k.Repetitions)
	}
	if up.Catalog()[before.NID].Repetitions != before.Repetitions+1 {
		t.Fatalf("catalog was not written back by nid")
	}
	if data.Catalog()[before.NID].Repetitions != before.Repetitions {
		t.Fatalf("original value must not change")
	}

	down, err := up.ApplyRepetitionDelta(-1)
	if err != nil {
		t.Fatalf("decrement: %v", err)
	}
	if k, _ := down.CurrentKey(); k.Repetitions != before.Repetitions {
		t.Fatalf("round trip should restore %d, got %d", before.Repetitions, k.Repetitions)
	}
}

func TestRepetitionsMayGoNegative(t *testing.T) {
	t.Parallel()
	data := domain.NewData().SelectKey(domain.LastKeySelector{})
	down, err := data.ApplyRepetitionDelta(-1)
	if err != nil {
		t.Fatalf("decrement: %v", err)
	}
	if k, _ := down.CurrentKey(); k.Repetitions != -1 {
		t.Fatalf("expected signed counter -1, got %d", k.Repetitions)
	}
}

func TestSelectors(t *testing.T) {
	t.Parallel()
	if got := (domain.LastKeySelector{}).Select(domain.NewCatalog()); got != 11 {
		t.Fatalf("last selector should pick 11, got %d", got)
	}
	sel := domain.NewUniformSelector(rand.New(rand.NewPCG(1, 2)))
	for i := 0; i < 200; i++ {
		if got := sel.Select(domain.NewCatalog()); got < 0 || got >= domain.KeyCount {
			t.Fatalf("uniform selector out of range: %d", got)
		}
	}
	if _, err := domain.NewSelector("weighted"); err == nil {
		t.Fatalf("unknown selector should fail")
	}
	if s, err := domain.NewSelector("LAST"); err != nil || s.Select(domain.NewCatalog()) != 11 {
		t.Fatalf("expected last selector, got %v %v", s, err)
	}
	if _, err := domain.NewSelector(""); err != nil {
		t.Fatalf("empty selector should default to uniform: %v", err)
	}
}
