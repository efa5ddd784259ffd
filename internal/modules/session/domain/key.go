package domain

import (
	"fmt"
	"math/rand/v2"
	"strings"
)

const (
	KeyCount      = 12
	DefaultWeight = 100
	NoKey         = -1
)

// NoteNames maps a key nid to its pitch-class name.
var NoteNames = [KeyCount]string{"C", "C#", "D", "Eb", "E", "F", "F#", "G", "Ab", "A", "Bb", "B"}

type Key struct {
	NID         int `json:"nid" yaml:"nid"`
	Repetitions int `json:"repetitions" yaml:"repetitions"`
	Weight      int `json:"weight" yaml:"weight"`
}

func (k Key) Name() string {
	return KeyName(k.NID)
}

func KeyName(nid int) string {
	if nid < 0 || nid >= KeyCount {
		return "-"
	}
	return NoteNames[nid]
}

// Catalog holds every practice key indexed by nid. It is an array so that
// assigning or returning a Catalog always copies it.
type Catalog [KeyCount]Key

func NewCatalog() Catalog {
	var c Catalog
	for nid := range c {
		c[nid] = Key{NID: nid, Repetitions: 0, Weight: DefaultWeight}
	}
	return c
}

func (c Catalog) Keys() []Key {
	out := make([]Key, KeyCount)
	copy(out, c[:])
	return out
}

func (c Catalog) TotalRepetitions() int {
	total := 0
	for _, k := range c {
		total += k.Repetitions
	}
	return total
}

// Selector picks the index of the next key to practice.
type Selector interface {
	Select(c Catalog) int
}

const (
	SelectorUniform = "uniform"
	SelectorLast    = "last"
)

// UniformSelector picks uniformly over all keys. Weights are ignored.
type UniformSelector struct {
	rng *rand.Rand
}

func NewUniformSelector(rng *rand.Rand) UniformSelector {
	return UniformSelector{rng: rng}
}

func (s UniformSelector) Select(Catalog) int {
	if s.rng == nil {
		return rand.IntN(KeyCount)
	}
	return s.rng.IntN(KeyCount)
}

// LastKeySelector always picks the last key of the catalog.
type LastKeySelector struct{}

func (LastKeySelector) Select(Catalog) int {
	return KeyCount - 1
}

func NewSelector(name string) (Selector, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", SelectorUniform:
		return NewUniformSelector(nil), nil
	case SelectorLast:
		return LastKeySelector{}, nil
	default:
		return nil, fmt.Errorf("unsupported selector %q", name)
	}
}
