package states

import (
	"sync"

	"github.com/reusee/bridges/vars"
)

// Store holds the six scalars. A single mutex serializes writes against reads.
type Store struct {
	mu        sync.Mutex
	values    [numFields]float64
	baseline  Snapshot
	observers []func(Field, float64)
}

func NewStore(baseline Baseline) *Store {
	return &Store{
		values:   baseline.values,
		baseline: Snapshot(baseline),
	}
}

func (Module) Store(
	baseline Baseline,
) *Store {
	return NewStore(baseline)
}

// Set clamps value into [0, 1] and stores it. Unknown names return
// ErrUnknownField and leave the store unchanged.
func (s *Store) Set(name string, value float64) error {
	f, err := ParseField(name)
	if err != nil {
		return err
	}
	s.SetField(f, value)
	return nil
}

// SetField returns the stored, clamped value.
func (s *Store) SetField(f Field, value float64) float64 {
	if !f.Valid() {
		return 0
	}
	value = vars.ClampUnit(value)

	s.mu.Lock()
	s.values[f] = value
	observers := s.observers
	s.mu.Unlock()

	for _, fn := range observers {
		fn(f, value)
	}
	return value
}

func (s *Store) Get(name string) (float64, error) {
	f, err := ParseField(name)
	if err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values[f], nil
}

func (s *Store) GetAll() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		values: s.values,
	}
}

func (s *Store) Baseline() Snapshot {
	return s.baseline
}

func (s *Store) Reset() {
	for f, v := range s.baseline.All() {
		s.SetField(f, v)
	}
}

// OnChange registers fn to run after every successful write, outside the lock.
func (s *Store) OnChange(fn func(Field, float64)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	// copy on write, SetField iterates without the lock
	observers := make([]func(Field, float64), 0, len(s.observers)+1)
	observers = append(observers, s.observers...)
	s.observers = append(observers, fn)
}
