package states

import (
	"encoding/json"
	"fmt"
	"iter"
	"strings"

	"github.com/reusee/bridges/vars"
)

// Snapshot is an immutable copy of all six values.
type Snapshot struct {
	values [numFields]float64
}

func (s Snapshot) Get(f Field) float64 {
	if !f.Valid() {
		return 0
	}
	return s.values[f]
}

func (s Snapshot) Value(name string) (float64, error) {
	f, err := ParseField(name)
	if err != nil {
		return 0, err
	}
	return s.values[f], nil
}

func (s Snapshot) All() iter.Seq2[Field, float64] {
	return func(yield func(Field, float64) bool) {
		for f := range numFields {
			if !yield(f, s.values[f]) {
				return
			}
		}
	}
}

func (s Snapshot) Map() map[string]float64 {
	ret := make(map[string]float64, numFields)
	for f, v := range s.All() {
		ret[f.String()] = v
	}
	return ret
}

// With returns a copy with f set to the clamped v.
func (s Snapshot) With(f Field, v float64) Snapshot {
	if f.Valid() {
		s.values[f] = vars.ClampUnit(v)
	}
	return s
}

func (s Snapshot) String() string {
	var b strings.Builder
	for f, v := range s.All() {
		if f > 0 {
			b.WriteString(" ")
		}
		fmt.Fprintf(&b, "%s=%.2f", f, v)
	}
	return b.String()
}

func (s Snapshot) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Map())
}

func (s *Snapshot) UnmarshalJSON(data []byte) error {
	var m map[string]float64
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	var ret Snapshot
	for name, v := range m {
		f, err := ParseField(name)
		if err != nil {
			return err
		}
		ret.values[f] = vars.ClampUnit(v)
	}
	*s = ret
	return nil
}
