package states

import (
	"github.com/reusee/bridges/configs"
)

// Baseline is the state at process start.
type Baseline Snapshot

var DefaultBaseline = Baseline(Snapshot{
	values: [numFields]float64{
		Awareness:  0.7,
		Creativity: 0.8,
		Curiosity:  0.9,
		Gratitude:  0.85,
		Connection: 0.6,
		Insight:    0.75,
	},
})

func (Module) Baseline(
	loader configs.Loader,
) Baseline {
	ret := Snapshot(DefaultBaseline)
	overrides := configs.First[map[string]float64](loader, "baseline")
	for name, v := range overrides {
		f, err := ParseField(name)
		if err != nil {
			// rejected by the schema already
			continue
		}
		ret = ret.With(f, v)
	}
	return Baseline(ret)
}
