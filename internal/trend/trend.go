package trend

import (
	"math/rand/v2"
	"time"
)

// Months are presentation labels only; they do not follow the wall clock.
var Months = [6]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun"}

const (
	MinVariation = 0.9
	MaxVariation = 1.1
)

type Point struct {
	Month    string  `json:"month"`
	Expenses float64 `json:"expenses"`
	Income   float64 `json:"income"`
}

// VariationSource yields values in [0, 1).
type VariationSource interface {
	Float64() float64
}

// NewRandSource returns a PCG source. A zero seed is replaced by the clock.
func NewRandSource(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Synthesize builds the illustrative series: one point per month with the
// expense total scaled by an independent factor in [0.9, 1.1] and income
// held constant.
func Synthesize(totalExpenses, income float64, src VariationSource) []Point {
	points := make([]Point, len(Months))
	for i, month := range Months {
		points[i] = Point{
			Month:    month,
			Expenses: totalExpenses * variation(src),
			Income:   income,
		}
	}
	return points
}

func variation(src VariationSource) float64 {
	r := MinVariation + src.Float64()*(MaxVariation-MinVariation)
	if r < MinVariation {
		return MinVariation
	}
	if r > MaxVariation {
		return MaxVariation
	}
	return r
}
