package game

import (
	"fmt"
	"math"
	"math/rand"
)

// DefaultGrowthRate doubles the multiplier roughly every 13.9 seconds.
const DefaultGrowthRate = 0.05

// MultiplierClock maps elapsed running time to the round multiplier.
// It holds no state beyond its growth rate.
type MultiplierClock struct {
	Rate float64
}

func NewMultiplierClock(rate float64) MultiplierClock {
	return MultiplierClock{Rate: rate}
}

// At returns e^(rate * elapsedSeconds).
func (c MultiplierClock) At(elapsedSeconds float64) float64 {
	return math.Exp(c.Rate * elapsedSeconds)
}

// Multiplier is the default clock evaluated at elapsedSeconds.
func Multiplier(elapsedSeconds float64) float64 {
	return NewMultiplierClock(DefaultGrowthRate).At(elapsedSeconds)
}

// FormatMultiplier renders a multiplier the way the history shows it, e.g. "1.35x".
func FormatMultiplier(m float64) string {
	return fmt.Sprintf("%.2fx", m)
}

// UniformCrashPoint draws crash points uniformly from [min, max).
func UniformCrashPoint(min, max float64) func() float64 {
	return func() float64 {
		return min + rand.Float64()*(max-min)
	}
}
