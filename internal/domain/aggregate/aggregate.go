// Package aggregate reduces a sequence of optional scalars to one value.
//
// Callers feed only the values that are present; an aggregator that saw no
// values reports no result instead of a number.
package aggregate

import "math"

// Aggregator accumulates values and reports their aggregate.
type Aggregator interface {
	// Update adds one value.
	Update(v float64)
	// Result returns the aggregate, and false when no value was added.
	Result() (float64, bool)
}

// Factory builds a fresh Aggregator. Pipelines take factories so that a
// different definition (weighted, median, ...) can be swapped in.
type Factory func() Aggregator

// Mean is the arithmetic mean.
type Mean struct {
	sum   float64
	count int
}

// NewMean returns an empty arithmetic mean.
func NewMean() Aggregator { return &Mean{} }

// Update adds v.
func (m *Mean) Update(v float64) {
	m.sum += v
	m.count++
}

// Result returns the mean.
func (m *Mean) Result() (float64, bool) {
	if m.count == 0 {
		return 0, false
	}
	return m.sum / float64(m.count), true
}

// CircularMean averages compass angles in degrees by summing unit vectors,
// so 350 and 10 average to 0 rather than 180.
type CircularMean struct {
	sin, cos float64
	count    int
}

// NewCircularMean returns an empty circular mean.
func NewCircularMean() Aggregator { return &CircularMean{} }

// Update adds an angle in degrees.
func (c *CircularMean) Update(deg float64) {
	rad := deg * math.Pi / 180
	c.sin += math.Sin(rad)
	c.cos += math.Cos(rad)
	c.count++
}

// Result returns the mean angle normalized to [0, 360).
func (c *CircularMean) Result() (float64, bool) {
	if c.count == 0 {
		return 0, false
	}
	deg := math.Atan2(c.sin, c.cos) * 180 / math.Pi
	if deg < 0 {
		deg += 360
	}
	if deg >= 360 {
		deg -= 360
	}
	return deg, true
}

// Of feeds values into a fresh aggregator from f and returns the result
// as a pointer, nil when values is empty.
func Of(f Factory, values ...float64) *float64 {
	a := f()
	for _, v := range values {
		a.Update(v)
	}
	return Ptr(a)
}

// Ptr converts an aggregator's result into an optional value.
func Ptr(a Aggregator) *float64 {
	v, ok := a.Result()
	if !ok {
		return nil
	}
	return &v
}
