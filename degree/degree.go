/*
 * GraphGen
 *
 * Copyright 2016 Matthias Ladkau. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

/*
Package degree contains the degree models of GraphGen.

A degree model describes the statistical distribution of the out-degree of
a vertex for one edge type. The model itself is immutable and shared
read-only between workers. Sampling state (the random source and the
prepared zipf generator) lives in a Sampler object which is owned by a
single worker.
*/
package degree

import (
	"math"
	"math/rand"
)

/*
Distribution is the statistical distribution of a degree model.
*/
type Distribution int

/*
Supported distributions
*/
const (
	Fixed Distribution = iota
	Uniform
	Normal
	Poisson
	LogNormal
	PowerLaw
)

/*
String returns a human-readable representation of the distribution.
*/
func (d Distribution) String() string {
	return [...]string{"fixed", "uniform", "normal", "poisson",
		"lognormal", "powerlaw"}[d]
}

/*
Rounding is the rounding mode which is applied to a sampled value before
it is clamped.
*/
type Rounding int

/*
Supported rounding modes
*/
const (
	RoundNearest Rounding = iota
	RoundFloor
	RoundCeil
)

/*
Model is a compiled degree model. Min and Max are the clamp range which is
applied after rounding. Pool is the size of the destination identifier pool
which caps power-law samples at Pool-1 so a sampled degree can never exceed
the number of available distinct targets.
*/
type Model struct {
	Dist   Distribution // Distribution to sample from
	Value  float64      // Fixed value
	Low    float64      // Lower bound (uniform)
	High   float64      // Upper bound (uniform)
	Mean   float64      // Mean (normal) or ln(median) (lognormal)
	Sigma  float64      // Standard deviation (normal, lognormal)
	Lambda float64      // Rate (poisson)
	Gamma  float64      // Exponent (powerlaw, must be > 1)
	Round  Rounding     // Rounding mode
	Min    int64        // Lower clamp bound
	Max    int64        // Upper clamp bound
	Pool   int64        // Destination pool size (powerlaw cap)
}

/*
Sampler draws degree values from a model using a worker-owned random source.
*/
type Sampler struct {
	model *Model
	rnd   *rand.Rand
	zipf  *rand.Zipf
}

/*
NewSampler creates a new sampler for a given model and random source.
*/
func NewSampler(model *Model, rnd *rand.Rand) *Sampler {
	var zipf *rand.Zipf

	if model.Dist == PowerLaw {
		imax := uint64(0)

		if model.Pool > 1 {
			imax = uint64(model.Pool - 1)
		}

		zipf = rand.NewZipf(rnd, model.Gamma, 1, imax)
	}

	return &Sampler{model, rnd, zipf}
}

/*
Sample draws a single degree value. The value is rounded according to the
model's rounding mode and clamped to [Min, Max].
*/
func (s *Sampler) Sample() int64 {
	var raw float64

	m := s.model

	switch m.Dist {
	case Fixed:
		raw = m.Value
	case Uniform:
		raw = m.Low + s.rnd.Float64()*(m.High-m.Low)
	case Normal:
		raw = m.Mean + s.rnd.NormFloat64()*m.Sigma
	case Poisson:
		raw = poisson(s.rnd, m.Lambda)
	case LogNormal:
		raw = math.Exp(m.Mean + s.rnd.NormFloat64()*m.Sigma)
	case PowerLaw:
		raw = float64(s.zipf.Uint64())
	}

	switch m.Round {
	case RoundFloor:
		raw = math.Floor(raw)
	case RoundCeil:
		raw = math.Ceil(raw)
	default:
		raw = math.Round(raw)
	}

	// Converting an over-range float to int64 is implementation-defined
	// so the clamp happens in float space first

	if math.IsNaN(raw) || raw < float64(m.Min) {
		return m.Min
	}
	if raw >= float64(m.Max) {
		return m.Max
	}

	val := int64(raw)

	if val < m.Min {
		val = m.Min
	}
	if val > m.Max {
		val = m.Max
	}

	return val
}

/*
poisson draws from a Poisson distribution. Knuth's multiplication method
is used for small lambda - for larger lambda the loop becomes expensive
and a normal approximation is statistically adequate.
*/
func poisson(rnd *rand.Rand, lambda float64) float64 {

	if lambda <= 0 {
		return 0
	}

	if lambda > 30 {
		return math.Max(0, math.Round(lambda+rnd.NormFloat64()*math.Sqrt(lambda)))
	}

	l := math.Exp(-lambda)
	k := 0.0
	p := 1.0

	for {
		p *= rnd.Float64()
		if p <= l {
			return k
		}
		k++
	}
}
