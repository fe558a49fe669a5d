/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package random

import (
	"encoding/binary"
	"math"
	"math/rand/v2"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/cespare/xxhash/v2"
)

// Source is a deterministic random stream owned by a single goroutine.
// Two sources built from the same (seed, domain, shard) yield identical
// sequences.
type Source struct {
	rng   *rand.Rand
	faker *gofakeit.Faker
}

// Derive hashes the seed with a domain label and a shard number.
func Derive(seed uint64, domain string, shard int) uint64 {
	d := xxhash.New()
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], seed)
	_, _ = d.Write(buf[:])
	_, _ = d.WriteString(domain)
	binary.LittleEndian.PutUint64(buf[:], uint64(shard))
	_, _ = d.Write(buf[:])
	v := d.Sum64()
	if v == 0 {
		// gofakeit treats a zero seed as a request for crypto randomness
		v = 1
	}
	return v
}

func NewSource(seed uint64, domain string, shard int) *Source {
	s := Derive(seed, domain, shard)
	return &Source{
		rng:   rand.New(rand.NewPCG(s, s^0x9e3779b97f4a7c15)),
		faker: gofakeit.New(s),
	}
}

// Faker exposes the seeded fake-data generator tied to this source.
func (s *Source) Faker() *gofakeit.Faker {
	return s.faker
}

func (s *Source) Float64() float64 {
	return s.rng.Float64()
}

func (s *Source) Uint64() uint64 {
	return s.rng.Uint64()
}

// IntN returns a value in [0, n).
func (s *Source) IntN(n int) int {
	return s.rng.IntN(n)
}

// IntRange returns a value in [lo, hi].
func (s *Source) IntRange(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + s.rng.IntN(hi-lo+1)
}

// Uniform returns a value in [lo, hi).
func (s *Source) Uniform(lo, hi float64) float64 {
	return lo + (hi-lo)*s.rng.Float64()
}

func (s *Source) Bernoulli(p float64) bool {
	return s.rng.Float64() < p
}

func (s *Source) Normal(mean, stddev float64) float64 {
	return mean + stddev*s.rng.NormFloat64()
}

// LogNormal draws exp(N(mu, sigma)).
func (s *Source) LogNormal(mu, sigma float64) float64 {
	return math.Exp(s.Normal(mu, sigma))
}

// Poisson uses Knuth multiplication for small means and a rounded normal
// approximation above 30.
func (s *Source) Poisson(mean float64) int {
	if mean <= 0 {
		return 0
	}
	if mean >= 30 {
		n := math.Round(s.Normal(mean, math.Sqrt(mean)))
		if n < 0 {
			return 0
		}
		return int(n)
	}
	limit := math.Exp(-mean)
	k := 0
	p := s.rng.Float64()
	for p > limit {
		k++
		p *= s.rng.Float64()
	}
	return k
}

// WeightedIndex draws an index with probability proportional to its weight.
// Weights need not sum to one; a zero total yields a uniform draw.
func (s *Source) WeightedIndex(weights []float64) int {
	total := 0.0
	for _, w := range weights {
		total += w
	}
	if total <= 0 {
		return s.rng.IntN(len(weights))
	}
	r := s.rng.Float64() * total
	for i, w := range weights {
		r -= w
		if r < 0 {
			return i
		}
	}
	return len(weights) - 1
}

// Skewed returns u^power for uniform u; power > 1 pulls draws toward zero.
func (s *Source) Skewed(power float64) float64 {
	return math.Pow(s.rng.Float64(), power)
}

func (s *Source) Shuffle(n int, swap func(i, j int)) {
	s.rng.Shuffle(n, swap)
}

// Pick returns a uniformly chosen element of a non-empty slice.
func Pick[T any](s *Source, items []T) T {
	return items[s.rng.IntN(len(items))]
}

// Sample returns k distinct elements chosen without replacement.
func Sample[T any](s *Source, items []T, k int) []T {
	if k > len(items) {
		k = len(items)
	}
	idx := s.rng.Perm(len(items))[:k]
	out := make([]T, k)
	for i, j := range idx {
		out[i] = items[j]
	}
	return out
}
