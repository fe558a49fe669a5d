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
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSourceIsDeterministic(t *testing.T) {
	a := NewSource(42, "customers", 3)
	b := NewSource(42, "customers", 3)
	for i := 0; i < 100; i++ {
		require.Equal(t, a.Uint64(), b.Uint64())
	}
	assert.Equal(t, a.Faker().Name(), b.Faker().Name())
}

func TestDeriveSeparatesDomainsAndShards(t *testing.T) {
	base := Derive(42, "customers", 0)
	assert.NotEqual(t, base, Derive(42, "customers", 1))
	assert.NotEqual(t, base, Derive(42, "products", 0))
	assert.NotEqual(t, base, Derive(43, "customers", 0))
}

func TestPoissonMean(t *testing.T) {
	s := NewSource(1, "poisson", 0)
	for _, mean := range []float64{3.5, 12, 45} {
		const n = 50_000
		sum := 0
		for i := 0; i < n; i++ {
			sum += s.Poisson(mean)
		}
		got := float64(sum) / n
		assert.InDelta(t, mean, got, mean*0.03, "mean %v", mean)
	}
	assert.Zero(t, s.Poisson(0))
}

func TestWeightedIndexConverges(t *testing.T) {
	s := NewSource(7, "weights", 0)
	weights := []float64{0.083, 0.166, 0.322, 0.429}
	counts := make([]int, len(weights))
	const n = 100_000
	for i := 0; i < n; i++ {
		counts[s.WeightedIndex(weights)]++
	}
	for i, w := range weights {
		assert.InDelta(t, w, float64(counts[i])/n, 0.01)
	}
}

func TestIntRangeInclusive(t *testing.T) {
	s := NewSource(9, "range", 0)
	seen := map[int]bool{}
	for i := 0; i < 1000; i++ {
		v := s.IntRange(3, 8)
		require.GreaterOrEqual(t, v, 3)
		require.LessOrEqual(t, v, 8)
		seen[v] = true
	}
	assert.Len(t, seen, 6)
	assert.Equal(t, 5, s.IntRange(5, 5))
}

func TestLogNormalPositive(t *testing.T) {
	s := NewSource(11, "lognormal", 0)
	for i := 0; i < 1000; i++ {
		v := s.LogNormal(math.Log(1000), 0.5)
		require.Greater(t, v, 0.0)
	}
}

func TestSampleDistinct(t *testing.T) {
	s := NewSource(5, "sample", 0)
	items := []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	got := Sample(s, items, 4)
	require.Len(t, got, 4)
	seen := map[int]bool{}
	for _, v := range got {
		assert.False(t, seen[v])
		seen[v] = true
	}
	assert.Len(t, Sample(s, items, 20), len(items))
}

func TestUUIDAllocatorStable(t *testing.T) {
	a := NewUUIDAllocator(42, "customer")
	assert.Equal(t, a.ID(17), NewUUIDAllocator(42, "customer").ID(17))
	assert.NotEqual(t, a.ID(17), a.ID(18))
	assert.NotEqual(t, a.ID(17), NewUUIDAllocator(43, "customer").ID(17))
	assert.Len(t, a.ID(0), 36)
}

func TestShardSequenceDisjoint(t *testing.T) {
	alloc := NewUUIDAllocator(42, "transaction")
	a, b := alloc.Shard(0), alloc.Shard(1)
	seen := map[string]bool{}
	for i := 0; i < 500; i++ {
		for _, id := range []string{a.Next(), b.Next()} {
			require.False(t, seen[id])
			seen[id] = true
		}
	}
	assert.Equal(t, alloc.Shard(0).Next(), NewUUIDAllocator(42, "transaction").Shard(0).Next())
}
