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
Package sampler contains the target sampler of GraphGen.

The target sampler draws distinct destination identifiers for an edge from
the contiguous identifier pool of a vertex type. Sampling is without
replacement and can exclude the source identifier to avoid self-loops.
*/
package sampler

import "math/rand"

/*
Range is a contiguous pool of global identifiers.
*/
type Range struct {
	First int64 // First identifier of the pool
	Count int64 // Number of identifiers in the pool
}

/*
Contains checks if a given identifier is part of the pool.
*/
func (r Range) Contains(id int64) bool {
	return id >= r.First && id < r.First+r.Count
}

/*
Targets draws k distinct identifiers from a pool. The identifier exclude is
never drawn (pass an identifier outside of the pool to disable the
exclusion). If fewer than k identifiers are available then the full
remaining pool is returned and the second return value is true - callers
should log this as a non-fatal degradation.
*/
func Targets(rnd *rand.Rand, pool Range, k int64, exclude int64) ([]int64, bool) {

	excl := exclude - pool.First
	if excl < 0 || excl >= pool.Count {
		excl = -1
	}

	avail := pool.Count
	if excl >= 0 {
		avail--
	}

	toID := func(p int64) int64 {
		if excl >= 0 && p >= excl {
			p++
		}
		return pool.First + p
	}

	if k >= avail {

		// Degrade gracefully and hand out whatever is there

		ids := make([]int64, 0, avail)
		for p := int64(0); p < avail; p++ {
			ids = append(ids, toID(p))
		}

		return ids, k > avail
	}

	if k*2 >= avail {

		// Large draws materialize the pool and run a partial Fisher-Yates
		// shuffle - cheaper than rejection once k approaches the pool size

		positions := make([]int64, avail)
		for i := range positions {
			positions[i] = int64(i)
		}

		ids := make([]int64, k)
		for i := int64(0); i < k; i++ {
			j := i + rnd.Int63n(avail-i)
			positions[i], positions[j] = positions[j], positions[i]
			ids[i] = toID(positions[i])
		}

		return ids, false
	}

	// Small draws use Floyd's sampling which touches only k positions

	picked := make(map[int64]bool, k)
	ids := make([]int64, 0, k)

	for i := avail - k; i < avail; i++ {
		j := rnd.Int63n(i + 1)

		if picked[j] {
			j = i
		}

		picked[j] = true
		ids = append(ids, toID(j))
	}

	return ids, false
}
