/*
 * GraphGen
 *
 * Copyright 2016 Matthias Ladkau. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package gen

/*
IDAllocator hands out identifiers for one (worker, vertex type) pair
without any cross-worker coordination. Worker i of n allocates the
arithmetic progression first+i, first+i+n, first+i+2n, ... - the
progressions of different workers are disjoint by construction.
*/
type IDAllocator struct {
	next   int64
	stride int64
}

/*
NewIDAllocator creates a new identifier allocator for a worker.
*/
func NewIDAllocator(first int64, workerID, workers int) *IDAllocator {
	return &IDAllocator{first + int64(workerID), int64(workers)}
}

/*
Next returns the next identifier of this allocator.
*/
func (a *IDAllocator) Next() int64 {
	id := a.next
	a.next += a.stride

	return id
}
