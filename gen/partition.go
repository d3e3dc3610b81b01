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
Chunk is a contiguous range of work units.
*/
type Chunk struct {
	First int64 // First unit of the chunk
	Count int64 // Number of units in the chunk
}

/*
StripedCount returns the number of global indices a worker handles when the
index range [0, total) is assigned by index modulo worker count.
*/
func StripedCount(total int64, workers, workerID int) int64 {
	count := total / int64(workers)

	if int64(workerID) < total%int64(workers) {
		count++
	}

	return count
}

/*
Chunks partitions [0, total) into one contiguous chunk per worker. The
remainder is spread over the first workers so chunk sizes differ by at
most one.
*/
func Chunks(total int64, workers int) []Chunk {
	chunks := make([]Chunk, workers)

	base := total / int64(workers)
	rest := total % int64(workers)

	var first int64

	for i := range chunks {
		count := base
		if int64(i) < rest {
			count++
		}

		chunks[i] = Chunk{first, count}
		first += count
	}

	return chunks
}
