/*
 * GraphGen
 *
 * Copyright 2016 Matthias Ladkau. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package degree

import "math"

/*
Table is a precomputed degree sequence for one edge type. Index i holds the
out-degree of the vertex with index i of the source vertex type. The table
is computed once by the coordinator and shared read-only between workers so
the total edge volume is known before any file is written.
*/
type Table []uint32

/*
BuildTable precomputes a degree table with n entries.
*/
func BuildTable(s *Sampler, n int64) Table {
	t := make(Table, n)

	for i := range t {
		d := s.Sample()

		if d > math.MaxUint32 {
			d = math.MaxUint32
		}

		t[i] = uint32(d)
	}

	return t
}

/*
Total returns the total number of edges described by the table.
*/
func (t Table) Total() int64 {
	var total int64

	for _, d := range t {
		total += int64(d)
	}

	return total
}

/*
MaxDegree returns the largest degree in the table.
*/
func (t Table) MaxDegree() uint32 {
	var max uint32

	for _, d := range t {
		if d > max {
			max = d
		}
	}

	return max
}

/*
MeanDegree returns the average degree of the table.
*/
func (t Table) MeanDegree() float64 {
	if len(t) == 0 {
		return 0
	}

	return float64(t.Total()) / float64(len(t))
}
