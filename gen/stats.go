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

import (
	"bytes"
	"fmt"
	"sort"
	"time"

	"devt.de/krotik/common/datautil"
	"devt.de/krotik/common/stringutil"
)

/*
maxRecordedWarnings is the number of recent warnings kept in the stats.
*/
const maxRecordedWarnings = 20

/*
DegreeReport describes the precomputed degree sequence of one edge type.
It is the main output of a dry run.
*/
type DegreeReport struct {
	EdgeType string  // Key of the edge type
	Sources  int64   // Number of source vertices
	Edges    int64   // Total number of edges the sequence describes
	Max      uint32  // Largest degree in the sequence
	Mean     float64 // Average degree of the sequence
}

/*
Stats holds the aggregated result of a generation run.
*/
type Stats struct {
	RunID        string               // Unique id of the run
	Started      string               // Timestamp when the run started
	Mode         string               // Topology mode of the run
	Workers      int                  // Number of workers
	Seed         int64                // Seed of the run
	DryRun       bool                 // True if no files were written
	Vertices     int64                // Total vertex rows written
	Edges        int64                // Total edge rows written
	Bytes        int64                // Total bytes written
	Files        int                  // Total files created
	VertexCounts map[string]int64     // Vertex rows per type label
	EdgeCounts   map[string]int64     // Edge rows per type label
	Warnings     int64                // Total number of degradations
	Elapsed      time.Duration        // Wall clock time of the run
	Reports      []DegreeReport       // Degree sequence reports (dry run)
	recent       *datautil.RingBuffer // Most recent warning messages
}

/*
NewStats creates a new empty stats object.
*/
func NewStats(runID, started, mode string, workers int, seed int64) *Stats {
	return &Stats{
		RunID:        runID,
		Started:      started,
		Mode:         mode,
		Workers:      workers,
		Seed:         seed,
		VertexCounts: make(map[string]int64),
		EdgeCounts:   make(map[string]int64),
		recent:       datautil.NewRingBuffer(maxRecordedWarnings),
	}
}

/*
RecordWarning records a degradation message.
*/
func (s *Stats) RecordWarning(msg string) {
	s.Warnings++
	s.recent.Add(msg)
}

/*
RecentWarnings returns the most recent degradation messages.
*/
func (s *Stats) RecentWarnings() []string {
	return s.recent.StringSlice()
}

/*
String returns a printable summary of the run.
*/
func (s *Stats) String() string {
	buf := new(bytes.Buffer)

	buf.WriteString(fmt.Sprintf("Run %s (%s mode, %d worker%s, seed %d)\n",
		s.RunID, s.Mode, s.Workers, stringutil.Plural(s.Workers), s.Seed))

	if s.DryRun {
		buf.WriteString("Dry run - no files were written\n")

		for _, r := range s.Reports {
			buf.WriteString(fmt.Sprintf("%s: %d edges from %d sources (max degree %d, mean %.2f)\n",
				r.EdgeType, r.Edges, r.Sources, r.Max, r.Mean))
		}

		return buf.String()
	}

	var labels []string
	for label := range s.VertexCounts {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	for _, label := range labels {
		buf.WriteString(fmt.Sprintf("Vertices %s: %d\n", label, s.VertexCounts[label]))
	}

	labels = labels[:0]
	for label := range s.EdgeCounts {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	for _, label := range labels {
		buf.WriteString(fmt.Sprintf("Edges %s: %d\n", label, s.EdgeCounts[label]))
	}

	buf.WriteString(fmt.Sprintf("Total: %d vertices, %d edges, %d bytes in %d file%s (%v)\n",
		s.Vertices, s.Edges, s.Bytes, s.Files, stringutil.Plural(s.Files), s.Elapsed))

	if s.Warnings > 0 {
		buf.WriteString(fmt.Sprintf("Degradations: %d (showing up to %d)\n",
			s.Warnings, maxRecordedWarnings))

		for _, w := range s.RecentWarnings() {
			buf.WriteString(w + "\n")
		}
	}

	return buf.String()
}
