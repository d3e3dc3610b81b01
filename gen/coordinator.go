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
Package gen contains the generation engine of GraphGen.

The coordinator owns the compiled schema, precomputes degree data and
supervises the workers. Every worker generates one partition of the global
workload completely independently - there is no shared mutable state and
no cross-worker I/O. Identifier allocation uses disjoint arithmetic
progressions so the workers need no coordination at all.

Reproducibility is per-worker: a run with the same schema, seed and worker
count produces the same output rows per worker. No ordering guarantee is
given across files of different runs.
*/
package gen

import (
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"math/rand"
	"path/filepath"
	"runtime"
	"time"

	"devt.de/krotik/common/cryptutil"
	"devt.de/krotik/common/lockutil"
	"devt.de/krotik/common/logutil"
	"devt.de/krotik/common/timeutil"
	"devt.de/krotik/graphgen/degree"
	"devt.de/krotik/graphgen/schema"
	"devt.de/krotik/graphgen/shard"
	"golang.org/x/sync/errgroup"
)

/*
Topology modes
*/
const (
	ModeGlobal = "global" // Striped slices of a sized global vertex range
	ModeEgo    = "ego"    // Contiguous chunks of two-hop ego neighbourhoods
)

/*
ManifestFile is the name of the run manifest which is written next to the
shard files after a successful run.
*/
const ManifestFile = "graphgen.manifest.json"

/*
Options are the runtime options of a generation run.
*/
type Options struct {
	Total     int64    // Total vertex count (global) or ego unit count (ego)
	Workers   int      // Number of workers (default: number of CPUs)
	Seed      int64    // Seed for all random sources
	Mode      string   // Topology mode
	OutputDir string   // Flat output directory
	Disks     []string // Mount points for round-robin output distribution
	BatchSize int      // Rows buffered per writer before a bulk write
	MaxLines  int64    // Rows per shard file before rollover
	ShareProb float64  // Probability of linking a leaf back to its ego
	DryRun    bool     // Compute and report degree data without writing
	LockFile  string   // Lock file held for the run (empty disables)
}

/*
Coordinator runs a generation run end-to-end.
*/
type Coordinator struct {
	model *schema.Model
	opts  *Options
	log   logutil.Logger
}

/*
New creates a new coordinator for a compiled schema. Unset options are
filled with defaults.
*/
func New(model *schema.Model, opts *Options) *Coordinator {

	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.Mode == "" {
		opts.Mode = ModeGlobal
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 1000
	}
	if opts.MaxLines <= 0 {
		opts.MaxLines = 500000
	}

	return &Coordinator{model, opts, logutil.GetLogger("graphgen.gen")}
}

/*
Run executes the generation run. The given context cancels in-flight
workers between work units - partially written shard files are left as-is.
*/
func (c *Coordinator) Run(ctx context.Context) (*Stats, error) {
	opts := c.opts

	if opts.Mode != ModeGlobal && opts.Mode != ModeEgo {
		return nil, fmt.Errorf("Unknown topology mode: %s", opts.Mode)
	}

	if opts.Mode == ModeGlobal && !c.model.Sized {
		return nil, fmt.Errorf("Global mode needs a schema with vertex type sizes")
	}

	if opts.Mode == ModeEgo && opts.Total <= 0 {
		return nil, fmt.Errorf("Ego mode needs a positive ego unit count")
	}

	if opts.LockFile != "" {

		// The lock file is released on every exit path of the run

		lf := lockutil.NewLockFile(opts.LockFile, time.Duration(2)*time.Second)

		if err := lf.Start(); err != nil {
			return nil, err
		}

		defer lf.Finish()
	}

	stats := NewStats(fmt.Sprintf("%x", cryptutil.GenerateUUID()),
		timeutil.MakeTimestamp(), opts.Mode, opts.Workers, opts.Seed)

	start := time.Now()

	c.log.Info("Starting ", opts.Mode, " run ", stats.RunID, " with ",
		opts.Workers, " workers")

	// In global mode all degree sequences are computed up front so the
	// total edge volume is known before any file is written

	var tables map[string]degree.Table

	if opts.Mode == ModeGlobal {
		tables = c.buildTables()
	}

	if opts.DryRun {
		c.dryRun(stats, tables)
		stats.Elapsed = time.Since(start)

		return stats, nil
	}

	g, gctx := errgroup.WithContext(ctx)

	workers := make([]*Worker, opts.Workers)

	for i := range workers {
		w := newWorker(i, c.model, opts, tables)
		workers[i] = w

		g.Go(func() error {
			return w.run(gctx)
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, w := range workers {
		c.mergeWorker(stats, w)
	}

	stats.Elapsed = time.Since(start)

	if err := c.writeManifest(stats); err != nil {
		return nil, err
	}

	c.log.Info("Finished run ", stats.RunID, ": ", stats.Vertices,
		" vertices, ", stats.Edges, " edges in ", stats.Elapsed)

	return stats, nil
}

/*
buildTables precomputes the degree table of every edge type. The tables
are built from a single seeded source in schema order so they do not
depend on the worker count.
*/
func (c *Coordinator) buildTables() map[string]degree.Table {
	tables := make(map[string]degree.Table)

	rnd := rand.New(rand.NewSource(c.opts.Seed))

	for _, et := range c.model.Edges {
		tables[et.Key()] = degree.BuildTable(degree.NewSampler(et.Degree, rnd),
			et.Source.Count)
	}

	return tables
}

/*
dryRun fills the stats with degree sequence reports without writing any
files. In ego mode the sequences are estimated by drawing one degree per
requested ego unit.
*/
func (c *Coordinator) dryRun(stats *Stats, tables map[string]degree.Table) {
	stats.DryRun = true

	rnd := rand.New(rand.NewSource(c.opts.Seed))

	for _, et := range c.model.Edges {
		t, ok := tables[et.Key()]

		if !ok {
			t = degree.BuildTable(degree.NewSampler(et.Degree, rnd), c.opts.Total)
		}

		stats.Reports = append(stats.Reports, DegreeReport{
			EdgeType: et.Key(),
			Sources:  int64(len(t)),
			Edges:    t.Total(),
			Max:      t.MaxDegree(),
			Mean:     t.MeanDegree(),
		})
	}
}

/*
mergeWorker merges the counters of a finished worker into the stats.
*/
func (c *Coordinator) mergeWorker(stats *Stats, w *Worker) {

	for label, count := range w.vertexCounts {
		stats.VertexCounts[label] += count
		stats.Vertices += count
	}

	for label, count := range w.edgeCounts {
		stats.EdgeCounts[label] += count
		stats.Edges += count
	}

	for _, sw := range w.writers {
		_, written, files := sw.Stats()
		stats.Bytes += written
		stats.Files += files
	}

	for _, msg := range w.warnings {
		stats.RecordWarning(msg)
	}

	// Degradations beyond the recorded sample still count

	stats.Warnings += w.warningCount - int64(len(w.warnings))
}

/*
writeManifest writes the run manifest next to the shard files. With
multiple output disks the manifest goes to the first disk.
*/
func (c *Coordinator) writeManifest(stats *Stats) error {
	root := shard.DiskFor(0, c.opts.Disks, c.opts.OutputDir)

	data, err := json.MarshalIndent(map[string]interface{}{
		"runid":    stats.RunID,
		"started":  stats.Started,
		"mode":     stats.Mode,
		"workers":  stats.Workers,
		"seed":     stats.Seed,
		"vertices": stats.VertexCounts,
		"edges":    stats.EdgeCounts,
		"bytes":    stats.Bytes,
		"files":    stats.Files,
		"warnings": stats.Warnings,
	}, "", "    ")

	if err == nil {
		err = ioutil.WriteFile(filepath.Join(root, ManifestFile), data, 0660)
	}

	return err
}
