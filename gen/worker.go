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
	"context"
	"fmt"
	"math/rand"
	"strconv"

	"devt.de/krotik/common/logutil"
	"devt.de/krotik/graphgen/degree"
	"devt.de/krotik/graphgen/sampler"
	"devt.de/krotik/graphgen/schema"
	"devt.de/krotik/graphgen/shard"
)

/*
ctxCheckInterval is the number of vertices a worker processes between
cancellation checks in global mode.
*/
const ctxCheckInterval = 1024

/*
Worker processes one partition of the global workload. A worker owns its
random source, its identifier allocators and its shard writers - it shares
nothing mutable with other workers and runs strictly sequentially.
*/
type Worker struct {
	id           int
	workers      int
	model        *schema.Model
	opts         *Options
	rnd          *rand.Rand
	tables       map[string]degree.Table
	writers      map[string]*shard.Writer
	root         string
	vertexCounts map[string]int64
	edgeCounts   map[string]int64
	warnings     []string
	warningCount int64
	log          logutil.Logger
}

/*
newWorker creates a new worker. The degree tables are shared read-only
between all workers.
*/
func newWorker(id int, model *schema.Model, opts *Options,
	tables map[string]degree.Table) *Worker {

	return &Worker{
		id:           id,
		workers:      opts.Workers,
		model:        model,
		opts:         opts,
		rnd:          rand.New(rand.NewSource(opts.Seed + int64(id))),
		tables:       tables,
		writers:      make(map[string]*shard.Writer),
		root:         shard.DiskFor(id, opts.Disks, opts.OutputDir),
		vertexCounts: make(map[string]int64),
		edgeCounts:   make(map[string]int64),
		log:          logutil.GetLogger("graphgen.gen"),
	}
}

/*
run drives the worker's partition end-to-end. All writers are closed when
the worker finishes - also on failure so partial shards are flushed and
readable.
*/
func (w *Worker) run(ctx context.Context) error {
	var err error

	if w.opts.Mode == ModeEgo {
		err = w.runEgo(ctx)
	} else {
		err = w.runGlobal(ctx)
	}

	for _, sw := range w.writers {
		if cerr := sw.Close(); err == nil {
			err = cerr
		}
	}

	return err
}

/*
runGlobal generates the worker's striped slice of the global vertex range.
The out-degree of every vertex is looked up in the precomputed degree
tables.
*/
func (w *Worker) runGlobal(ctx context.Context) error {
	steps := 0

	for _, vt := range w.model.Vertices {

		for idx := int64(w.id); idx < vt.Count; idx += int64(w.workers) {

			if steps%ctxCheckInterval == 0 {
				select {
				case <-ctx.Done():
					return ctx.Err()
				default:
				}
			}
			steps++

			id := vt.First + idx

			// Draw all edge targets first so the vertex row can carry
			// the actual out-degree

			var outdeg int

			targets := make([][]int64, len(vt.Conns))

			for ci, et := range vt.Conns {
				deg := int64(w.tables[et.Key()][idx])

				ids, short := sampler.Targets(w.rnd, et.Dest.Pool(), deg, id)
				if short {
					w.warn(fmt.Sprintf(
						"Vertex %d wanted %d %s targets but only %d were available",
						id, deg, et.Name, len(ids)))
				}

				targets[ci] = ids
				outdeg += len(ids)
			}

			if err := w.writeVertex(vt, id, outdeg); err != nil {
				return err
			}

			for ci, et := range vt.Conns {
				for _, to := range targets[ci] {
					if err := w.writeEdge(et, id, to); err != nil {
						return err
					}
				}
			}
		}
	}

	return nil
}

/*
pendingVertex is a vertex of an ego neighbourhood which has not been
written yet.
*/
type pendingVertex struct {
	vt     *schema.VertexType
	id     int64
	outdeg int
}

/*
pendingEdge is an edge of an ego neighbourhood which has not been written
yet.
*/
type pendingEdge struct {
	et       *schema.EdgeType
	from, to int64
}

/*
runEgo generates the worker's contiguous chunk of ego units. Every unit is
a two-hop neighbourhood: the ego vertex, its alters and the leaves below
each alter. With the configured sharing probability a leaf is also linked
directly to the ego which models shared neighbourhoods.
*/
func (w *Worker) runEgo(ctx context.Context) error {
	ego := w.model.Vertices[0]
	chunk := Chunks(w.opts.Total, w.workers)[w.id]

	allocs := make(map[string]*IDAllocator)
	samplers := make(map[string]*degree.Sampler)

	for u := int64(0); u < chunk.Count; u++ {

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := w.egoUnit(ego, allocs, samplers); err != nil {
			return err
		}
	}

	return nil
}

/*
egoUnit generates a single two-hop ego neighbourhood. The neighbourhood is
assembled in memory first so every vertex row carries its final out-degree.
*/
func (w *Worker) egoUnit(ego *schema.VertexType, allocs map[string]*IDAllocator,
	samplers map[string]*degree.Sampler) error {

	var vertices []pendingVertex
	var edges []pendingEdge

	egoID := w.alloc(allocs, ego).Next()
	egoOut := 0

	for _, et := range ego.Conns {

		deg := w.degreeSampler(samplers, et).Sample()

		for i := int64(0); i < deg; i++ {
			alterID := w.alloc(allocs, et.Dest).Next()

			edges = append(edges, pendingEdge{et, egoID, alterID})
			egoOut++

			alterOut := 0

			// The second and final hop - leaves are not expanded further

			for _, lt := range et.Dest.Conns {

				ldeg := w.degreeSampler(samplers, lt).Sample()

				for j := int64(0); j < ldeg; j++ {
					leafID := w.alloc(allocs, lt.Dest).Next()

					edges = append(edges, pendingEdge{lt, alterID, leafID})
					alterOut++

					if w.rnd.Float64() < w.opts.ShareProb {
						edges = append(edges, pendingEdge{lt, egoID, leafID})
						egoOut++
					}

					vertices = append(vertices, pendingVertex{lt.Dest, leafID, 0})
				}
			}

			vertices = append(vertices, pendingVertex{et.Dest, alterID, alterOut})
		}
	}

	if err := w.writeVertex(ego, egoID, egoOut); err != nil {
		return err
	}

	for _, pv := range vertices {
		if err := w.writeVertex(pv.vt, pv.id, pv.outdeg); err != nil {
			return err
		}
	}

	for _, pe := range edges {
		if err := w.writeEdge(pe.et, pe.from, pe.to); err != nil {
			return err
		}
	}

	return nil
}

/*
alloc returns the identifier allocator of a vertex type.
*/
func (w *Worker) alloc(allocs map[string]*IDAllocator, vt *schema.VertexType) *IDAllocator {
	a, ok := allocs[vt.Name]

	if !ok {
		a = NewIDAllocator(vt.First, w.id, w.workers)
		allocs[vt.Name] = a
	}

	return a
}

/*
degreeSampler returns the degree sampler of an edge type.
*/
func (w *Worker) degreeSampler(samplers map[string]*degree.Sampler,
	et *schema.EdgeType) *degree.Sampler {

	s, ok := samplers[et.Key()]

	if !ok {
		s = degree.NewSampler(et.Degree, w.rnd)
		samplers[et.Key()] = s
	}

	return s
}

/*
writeVertex writes a single vertex row.
*/
func (w *Worker) writeVertex(vt *schema.VertexType, id int64, outdeg int) error {
	sw, err := w.writer(shard.KindVertices, vt.Name, vt.Header())
	if err != nil {
		return err
	}

	cols := make([]string, 0, 3+len(vt.Props))
	cols = append(cols, strconv.FormatInt(id, 10), vt.Name, strconv.Itoa(outdeg))

	for _, p := range vt.Props {
		cols = append(cols, p.Sample(w.rnd))
	}

	w.vertexCounts[vt.Name]++

	return sw.WriteRow(cols...)
}

/*
writeEdge writes a single edge row.
*/
func (w *Worker) writeEdge(et *schema.EdgeType, from, to int64) error {
	sw, err := w.writer(shard.KindEdges, et.Name, et.Header())
	if err != nil {
		return err
	}

	cols := make([]string, 0, 3+len(et.Props))
	cols = append(cols, strconv.FormatInt(from, 10), strconv.FormatInt(to, 10), et.Name)

	for _, p := range et.Props {
		cols = append(cols, p.Sample(w.rnd))
	}

	w.edgeCounts[et.Name]++

	return sw.WriteRow(cols...)
}

/*
writer returns the shard writer for a record kind and type label.
*/
func (w *Worker) writer(kind, label, header string) (*shard.Writer, error) {
	key := kind + "/" + label

	sw, ok := w.writers[key]
	if ok {
		return sw, nil
	}

	sw, err := shard.NewWriter(w.root, kind, label, w.id, header,
		w.opts.BatchSize, w.opts.MaxLines)
	if err != nil {
		return nil, err
	}

	w.writers[key] = sw

	return sw, nil
}

/*
warn records a non-fatal degradation.
*/
func (w *Worker) warn(msg string) {
	w.warningCount++

	if len(w.warnings) < maxRecordedWarnings {
		w.warnings = append(w.warnings, msg)
	}

	w.log.Warning(msg)
}
