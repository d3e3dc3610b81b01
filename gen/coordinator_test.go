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
	"io/ioutil"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"devt.de/krotik/graphgen/schema"
	"devt.de/krotik/graphgen/shard"
)

const testSchema = `
graph: test
vertices:
- label: person
  share: 70
  properties:
  - name: age
    type: int
    min: 18
    max: 67
- label: company
  share: 30
edges:
- label: worksAt
  from: person
  to: company
  degree:
    dist: fixed
    value: 2
`

/*
readRows collects all data rows below a directory keyed by type label.
*/
func readRows(t *testing.T, dir string) map[string][][]string {
	rows := make(map[string][][]string)

	labels, err := ioutil.ReadDir(dir)
	if err != nil {
		t.Error(err)
		return rows
	}

	for _, label := range labels {
		files, err := ioutil.ReadDir(filepath.Join(dir, label.Name()))
		if err != nil {
			t.Error(err)
			return rows
		}

		for _, f := range files {
			out, err := ioutil.ReadFile(filepath.Join(dir, label.Name(), f.Name()))
			if err != nil {
				t.Error(err)
				return rows
			}

			lines := strings.Split(strings.TrimSpace(string(out)), "\n")

			for _, line := range lines[1:] {
				if line != "" {
					rows[label.Name()] = append(rows[label.Name()],
						strings.Split(line, ","))
				}
			}
		}
	}

	return rows
}

func compileTestSchema(t *testing.T, doc string, total int64) *schema.Model {
	d, err := schema.Parse([]byte(doc))
	if err != nil {
		t.Error(err)
		return nil
	}

	m, err := d.Compile(total)
	if err != nil {
		t.Error(err)
		return nil
	}

	return m
}

func TestGlobalRun(t *testing.T) {
	root, _ := ioutil.TempDir("", "gentest")
	defer os.RemoveAll(root)

	m := compileTestSchema(t, testSchema, 1000)
	if m == nil {
		return
	}

	c := New(m, &Options{
		Total:     1000,
		Workers:   3,
		Seed:      42,
		Mode:      ModeGlobal,
		OutputDir: root,
		BatchSize: 10,
		MaxLines:  100,
	})

	stats, err := c.Run(context.Background())
	if err != nil {
		t.Error(err)
		return
	}

	// The requested split must be exact

	if stats.Vertices != 1000 || stats.VertexCounts["person"] != 700 ||
		stats.VertexCounts["company"] != 300 {
		t.Error("Unexpected result:", stats.VertexCounts)
		return
	}

	if stats.Edges != 1400 || stats.EdgeCounts["worksAt"] != 1400 {
		t.Error("Unexpected result:", stats.EdgeCounts)
		return
	}

	vrows := readRows(t, filepath.Join(root, shard.KindVertices))
	erows := readRows(t, filepath.Join(root, shard.KindEdges))

	if len(vrows["person"]) != 700 || len(vrows["company"]) != 300 {
		t.Error("Unexpected result:", len(vrows["person"]), len(vrows["company"]))
		return
	}

	// Vertex identifiers must be globally unique and inside the arena
	// of their type

	person := m.VertexType("person")
	company := m.VertexType("company")

	seen := make(map[int64]bool)

	for label, rows := range vrows {
		pool := m.VertexType(label).Pool()

		for _, row := range rows {
			id, err := strconv.ParseInt(row[0], 10, 64)
			if err != nil {
				t.Error(err)
				return
			}

			if seen[id] {
				t.Error("Duplicate identifier:", id)
				return
			}
			seen[id] = true

			if !pool.Contains(id) {
				t.Error("Identifier outside of its type pool:", id)
				return
			}

			if row[1] != label {
				t.Error("Unexpected result:", row)
				return
			}
		}
	}

	// Every person row must satisfy the declared property bounds and
	// have exactly 2 outgoing edges

	outdegs := make(map[string]int)

	for _, row := range erows["worksAt"] {
		from, _ := strconv.ParseInt(row[0], 10, 64)
		to, _ := strconv.ParseInt(row[1], 10, 64)

		if !person.Pool().Contains(from) || !company.Pool().Contains(to) {
			t.Error("Edge endpoint outside of its type pool:", row)
			return
		}

		outdegs[row[0]]++
	}

	for _, row := range vrows["person"] {

		if err := person.Props[0].Check(row[3]); err != nil {
			t.Error(err)
			return
		}

		if row[2] != "2" || outdegs[row[0]] != 2 {
			t.Error("Unexpected result:", row, outdegs[row[0]])
			return
		}
	}

	// A successful run leaves a manifest

	if res, _ := ioutil.ReadFile(filepath.Join(root, ManifestFile)); !strings.Contains(
		string(res), stats.RunID) {
		t.Error("Unexpected result:", string(res))
		return
	}
}

func TestGlobalRunDeterminism(t *testing.T) {

	run := func() *Stats {
		root, _ := ioutil.TempDir("", "gentest")
		defer os.RemoveAll(root)

		m := compileTestSchema(t, testSchema, 1000)
		if m == nil {
			return nil
		}

		c := New(m, &Options{Total: 1000, Workers: 3, Seed: 7,
			Mode: ModeGlobal, OutputDir: root})

		stats, err := c.Run(context.Background())
		if err != nil {
			t.Error(err)
			return nil
		}

		return stats
	}

	s1 := run()
	s2 := run()

	if s1 == nil || s2 == nil {
		return
	}

	if s1.Vertices != s2.Vertices || s1.Edges != s2.Edges || s1.Bytes != s2.Bytes {
		t.Error("Unexpected result:", s1, s2)
		return
	}
}

func TestShortPoolDegradation(t *testing.T) {
	root, _ := ioutil.TempDir("", "gentest")
	defer os.RemoveAll(root)

	m := compileTestSchema(t, `
vertices:
- label: person
  share: 50
- label: company
  share: 50
edges:
- label: worksAt
  from: person
  to: company
  degree:
    dist: fixed
    value: 10
`, 10)
	if m == nil {
		return
	}

	c := New(m, &Options{Total: 10, Workers: 1, Seed: 1,
		Mode: ModeGlobal, OutputDir: root})

	stats, err := c.Run(context.Background())
	if err != nil {
		t.Error(err)
		return
	}

	// The pool of 5 companies cannot satisfy a degree of 10 - every
	// person gets all 5 companies and a logged degradation

	if stats.Edges != 25 || stats.Warnings != 5 {
		t.Error("Unexpected result:", stats.Edges, stats.Warnings)
		return
	}

	if res := stats.RecentWarnings(); len(res) != 5 {
		t.Error("Unexpected result:", res)
		return
	}

	if !strings.Contains(stats.String(), "Degradations: 5") {
		t.Error("Unexpected result:", stats.String())
		return
	}
}

func TestEgoRun(t *testing.T) {
	root, _ := ioutil.TempDir("", "gentest")
	defer os.RemoveAll(root)

	m := compileTestSchema(t, `
vertices:
- label: account
  connections:
  - label: transfers
    to: account
    degree:
      dist: fixed
      value: 3
`, 0)
	if m == nil {
		return
	}

	c := New(m, &Options{
		Total:     4,
		Workers:   2,
		Seed:      99,
		Mode:      ModeEgo,
		OutputDir: root,
		ShareProb: 1.0,
	})

	stats, err := c.Run(context.Background())
	if err != nil {
		t.Error(err)
		return
	}

	// Per ego unit: 1 ego, 3 alters, 9 leaves and 3+9+9 edges (the
	// share probability of 1 links every leaf back to the ego)

	if stats.Vertices != 52 || stats.Edges != 84 {
		t.Error("Unexpected result:", stats.Vertices, stats.Edges)
		return
	}

	vrows := readRows(t, filepath.Join(root, shard.KindVertices))

	seen := make(map[string]bool)

	for _, row := range vrows["account"] {
		if seen[row[0]] {
			t.Error("Duplicate identifier:", row[0])
			return
		}
		seen[row[0]] = true
	}

	if len(seen) != 52 {
		t.Error("Unexpected result:", len(seen))
		return
	}
}

func TestDryRun(t *testing.T) {
	root, _ := ioutil.TempDir("", "gentest")
	defer os.RemoveAll(root)

	m := compileTestSchema(t, testSchema, 100)
	if m == nil {
		return
	}

	c := New(m, &Options{Total: 100, Workers: 2, Seed: 1,
		Mode: ModeGlobal, OutputDir: root, DryRun: true})

	stats, err := c.Run(context.Background())
	if err != nil {
		t.Error(err)
		return
	}

	if !stats.DryRun || len(stats.Reports) != 1 {
		t.Error("Unexpected result:", stats)
		return
	}

	r := stats.Reports[0]

	if r.EdgeType != "person:worksAt:company" || r.Sources != 70 ||
		r.Edges != 140 || r.Max != 2 || r.Mean != 2 {
		t.Error("Unexpected result:", r)
		return
	}

	// No files must have been written

	if files, _ := ioutil.ReadDir(root); len(files) != 0 {
		t.Error("Unexpected result:", files)
		return
	}

	if !strings.Contains(stats.String(), "Dry run") {
		t.Error("Unexpected result:", stats.String())
		return
	}
}

func TestRunValidation(t *testing.T) {
	m := compileTestSchema(t, testSchema, 100)
	if m == nil {
		return
	}

	c := New(m, &Options{Mode: "spiral"})

	if _, err := c.Run(context.Background()); err == nil ||
		!strings.Contains(err.Error(), "Unknown topology mode") {
		t.Error("Unexpected result:", err)
		return
	}

	c = New(m, &Options{Mode: ModeEgo})

	if _, err := c.Run(context.Background()); err == nil ||
		!strings.Contains(err.Error(), "positive ego unit count") {
		t.Error("Unexpected result:", err)
		return
	}

	unsized := compileTestSchema(t, `
vertices:
- label: account
`, 0)
	if unsized == nil {
		return
	}

	c = New(unsized, &Options{Mode: ModeGlobal})

	if _, err := c.Run(context.Background()); err == nil ||
		!strings.Contains(err.Error(), "vertex type sizes") {
		t.Error("Unexpected result:", err)
		return
	}
}

func TestRunCancellation(t *testing.T) {
	root, _ := ioutil.TempDir("", "gentest")
	defer os.RemoveAll(root)

	m := compileTestSchema(t, testSchema, 10000)
	if m == nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := New(m, &Options{Total: 10000, Workers: 2, Seed: 1,
		Mode: ModeGlobal, OutputDir: root})

	if _, err := c.Run(ctx); err != context.Canceled {
		t.Error("Unexpected result:", err)
		return
	}

	// No manifest is written for an aborted run

	if _, err := os.Stat(filepath.Join(root, ManifestFile)); err == nil {
		t.Error("Manifest should not exist")
		return
	}
}
