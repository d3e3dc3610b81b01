/*
 * GraphGen
 *
 * Copyright 2016 Matthias Ladkau. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package shard

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"devt.de/krotik/common/testutil"
)

func TestWriterRollover(t *testing.T) {
	root, err := ioutil.TempDir("", "shardtest")
	if err != nil {
		t.Error(err)
		return
	}
	defer os.RemoveAll(root)

	w, err := NewWriter(root, KindVertices, "person", 2,
		"~id,~label,outDegree:Int", 3, 4)
	if err != nil {
		t.Error(err)
		return
	}

	for i := 0; i < 10; i++ {
		if err := w.WriteRow(fmt.Sprint(i), "person", "0"); err != nil {
			t.Error(err)
			return
		}
	}

	if err := w.Close(); err != nil {
		t.Error(err)
		return
	}

	rows, written, files := w.Stats()

	if rows != 10 || files != 3 {
		t.Error("Unexpected result:", rows, files)
		return
	}

	if written == 0 {
		t.Error("Unexpected result:", written)
		return
	}

	// 10 rows with 4 rows per file give files with 4, 4 and 2 rows -
	// every file must carry the header

	dir := filepath.Join(root, KindVertices, "person")

	for i, expected := range []int{4, 4, 2} {
		out, err := ioutil.ReadFile(filepath.Join(dir,
			fmt.Sprintf("person_w2_%d.csv", i)))
		if err != nil {
			t.Error(err)
			return
		}

		lines := strings.Split(strings.TrimSpace(string(out)), "\n")

		if lines[0] != "~id,~label,outDegree:Int" {
			t.Error("Unexpected result:", lines[0])
			return
		}

		if len(lines)-1 != expected {
			t.Error("Unexpected result:", len(lines)-1)
			return
		}
	}
}

func TestWriterBatching(t *testing.T) {
	root, err := ioutil.TempDir("", "shardtest")
	if err != nil {
		t.Error(err)
		return
	}
	defer os.RemoveAll(root)

	w, err := NewWriter(root, KindEdges, "knows", 0,
		"~from,~to,~label", 100, 1000)
	if err != nil {
		t.Error(err)
		return
	}

	if err := w.WriteRow("1", "2", "knows"); err != nil {
		t.Error(err)
		return
	}

	// The row is still buffered - only the header has hit the disk

	name := filepath.Join(root, KindEdges, "knows", "knows_w0_0.csv")

	out, _ := ioutil.ReadFile(name)

	if strings.TrimSpace(string(out)) != "~from,~to,~label" {
		t.Error("Unexpected result:", string(out))
		return
	}

	if err := w.Flush(); err != nil {
		t.Error(err)
		return
	}

	out, _ = ioutil.ReadFile(name)

	if !strings.HasSuffix(strings.TrimSpace(string(out)), "1,2,knows") {
		t.Error("Unexpected result:", string(out))
		return
	}

	if err := w.Close(); err != nil {
		t.Error(err)
		return
	}
}

func TestWriterWriteErrors(t *testing.T) {
	root, err := ioutil.TempDir("", "shardtest")
	if err != nil {
		t.Error(err)
		return
	}
	defer os.RemoveAll(root)

	w, err := NewWriter(root, KindVertices, "person", 0,
		"~id,~label", 100, 1000)
	if err != nil {
		t.Error(err)
		return
	}

	// Swap in a file which fails after 5 bytes

	w.fp.Close()
	w.fp = testutil.NewTestingFile(5)

	if err := w.WriteRow("1", "person"); err != nil {
		t.Error(err)
		return
	}

	if err := w.Flush(); err == nil ||
		!strings.Contains(err.Error(), "Buffer is full") {
		t.Error("Unexpected result:", err)
		return
	}

	if err := w.Close(); err != nil {
		t.Error(err)
		return
	}
}

func TestDiskFor(t *testing.T) {

	if res := DiskFor(3, nil, "out"); res != "out" {
		t.Error("Unexpected result:", res)
		return
	}

	disks := []string{"/mnt/a", "/mnt/b", "/mnt/c"}

	if res := DiskFor(4, disks, "out"); res != "/mnt/b" {
		t.Error("Unexpected result:", res)
		return
	}
}
