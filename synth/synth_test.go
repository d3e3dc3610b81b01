/*
 * GraphGen
 *
 * Copyright 2016 Matthias Ladkau. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package synth

import (
	"math"
	"math/rand"
	"strconv"
	"strings"
	"testing"
)

func TestIntGenerator(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))

	if _, err := NewInt("age", 10, 5); err == nil {
		t.Error("Invalid bounds should not compile")
		return
	}

	if _, err := NewInt("age", 0, math.MaxInt32+1); err == nil {
		t.Error("Out of range bounds should not compile")
		return
	}

	gen, err := NewInt("age", 18, 67)
	if err != nil {
		t.Error(err)
		return
	}

	if res := gen.Header(); res != "age:Int" {
		t.Error("Unexpected result:", res)
		return
	}

	for i := 0; i < 1000; i++ {
		v := gen.Sample(rnd)

		if err := gen.Check(v); err != nil {
			t.Error(err)
			return
		}
	}

	if err := gen.Check("99"); err == nil {
		t.Error("Out of bounds value should not check")
		return
	}
}

func TestLongGenerator(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))

	gen, err := NewLong("balance", math.MinInt64, math.MaxInt64)
	if err != nil {
		t.Error(err)
		return
	}

	for i := 0; i < 100; i++ {
		if err := gen.Check(gen.Sample(rnd)); err != nil {
			t.Error(err)
			return
		}
	}

	gen, err = NewLong("balance", -5, 5)
	if err != nil {
		t.Error(err)
		return
	}

	for i := 0; i < 1000; i++ {
		v, _ := strconv.ParseInt(gen.Sample(rnd), 10, 64)

		if v < -5 || v > 5 {
			t.Error("Unexpected result:", v)
			return
		}
	}
}

func TestDoubleGenerator(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))

	if _, err := NewDouble("score", math.Inf(-1), 0); err == nil {
		t.Error("Non-finite bounds should not compile")
		return
	}

	gen, err := NewDouble("score", 0.5, 0.75)
	if err != nil {
		t.Error(err)
		return
	}

	if res := gen.Header(); res != "score:Double" {
		t.Error("Unexpected result:", res)
		return
	}

	for i := 0; i < 1000; i++ {
		if err := gen.Check(gen.Sample(rnd)); err != nil {
			t.Error(err)
			return
		}
	}
}

func TestBoolGenerator(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))

	gen, _ := NewBool("active")

	seen := make(map[string]bool)

	for i := 0; i < 100; i++ {
		v := gen.Sample(rnd)

		if err := gen.Check(v); err != nil {
			t.Error(err)
			return
		}

		seen[v] = true
	}

	if !seen["true"] || !seen["false"] {
		t.Error("Unexpected result:", seen)
		return
	}
}

func TestStringGenerator(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))

	if _, err := NewString("name", 5, 2); err == nil {
		t.Error("Invalid length range should not compile")
		return
	}

	gen, err := NewString("name", 3, 8)
	if err != nil {
		t.Error(err)
		return
	}

	for i := 0; i < 1000; i++ {
		v := gen.Sample(rnd)

		if len(v) < 3 || len(v) > 8 {
			t.Error("Unexpected result:", v)
			return
		}

		if strings.ContainsAny(v, ",;\n") {
			t.Error("Value contains separator characters:", v)
			return
		}
	}
}

func TestDateGenerator(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))

	if _, err := NewDate("dob", 1990, 10000); err == nil {
		t.Error("Invalid year range should not compile")
		return
	}

	gen, err := NewDate("dob", 1970, 1975)
	if err != nil {
		t.Error(err)
		return
	}

	if res := gen.Header(); res != "dob:Date" {
		t.Error("Unexpected result:", res)
		return
	}

	for i := 0; i < 1000; i++ {
		if err := gen.Check(gen.Sample(rnd)); err != nil {
			t.Error(err)
			return
		}
	}

	if err := gen.Check("1980-01-01"); err == nil {
		t.Error("Out of bounds value should not check")
		return
	}
}

func TestListGenerator(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))

	elem, _ := NewInt("tag", 0, 9)

	if _, err := NewList("tags", nil, 0, 3); err == nil {
		t.Error("Missing element type should not compile")
		return
	}

	nested, _ := NewList("inner", elem, 0, 1)

	if _, err := NewList("tags", nested, 0, 3); err == nil {
		t.Error("Nested lists should not compile")
		return
	}

	gen, err := NewList("tags", elem, 1, 4)
	if err != nil {
		t.Error(err)
		return
	}

	if res := gen.Header(); res != "tags:Int[]" {
		t.Error("Unexpected result:", res)
		return
	}

	for i := 0; i < 1000; i++ {
		if err := gen.Check(gen.Sample(rnd)); err != nil {
			t.Error(err)
			return
		}
	}
}
