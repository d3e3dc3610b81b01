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
Package synth contains the property value synthesizers of GraphGen.

A Generator is compiled once from a property declaration and is afterwards
used on the hot path of the generation run. Every generator carries the
header type suffix for the bulk load file format, a sampling function and a
bounds checking function. Sampled values are plain strings which can be
written verbatim into a delimited row - generators never produce field or
record separator characters.
*/
package synth

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"strings"
	"time"
)

/*
Kind classifies the value type of a generator.
*/
type Kind int

/*
Supported generator kinds
*/
const (
	KindInt Kind = iota
	KindLong
	KindDouble
	KindBool
	KindString
	KindDate
	KindList
)

/*
ListSeparator separates the elements of a generated list value.
*/
const ListSeparator = ";"

/*
alphanum is the character set for generated string values.
*/
const alphanum = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

/*
Generator produces values for a single declared property.
*/
type Generator struct {
	Name   string                    // Name of the property
	Kind   Kind                      // Value kind
	Suffix string                    // Type suffix for the file header
	sample func(r *rand.Rand) string // Compiled sampling function
	check  func(v string) error      // Compiled bounds check
}

/*
Sample returns a new random value for the property.
*/
func (g *Generator) Sample(r *rand.Rand) string {
	return g.sample(r)
}

/*
Check validates that a given serialized value satisfies the declared bounds
of the property. It is used by verification code and tests.
*/
func (g *Generator) Check(v string) error {
	return g.check(v)
}

/*
Header returns the header column for the property.
*/
func (g *Generator) Header() string {
	return fmt.Sprintf("%s:%s", g.Name, g.Suffix)
}

/*
NewInt creates a generator for 32 bit integer values in [min, max].
*/
func NewInt(name string, min, max int64) (*Generator, error) {

	if min > max {
		return nil, fmt.Errorf("Int property %s has min %d greater than max %d", name, min, max)
	}
	if min < math.MinInt32 || max > math.MaxInt32 {
		return nil, fmt.Errorf("Int property %s has bounds outside of the 32 bit integer range", name)
	}

	return &Generator{name, KindInt, "Int",
		func(r *rand.Rand) string {
			return strconv.FormatInt(min+r.Int63n(max-min+1), 10)
		},
		intChecker(name, min, max),
	}, nil
}

/*
NewLong creates a generator for 64 bit integer values in [min, max].
*/
func NewLong(name string, min, max int64) (*Generator, error) {

	if min > max {
		return nil, fmt.Errorf("Long property %s has min %d greater than max %d", name, min, max)
	}

	span := uint64(max - min) // Overflow safe also for full range bounds

	return &Generator{name, KindLong, "Long",
		func(r *rand.Rand) string {
			if span == math.MaxUint64 {
				return strconv.FormatInt(int64(r.Uint64()), 10)
			}
			return strconv.FormatInt(min+int64(r.Uint64()%(span+1)), 10)
		},
		intChecker(name, min, max),
	}, nil
}

/*
NewDouble creates a generator for double values in [min, max].
*/
func NewDouble(name string, min, max float64) (*Generator, error) {

	if math.IsNaN(min) || math.IsNaN(max) || math.IsInf(min, 0) || math.IsInf(max, 0) {
		return nil, fmt.Errorf("Double property %s has non-finite bounds", name)
	}
	if min > max {
		return nil, fmt.Errorf("Double property %s has min %v greater than max %v", name, min, max)
	}

	return &Generator{name, KindDouble, "Double",
		func(r *rand.Rand) string {
			return strconv.FormatFloat(min+r.Float64()*(max-min), 'g', -1, 64)
		},
		func(v string) error {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return err
			}
			if f < min || f > max {
				return fmt.Errorf("Value %v of property %s is out of bounds", v, name)
			}
			return nil
		},
	}, nil
}

/*
NewBool creates a generator for boolean values.
*/
func NewBool(name string) (*Generator, error) {

	return &Generator{name, KindBool, "Bool",
		func(r *rand.Rand) string {
			if r.Intn(2) == 0 {
				return "false"
			}
			return "true"
		},
		func(v string) error {
			if v != "true" && v != "false" {
				return fmt.Errorf("Value %v of property %s is not a boolean", v, name)
			}
			return nil
		},
	}, nil
}

/*
NewString creates a generator for alphanumeric strings with a length
in [minLen, maxLen].
*/
func NewString(name string, minLen, maxLen int) (*Generator, error) {

	if minLen < 0 || maxLen < minLen {
		return nil, fmt.Errorf("String property %s has an invalid length range [%d, %d]", name, minLen, maxLen)
	}

	return &Generator{name, KindString, "String",
		func(r *rand.Rand) string {
			buf := make([]byte, minLen+r.Intn(maxLen-minLen+1))
			for i := range buf {
				buf[i] = alphanum[r.Intn(len(alphanum))]
			}
			return string(buf)
		},
		func(v string) error {
			if len(v) < minLen || len(v) > maxLen {
				return fmt.Errorf("Value %v of property %s has an invalid length", v, name)
			}
			return nil
		},
	}, nil
}

/*
NewDate creates a generator for ISO dates with a year in [minYear, maxYear].
*/
func NewDate(name string, minYear, maxYear int) (*Generator, error) {

	if minYear < 0 || maxYear > 9999 || maxYear < minYear {
		return nil, fmt.Errorf("Date property %s has an invalid year range [%d, %d]", name, minYear, maxYear)
	}

	first := time.Date(minYear, 1, 1, 0, 0, 0, 0, time.UTC)
	days := int(time.Date(maxYear+1, 1, 1, 0, 0, 0, 0, time.UTC).Sub(first).Hours() / 24)

	return &Generator{name, KindDate, "Date",
		func(r *rand.Rand) string {
			return first.AddDate(0, 0, r.Intn(days)).Format("2006-01-02")
		},
		func(v string) error {
			d, err := time.Parse("2006-01-02", v)
			if err != nil {
				return err
			}
			if d.Year() < minYear || d.Year() > maxYear {
				return fmt.Errorf("Value %v of property %s is out of bounds", v, name)
			}
			return nil
		},
	}, nil
}

/*
NewList creates a generator for homogeneous lists of scalar values with a
length in [minLen, maxLen]. Nested lists are not supported.
*/
func NewList(name string, elem *Generator, minLen, maxLen int) (*Generator, error) {

	if elem == nil {
		return nil, errors.New("List property " + name + " has no element type")
	}
	if elem.Kind == KindList {
		return nil, fmt.Errorf("List property %s must have a scalar element type", name)
	}
	if minLen < 0 || maxLen < minLen {
		return nil, fmt.Errorf("List property %s has an invalid length range [%d, %d]", name, minLen, maxLen)
	}

	return &Generator{name, KindList, elem.Suffix + "[]",
		func(r *rand.Rand) string {
			items := make([]string, minLen+r.Intn(maxLen-minLen+1))
			for i := range items {
				items[i] = elem.sample(r)
			}
			return strings.Join(items, ListSeparator)
		},
		func(v string) error {
			var items []string

			if v != "" {
				items = strings.Split(v, ListSeparator)
			}
			if len(items) < minLen || len(items) > maxLen {
				return fmt.Errorf("Value %v of property %s has an invalid length", v, name)
			}
			for _, item := range items {
				if err := elem.check(item); err != nil {
					return err
				}
			}
			return nil
		},
	}, nil
}

/*
intChecker creates a bounds check for integer values.
*/
func intChecker(name string, min, max int64) func(v string) error {
	return func(v string) error {
		i, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return err
		}
		if i < min || i > max {
			return fmt.Errorf("Value %v of property %s is out of bounds", v, name)
		}
		return nil
	}
}
