/*
 * GraphGen
 *
 * Copyright 2016 Matthias Ladkau. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package schema

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"devt.de/krotik/common/errorutil"
	"devt.de/krotik/graphgen/degree"
	"devt.de/krotik/graphgen/sampler"
	"devt.de/krotik/graphgen/synth"
)

/*
ArenaShift is the width of the identifier arena of a vertex type. Every
vertex type with index i owns the global identifier range
[i << ArenaShift, (i+1) << ArenaShift). Identifiers of different types can
therefore never collide regardless of how they are allocated within the
arena.
*/
const ArenaShift = 40

/*
Model is a compiled schema. It is owned by the coordinator and shared
read-only with all workers.
*/
type Model struct {
	Name     string        // Name of the described graph
	Total    int64         // Total vertex count described by the model
	Sized    bool          // True if the document declares type sizes
	Vertices []*VertexType // Compiled vertex types in document order
	Edges    []*EdgeType   // All compiled edge types
	lookup   map[string]*VertexType
}

/*
VertexType returns a compiled vertex type by its label.
*/
func (m *Model) VertexType(label string) *VertexType {
	return m.lookup[label]
}

/*
VertexType is a compiled vertex type.
*/
type VertexType struct {
	Name  string             // Type label
	Index int                // Position in the document
	Count int64              // Number of vertices of this type
	First int64              // First identifier of the type's arena
	Props []*synth.Generator // Compiled property generators
	Conns []*EdgeType        // Outgoing edge types
}

/*
Pool returns the contiguous identifier pool of the type.
*/
func (vt *VertexType) Pool() sampler.Range {
	return sampler.Range{First: vt.First, Count: vt.Count}
}

/*
Header returns the bulk load file header for vertices of this type.
*/
func (vt *VertexType) Header() string {
	cols := []string{"~id", "~label", "outDegree:Int"}

	for _, p := range vt.Props {
		cols = append(cols, p.Header())
	}

	return strings.Join(cols, ",")
}

/*
EdgeType is a compiled edge type.
*/
type EdgeType struct {
	Name   string             // Edge label
	Source *VertexType        // Source vertex type
	Dest   *VertexType        // Destination vertex type
	Degree *degree.Model      // Out-degree model
	Props  []*synth.Generator // Compiled property generators
}

/*
Header returns the bulk load file header for edges of this type.
*/
func (et *EdgeType) Header() string {
	cols := []string{"~from", "~to", "~label"}

	for _, p := range et.Props {
		cols = append(cols, p.Header())
	}

	return strings.Join(cols, ",")
}

/*
Key returns a unique key for the edge type. Edge labels may repeat between
different type pairs so the key includes source and destination.
*/
func (et *EdgeType) Key() string {
	return fmt.Sprintf("%s:%s:%s", et.Source.Name, et.Name, et.Dest.Name)
}

/*
Compile validates the document and produces a compiled model for a given
total vertex count. All validation failures are collected and reported as
a single error - nothing is generated from an invalid document.
*/
func (d *Document) Compile(total int64) (*Model, error) {
	ce := errorutil.NewCompositeError()

	m := &Model{
		Name:   d.Graph,
		Total:  total,
		lookup: make(map[string]*VertexType),
	}

	if len(d.Vertices) == 0 {
		ce.Add(fmt.Errorf("Document declares no vertex types"))
		return nil, &Error{ErrInvalidDocument, ce.Error()}
	}

	// First pass - create all vertex types so references can be resolved

	for i, decl := range d.Vertices {

		if decl.Label == "" {
			ce.Add(fmt.Errorf("Vertex type %d has no label", i))
			continue
		}

		if _, ok := m.lookup[decl.Label]; ok {
			ce.Add(fmt.Errorf("Vertex type %s is declared more than once", decl.Label))
			continue
		}

		vt := &VertexType{
			Name:  decl.Label,
			Index: i,
			First: int64(i) << ArenaShift,
		}

		m.lookup[decl.Label] = vt
		m.Vertices = append(m.Vertices, vt)
	}

	d.compileSizes(m, total, ce)

	// Second pass - compile properties, connections and standalone edges

	for _, decl := range d.Vertices {
		vt, ok := m.lookup[decl.Label]
		if !ok {
			continue
		}

		for _, p := range decl.Properties {
			if gen := compileProperty(fmt.Sprintf("Vertex type %s", vt.Name), p, ce); gen != nil {
				vt.Props = append(vt.Props, gen)
			}
		}

		for _, c := range decl.Connections {
			scope := fmt.Sprintf("Connection %s of vertex type %s", c.Label, vt.Name)

			dest, ok := m.lookup[c.To]
			if !ok {
				ce.Add(&Error{ErrUnknownType,
					fmt.Sprintf("%s references unknown type %s", scope, c.To)})
				continue
			}

			et := &EdgeType{Name: c.Label, Source: vt, Dest: dest}
			et.Degree = compileDegree(scope, c.Degree, dest, m.Total, ce)

			for _, p := range c.Properties {
				if gen := compileProperty(scope, p, ce); gen != nil {
					et.Props = append(et.Props, gen)
				}
			}

			vt.Conns = append(vt.Conns, et)
			m.Edges = append(m.Edges, et)
		}
	}

	for _, decl := range d.Edges {
		scope := fmt.Sprintf("Edge type %s", decl.Label)

		src, ok := m.lookup[decl.From]
		if !ok {
			ce.Add(&Error{ErrUnknownType,
				fmt.Sprintf("%s references unknown source type %s", scope, decl.From)})
			continue
		}

		dest, ok := m.lookup[decl.To]
		if !ok {
			ce.Add(&Error{ErrUnknownType,
				fmt.Sprintf("%s references unknown destination type %s", scope, decl.To)})
			continue
		}

		et := &EdgeType{Name: decl.Label, Source: src, Dest: dest}
		et.Degree = compileDegree(scope, decl.Degree, dest, m.Total, ce)

		for _, p := range decl.Properties {
			if gen := compileProperty(scope, p, ce); gen != nil {
				et.Props = append(et.Props, gen)
			}
		}

		src.Conns = append(src.Conns, et)
		m.Edges = append(m.Edges, et)
	}

	// Edge labels may repeat between type pairs but the rows of a label
	// share one set of shard files - the headers must agree

	headers := make(map[string]string)

	for _, et := range m.Edges {
		if h, ok := headers[et.Name]; !ok {
			headers[et.Name] = et.Header()
		} else if h != et.Header() {
			ce.Add(&Error{ErrInvalidProperty, fmt.Sprintf(
				"Edge types with label %s declare different properties", et.Name)})
		}
	}

	if ce.HasErrors() {
		return nil, &Error{ErrInvalidDocument, ce.Error()}
	}

	return m, nil
}

/*
compileSizes resolves the per-type vertex counts. Percentage shares are
split with the largest remainder method so the counts always sum up to
exactly the requested total.
*/
func (d *Document) compileSizes(m *Model, total int64, ce *errorutil.CompositeError) {
	var withShare, withCount int

	if len(m.Vertices) != len(d.Vertices) {

		// Type declarations were already flagged as broken

		return
	}

	for _, decl := range d.Vertices {
		if decl.Share != 0 {
			withShare++
		}
		if decl.Count != 0 {
			withCount++
		}
	}

	if withShare == 0 && withCount == 0 {

		// An ego-centric document declares no sizes - identifier arenas
		// are still assigned but counts stay open

		m.Sized = false
		return
	}

	m.Sized = true

	if withShare > 0 && withCount > 0 {
		ce.Add(&Error{ErrInvalidShares,
			"Document mixes percentage shares and absolute counts"})
		return
	}

	if withCount > 0 {

		if withCount < len(d.Vertices) {
			ce.Add(&Error{ErrInvalidShares,
				"All vertex types must declare a count"})
			return
		}

		m.Total = 0

		for _, decl := range d.Vertices {
			if vt, ok := m.lookup[decl.Label]; ok {
				if decl.Count < 0 || decl.Count >= 1<<ArenaShift {
					ce.Add(&Error{ErrInvalidShares,
						fmt.Sprintf("Vertex type %s has an invalid count %d", decl.Label, decl.Count)})
					continue
				}
				vt.Count = decl.Count
				m.Total += decl.Count
			}
		}

		return
	}

	if withShare < len(d.Vertices) {
		ce.Add(&Error{ErrInvalidShares,
			"All vertex types must declare a share"})
		return
	}

	var sum float64

	for _, decl := range d.Vertices {
		if decl.Share < 0 {
			ce.Add(&Error{ErrInvalidShares,
				fmt.Sprintf("Vertex type %s has a negative share", decl.Label)})
			return
		}
		sum += decl.Share
	}

	if math.Abs(sum-100) > 1e-9 {
		ce.Add(&Error{ErrInvalidShares,
			fmt.Sprintf("Vertex type shares sum to %v instead of 100", sum)})
		return
	}

	if total <= 0 || total >= 1<<ArenaShift {
		ce.Add(&Error{ErrInvalidShares,
			fmt.Sprintf("Invalid total vertex count %d", total)})
		return
	}

	// Largest remainder split - every type gets the floor of its exact
	// share and the leftover vertices go to the largest fractions

	type fraction struct {
		index int
		frac  float64
	}

	var fractions []fraction

	assigned := int64(0)

	for _, decl := range d.Vertices {
		vt := m.lookup[decl.Label]
		if vt == nil {
			return
		}

		exact := decl.Share * float64(total) / 100

		vt.Count = int64(math.Floor(exact))
		assigned += vt.Count

		fractions = append(fractions, fraction{vt.Index, exact - math.Floor(exact)})
	}

	sort.SliceStable(fractions, func(i, j int) bool {
		return fractions[i].frac > fractions[j].frac
	})

	for i := int64(0); i < total-assigned; i++ {
		m.Vertices[fractions[i].index].Count++
	}
}

/*
Default bounds for properties which do not declare them
*/
const (
	defaultMinLen  = 1
	defaultMaxLen  = 20
	defaultMinYear = 1970
	defaultMaxYear = 2070
)

/*
compileProperty compiles a single property declaration.
*/
func compileProperty(scope string, decl *PropertyDecl,
	ce *errorutil.CompositeError) *synth.Generator {

	var gen *synth.Generator
	var err error

	if decl.Name == "" {
		ce.Add(&Error{ErrInvalidProperty, scope + " declares a property without a name"})
		return nil
	}

	scope = fmt.Sprintf("%s property %s", scope, decl.Name)

	fbound := func(b *float64, def float64) float64 {
		if b == nil {
			return def
		}
		return *b
	}
	ibound := func(b *int, def int) int {
		if b == nil {
			return def
		}
		return *b
	}

	intBound := func(b *float64, def int64, lo, hi float64) (int64, bool) {
		if b == nil {
			return def, true
		}
		if *b < lo || *b > hi || *b != math.Trunc(*b) {
			ce.Add(&Error{ErrInvalidProperty,
				fmt.Sprintf("%s has the out of range bound %v", scope, *b)})
			return 0, false
		}

		// The 64 bit limits are not exactly representable as float64

		if *b <= math.MinInt64 {
			return math.MinInt64, true
		}
		if *b >= math.MaxInt64 {
			return math.MaxInt64, true
		}

		return int64(*b), true
	}

	switch strings.ToLower(decl.Type) {

	case "int":
		min, ok1 := intBound(decl.Min, 0, math.MinInt32, math.MaxInt32)
		max, ok2 := intBound(decl.Max, math.MaxInt32, math.MinInt32, math.MaxInt32)
		if ok1 && ok2 {
			gen, err = synth.NewInt(decl.Name, min, max)
		}

	case "long":
		min, ok1 := intBound(decl.Min, 0, math.MinInt64, math.MaxInt64)
		max, ok2 := intBound(decl.Max, math.MaxInt64, math.MinInt64, math.MaxInt64)
		if ok1 && ok2 {
			gen, err = synth.NewLong(decl.Name, min, max)
		}

	case "double":
		gen, err = synth.NewDouble(decl.Name, fbound(decl.Min, 0), fbound(decl.Max, 1))

	case "bool":
		gen, err = synth.NewBool(decl.Name)

	case "string":
		gen, err = synth.NewString(decl.Name, ibound(decl.MinLen, defaultMinLen),
			ibound(decl.MaxLen, defaultMaxLen))

	case "date":
		gen, err = synth.NewDate(decl.Name, ibound(decl.MinYear, defaultMinYear),
			ibound(decl.MaxYear, defaultMaxYear))

	case "list":
		if decl.Element == "" {
			ce.Add(&Error{ErrInvalidProperty, scope + " has no element type"})
			return nil
		}

		if strings.ToLower(decl.Element) == "list" {
			ce.Add(&Error{ErrInvalidProperty,
				scope + " must have a scalar element type"})
			return nil
		}

		elem := compileProperty(scope, &PropertyDecl{
			Name:    decl.Name,
			Type:    decl.Element,
			Min:     decl.Min,
			Max:     decl.Max,
			MinYear: decl.MinYear,
			MaxYear: decl.MaxYear,
		}, ce)

		if elem == nil {
			return nil
		}

		gen, err = synth.NewList(decl.Name, elem,
			ibound(decl.MinLen, 0), ibound(decl.MaxLen, 5))

	default:
		ce.Add(&Error{ErrInvalidProperty,
			fmt.Sprintf("%s has the unsupported type %s", scope, decl.Type)})
		return nil
	}

	if err != nil {
		ce.Add(&Error{ErrInvalidProperty, fmt.Sprintf("%s: %v", scope, err)})
		return nil
	}

	return gen
}

/*
compileDegree compiles a single degree declaration. The destination pool
size caps power-law samples - in an unsized (ego-centric) document the
requested total entity count serves as the cap.
*/
func compileDegree(scope string, decl *DegreeDecl, dest *VertexType,
	total int64, ce *errorutil.CompositeError) *degree.Model {

	if decl == nil {
		ce.Add(&Error{ErrInvalidDegree, scope + " declares no degree model"})
		return nil
	}

	fail := func(detail string) *degree.Model {
		ce.Add(&Error{ErrInvalidDegree, fmt.Sprintf("%s %s", scope, detail)})
		return nil
	}

	model := &degree.Model{Min: 0, Max: math.MaxInt64}

	switch strings.ToLower(decl.Round) {
	case "", "round":
		model.Round = degree.RoundNearest
	case "floor":
		model.Round = degree.RoundFloor
	case "ceil":
		model.Round = degree.RoundCeil
	default:
		return fail("has the unsupported rounding mode " + decl.Round)
	}

	if decl.Min != nil {
		model.Min = *decl.Min
	}
	if decl.Max != nil {
		model.Max = *decl.Max
	}

	if model.Min < 0 || model.Max < model.Min {
		return fail(fmt.Sprintf("has the invalid clamp range [%d, %d]", model.Min, model.Max))
	}

	switch strings.ToLower(decl.Dist) {

	case "fixed":
		if decl.Value == nil {
			return fail("needs a value")
		}
		model.Dist = degree.Fixed
		model.Value = *decl.Value

	case "uniform":
		model.Dist = degree.Uniform

		if decl.Low != nil && decl.High != nil {
			model.Low, model.High = *decl.Low, *decl.High
		} else if decl.Median != nil && decl.Spread != nil {
			model.Low, model.High = *decl.Median-*decl.Spread, *decl.Median+*decl.Spread
		} else {
			return fail("needs either low/high or median/spread")
		}

		if model.Low > model.High {
			return fail("has a lower bound greater than its upper bound")
		}

	case "normal":
		if decl.Mean == nil || decl.Sigma == nil {
			return fail("needs mean and sigma")
		}
		if *decl.Sigma < 0 {
			return fail("has a negative sigma")
		}
		model.Dist = degree.Normal
		model.Mean = *decl.Mean
		model.Sigma = *decl.Sigma

	case "poisson":
		if decl.Lambda == nil || *decl.Lambda < 0 {
			return fail("needs a non-negative lambda")
		}
		model.Dist = degree.Poisson
		model.Lambda = *decl.Lambda

	case "lognormal":
		if decl.Median == nil || *decl.Median <= 0 || decl.Sigma == nil || *decl.Sigma < 0 {
			return fail("needs a positive median and a non-negative sigma")
		}
		model.Dist = degree.LogNormal
		model.Mean = math.Log(*decl.Median)
		model.Sigma = *decl.Sigma

	case "powerlaw":
		if decl.Gamma == nil || *decl.Gamma <= 1 {
			return fail("needs a gamma greater than 1")
		}
		model.Dist = degree.PowerLaw
		model.Gamma = *decl.Gamma
		model.Pool = dest.Count

		if model.Pool == 0 {
			model.Pool = total
		}

	default:
		return fail("has the unsupported distribution " + decl.Dist)
	}

	return model
}
