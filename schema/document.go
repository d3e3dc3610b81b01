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
Package schema contains the schema compiler of GraphGen.

A schema document declares vertex types, their properties, their outgoing
connections and standalone edge types. The document is written in YAML
(JSON documents parse as well). The compiler validates the document and
produces a Model with ready-to-use property generators and degree models -
the generation hot path never looks at the declarations again.
*/
package schema

import "gopkg.in/yaml.v3"

/*
Document is a parsed but not yet validated schema document.
*/
type Document struct {
	Graph    string        `yaml:"graph,omitempty"` // Name of the described graph
	Vertices []*VertexDecl `yaml:"vertices"`        // Declared vertex types
	Edges    []*EdgeDecl   `yaml:"edges,omitempty"` // Standalone edge types
}

/*
VertexDecl declares a vertex type. The size of the type is given either as
a percentage share of the total vertex count or as an absolute count -
a document must use one style for all of its types or neither (an
ego-centric document needs no sizes at all).
*/
type VertexDecl struct {
	Label       string            `yaml:"label"`                 // Type label
	Share       float64           `yaml:"share,omitempty"`       // Percentage of the total vertex count
	Count       int64             `yaml:"count,omitempty"`       // Absolute vertex count
	Properties  []*PropertyDecl   `yaml:"properties,omitempty"`  // Declared properties
	Connections []*ConnectionDecl `yaml:"connections,omitempty"` // Outgoing edge types
}

/*
ConnectionDecl declares an outgoing edge type of a vertex type.
*/
type ConnectionDecl struct {
	Label      string          `yaml:"label"`                // Edge label
	To         string          `yaml:"to"`                   // Destination vertex type
	Degree     *DegreeDecl     `yaml:"degree"`               // Out-degree model
	Properties []*PropertyDecl `yaml:"properties,omitempty"` // Declared edge properties
}

/*
EdgeDecl declares a standalone edge type between two vertex types.
*/
type EdgeDecl struct {
	Label      string          `yaml:"label"`                // Edge label
	From       string          `yaml:"from"`                 // Source vertex type
	To         string          `yaml:"to"`                   // Destination vertex type
	Degree     *DegreeDecl     `yaml:"degree"`               // Out-degree model
	Properties []*PropertyDecl `yaml:"properties,omitempty"` // Declared edge properties
}

/*
PropertyDecl declares a property. Which bounds apply depends on the type:
numeric types use min/max, strings and lists use min_len/max_len, dates
use min_year/max_year and lists name their scalar element type.
*/
type PropertyDecl struct {
	Name    string   `yaml:"name"`               // Property name
	Type    string   `yaml:"type"`               // int, long, double, bool, string, date or list
	Min     *float64 `yaml:"min,omitempty"`      // Lower numeric bound
	Max     *float64 `yaml:"max,omitempty"`      // Upper numeric bound
	MinLen  *int     `yaml:"min_len,omitempty"`  // Minimum string/list length
	MaxLen  *int     `yaml:"max_len,omitempty"`  // Maximum string/list length
	MinYear *int     `yaml:"min_year,omitempty"` // Minimum date year
	MaxYear *int     `yaml:"max_year,omitempty"` // Maximum date year
	Element string   `yaml:"element,omitempty"`  // Element type of a list
}

/*
DegreeDecl declares a degree model.
*/
type DegreeDecl struct {
	Dist   string   `yaml:"dist"`             // fixed, uniform, normal, poisson, lognormal or powerlaw
	Value  *float64 `yaml:"value,omitempty"`  // Fixed value
	Low    *float64 `yaml:"low,omitempty"`    // Uniform lower bound
	High   *float64 `yaml:"high,omitempty"`   // Uniform upper bound
	Median *float64 `yaml:"median,omitempty"` // Uniform or lognormal median
	Spread *float64 `yaml:"spread,omitempty"` // Uniform spread around the median
	Mean   *float64 `yaml:"mean,omitempty"`   // Normal mean
	Sigma  *float64 `yaml:"sigma,omitempty"`  // Normal or lognormal sigma
	Lambda *float64 `yaml:"lambda,omitempty"` // Poisson rate
	Gamma  *float64 `yaml:"gamma,omitempty"`  // Power-law exponent
	Round  string   `yaml:"round,omitempty"`  // round, floor or ceil
	Min    *int64   `yaml:"min,omitempty"`    // Lower clamp bound
	Max    *int64   `yaml:"max,omitempty"`    // Upper clamp bound
}

/*
Parse parses a schema document.
*/
func Parse(data []byte) (*Document, error) {
	var doc Document

	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &Error{ErrInvalidDocument, err.Error()}
	}

	return &doc, nil
}
