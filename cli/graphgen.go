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
GraphGen is a parallel synthetic graph generator.

Given a declarative schema of vertex and edge types with desired topology
statistics it produces vertex and edge record sets whose degree sequence
follows a chosen statistical model. The work is partitioned across
independent workers and the results are written as sharded, size-bounded
delimited text files suitable for bulk ingestion into a graph store such
as EliasDB.

Features:

- Degree models: fixed, uniform, normal, Poisson, log-normal and power-law (Zipf).

- Two topology modes: striped slices of a sized global vertex range or two-hop ego-centric neighbourhoods.

- Collision-free distributed identifier allocation without any cross-worker coordination.

- Buffered, rolling shard files with bulk load headers, distributed over one directory or several mount points.

- Per-worker reproducible output for a fixed seed and worker count.
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"devt.de/krotik/common/logutil"
	"devt.de/krotik/graphgen/config"
	"devt.de/krotik/graphgen/gen"
	"devt.de/krotik/graphgen/schema"
	"devt.de/krotik/graphgen/version"
)

/*
Using custom consolelogger type so we can test log.Fatal calls with unit tests.
Overwrite these if the tool should not call os.Exit on a fatal error.
*/
type consolelogger func(v ...interface{})

var fatal = consolelogger(log.Fatal)
var print = consolelogger(log.Print)

func main() {

	// Initialize the default command line parser

	flag.CommandLine.Init(os.Args[0], flag.ContinueOnError)

	// Define default usage message

	flag.Usage = func() {

		// Print usage for tool selection

		fmt.Println(fmt.Sprintf("Usage of %s <tool>", os.Args[0]))
		fmt.Println()
		fmt.Println("GraphGen synthetic graph generator")
		fmt.Println()
		fmt.Println("Available commands:")
		fmt.Println()
		fmt.Println("    generate  Generate a graph data set from a schema")
		fmt.Println("    about     Show version information")
		fmt.Println()
		fmt.Println(fmt.Sprintf("Use %s <command> -help for more information about a given command.", os.Args[0]))
		fmt.Println()
	}

	// Parse the command bit

	err := flag.CommandLine.Parse(os.Args[1:])

	if len(flag.Args()) > 0 {

		arg := flag.Args()[0]

		if arg == "generate" {
			RunGenerate()
		} else if arg == "about" {
			print(fmt.Sprintf("GraphGen %v.%v", version.VERSION, version.REV))
		} else {
			flag.Usage()
		}

	} else if err == nil {

		flag.Usage()
	}
}

/*
RunGenerate runs a generation run on the command line.
*/
func RunGenerate() {

	schemaFile := flag.String("schema", "", "Schema document describing the graph")
	total := flag.Int64("total", 0, "Total entity count (vertices in global mode, ego units in ego mode)")
	workers := flag.Int("workers", 0, "Number of workers (default: number of CPUs)")
	seed := flag.Int64("seed", 1, "Seed for all random sources")
	mode := flag.String("mode", gen.ModeGlobal, "Topology mode: global or ego")
	out := flag.String("out", "", "Output directory (default from config)")
	disks := flag.String("disks", "", "Comma separated mount points for round-robin output")
	gamma := flag.Float64("gamma", 0, "Override the gamma of all power-law degree models")
	share := flag.Float64("share", 0, "Probability of linking a leaf back to its ego (ego mode)")
	dryRun := flag.Bool("dry-run", false, "Compute and report the degree distribution without writing files")
	conffile := flag.String("config", config.DefaultConfigFile, "Config file")

	showHelp := flag.Bool("help", false, "Show this help message")

	flag.Usage = func() {
		fmt.Println()
		fmt.Println(fmt.Sprintf("Usage of %s generate [options]", os.Args[0]))
		fmt.Println()
		flag.PrintDefaults()
		fmt.Println()
	}

	flag.CommandLine.Parse(os.Args[2:])

	if *showHelp {
		flag.Usage()
		return
	}

	print(fmt.Sprintf("GraphGen %v.%v", version.VERSION, version.REV))

	if err := config.LoadConfigFile(*conffile); err != nil {
		fatal("Could not load config file:", err)
		return
	}

	// Route log messages to the console

	logutil.ClearLogSinks()

	level := logutil.StringToLoglevel(config.Str(config.LogLevel))
	logutil.GetLogger("").AddLogSink(level, logutil.ConsoleFormatter(), os.Stderr)

	if *schemaFile == "" {
		fatal("No schema document given (use -schema)")
		return
	}

	data, err := ioutil.ReadFile(*schemaFile)
	if err != nil {
		fatal("Could not read schema document:", err)
		return
	}

	doc, err := schema.Parse(data)
	if err != nil {
		fatal(err)
		return
	}

	if *gamma > 0 {
		overrideGamma(doc, *gamma)
	}

	model, err := doc.Compile(*total)
	if err != nil {
		fatal(err)
		return
	}

	opts := &gen.Options{
		Total:     *total,
		Workers:   *workers,
		Seed:      *seed,
		Mode:      *mode,
		OutputDir: *out,
		Disks:     config.Disks(),
		BatchSize: int(config.Int(config.BatchSize)),
		MaxLines:  config.Int(config.MaxLinesPerFile),
		ShareProb: *share,
		DryRun:    *dryRun,
		LockFile:  config.Str(config.LockFile),
	}

	if opts.OutputDir == "" {
		opts.OutputDir = config.Str(config.LocationOutput)
	}

	if *disks != "" {
		opts.Disks = nil

		for _, d := range strings.Split(*disks, ",") {
			if d = strings.TrimSpace(d); d != "" {
				opts.Disks = append(opts.Disks, d)
			}
		}
	}

	if len(opts.Disks) == 0 {
		if err := os.MkdirAll(opts.OutputDir, 0770); err != nil {
			fatal(err)
			return
		}
	}

	// An interrupt or terminate signal cancels in-flight workers -
	// partially written shard files are left as-is

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)

	go func() {
		if _, ok := <-sigs; ok {
			print("Interrupt received - shutting down")
			cancel()
		}
	}()

	defer func() {
		signal.Stop(sigs)
		close(sigs)
	}()

	stats, err := gen.New(model, opts).Run(ctx)
	if err != nil {
		fatal(err)
		return
	}

	print(stats.String())
}

/*
overrideGamma overrides the gamma parameter of all power-law degree
declarations of a document.
*/
func overrideGamma(doc *schema.Document, gamma float64) {

	override := func(d *schema.DegreeDecl) {
		if d != nil && strings.ToLower(d.Dist) == "powerlaw" {
			g := gamma
			d.Gamma = &g
		}
	}

	for _, v := range doc.Vertices {
		for _, c := range v.Connections {
			override(c.Degree)
		}
	}

	for _, e := range doc.Edges {
		override(e.Degree)
	}
}
