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
Package config contains the operational configuration of GraphGen.

The configuration covers only how the generator runs (buffer sizes, file
rollover, output locations). What data is generated is described by the
schema document (see the schema package).
*/
package config

import (
	"fmt"
	"strconv"
	"strings"

	"devt.de/krotik/common/errorutil"
	"devt.de/krotik/common/fileutil"
)

// Global variables
// ================

/*
DefaultConfigFile is the default config file which will be used to configure GraphGen
*/
var DefaultConfigFile = "graphgen.config.json"

/*
Known configuration options for GraphGen
*/
const (
	BatchSize       = "BatchSize"       // Rows buffered before a bulk write
	MaxLinesPerFile = "MaxLinesPerFile" // Rows per shard file before rollover
	LocationOutput  = "LocationOutput"  // Output directory for shard files
	OutputDisks     = "OutputDisks"     // Comma separated list of mount points
	LockFile        = "LockFile"        // Lock file which is held for the run
	LogLevel        = "LogLevel"        // Log level of the console sink
)

/*
DefaultConfig is the defaut configuration
*/
var DefaultConfig = map[string]interface{}{
	BatchSize:       "1000",
	MaxLinesPerFile: "500000",
	LocationOutput:  "out",
	OutputDisks:     "",
	LockFile:        "graphgen.lck",
	LogLevel:        "info",
}

/*
Config is the actual config which is used
*/
var Config map[string]interface{}

/*
LoadConfigFile loads a given config file. If the config file does not exist it is
created with the default options.
*/
func LoadConfigFile(configfile string) error {
	var err error

	Config, err = fileutil.LoadConfig(configfile, DefaultConfig)

	return err
}

/*
LoadDefaultConfig loads the default configuration.
*/
func LoadDefaultConfig() {
	data := make(map[string]interface{})
	for k, v := range DefaultConfig {
		data[k] = v
	}

	Config = data
}

// Helper functions
// ================

/*
Str reads a config value as a string value.
*/
func Str(key string) string {
	return fmt.Sprint(Config[key])
}

/*
Int reads a config value as an int value.
*/
func Int(key string) int64 {
	ret, err := strconv.ParseInt(fmt.Sprint(Config[key]), 10, 64)

	errorutil.AssertTrue(err == nil,
		fmt.Sprintf("Could not parse config key %v: %v", key, err))

	return ret
}

/*
Bool reads a config value as a boolean value.
*/
func Bool(key string) bool {
	ret, err := strconv.ParseBool(fmt.Sprint(Config[key]))

	errorutil.AssertTrue(err == nil,
		fmt.Sprintf("Could not parse config key %v: %v", key, err))

	return ret
}

/*
Disks reads the configured output mount points as a list. An empty
configuration value means a single flat output directory is used.
*/
func Disks() []string {
	var ret []string

	for _, d := range strings.Split(Str(OutputDisks), ",") {
		if d = strings.TrimSpace(d); d != "" {
			ret = append(ret, d)
		}
	}

	return ret
}
