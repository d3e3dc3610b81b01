/*
 * GraphGen
 *
 * Copyright 2016 Matthias Ladkau. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package config

import (
	"fmt"
	"io/ioutil"
	"os"
	"testing"
)

const testconf = "testconfig"

func TestConfig(t *testing.T) {

	Config = nil

	ioutil.WriteFile(testconf, []byte(`{
    "BatchSize": 50,
    "OutputDisks": "/mnt/a, /mnt/b,"
}`), 0644)

	defer func() {
		if err := os.Remove(testconf); err != nil {
			fmt.Print("Could not remove test config file:", err.Error())
		}
	}()

	if err := LoadConfigFile(testconf); err != nil {
		t.Error(err)
		return
	}

	if res := Int(BatchSize); res != 50 {
		t.Error("Unexpected result:", res)
		return
	}

	if res := Disks(); len(res) != 2 || res[0] != "/mnt/a" || res[1] != "/mnt/b" {
		t.Error("Unexpected result:", res)
		return
	}

	if res := Int(MaxLinesPerFile); fmt.Sprint(res) != DefaultConfig[MaxLinesPerFile] {
		t.Error("Unexpected result:", res)
		return
	}

	LoadDefaultConfig()

	if res := Str(LocationOutput); res != "out" {
		t.Error("Unexpected result:", res)
		return
	}

	if res := Disks(); res != nil {
		t.Error("Unexpected result:", res)
		return
	}

	Config[BatchSize] = "123"

	if res := Int(BatchSize); fmt.Sprint(res) == DefaultConfig[BatchSize] {
		t.Error("Unexpected result:", res)
		return
	}
}
