// Copyright 2026 The SereniGeo Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/avaldiviap/serenigeo/cmd"
)

var Version = "development"

func main() {
	cmd.Execute(Version)
}
