// © 2025 Felipe Galindo. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

/*
Update-layout regenerates the ASCII layout diagrams in README.md.

# Usage

	$ go tool update-layout [flags]

It reads the grid placements from the grid stylesheet and the cell source
order from the dashboard page, renders box-drawing diagrams for the 4, 2
and 1 column views and injects them into README.md between the
LAYOUT:START and LAYOUT:END markers.
*/
package main

import (
	_ "embed"

	"go.astrophena.name/base/cli"
)

//go:embed doc.go
var doc []byte

func init() { cli.SetDocComment(doc) }
