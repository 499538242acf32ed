// © 2025 Felipe Galindo. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

/*
Build builds the dashboard.

# Usage

	$ go tool build [flags] [dir]

Builds the site into the specified directory dir and patches the page
weight label into the built index page. If dir is not provided, it defaults
to build in the current working directory.
*/
package main

import (
	_ "embed"

	"go.astrophena.name/base/cli"
)

//go:embed doc.go
var doc []byte

func init() { cli.SetDocComment(doc) }
