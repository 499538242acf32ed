// © 2025 Felipe Galindo. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

/*
Scrape-polycam refreshes the Polycam gallery manifest.

# Usage

	$ go tool scrape-polycam [flags]

It fetches the public Polycam profile, downloads new orbit videos and
thumbnails to static/polycam and rewrites data/polycam.json, which the
PolycamGallery widget consumes at build time. Media already on disk is not
downloaded again.
*/
package main

import (
	_ "embed"

	"go.astrophena.name/base/cli"
)

//go:embed doc.go
var doc []byte

func init() { cli.SetDocComment(doc) }
