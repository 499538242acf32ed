// © 2025 Felipe Galindo. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

/*
Injectsize patches the page weight label into the built index page.

# Usage

	$ go tool injectsize [flags]

It stats build/index.html, replaces the first occurrence of the size
placeholder with the size of the file formatted in kibibytes (e.g. 6.2KB)
and writes the page back. Run it after the build; it reports the measured
size on success.

If the placeholder is absent the page is rewritten unchanged and the size
is still reported. Pass -strict to treat that as an error instead.
*/
package main

import (
	_ "embed"

	"go.astrophena.name/base/cli"
)

//go:embed doc.go
var doc []byte

func init() { cli.SetDocComment(doc) }
