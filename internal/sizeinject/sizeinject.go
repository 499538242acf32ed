// © 2025 Felipe Galindo. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package sizeinject patches a human-readable page weight label into a
// built page.
//
// The dashboard's status bar brags about how small the page is. The number
// can't be known while the page is being generated (the page itself is part
// of the weight), so the layout emits a placeholder token instead and this
// package replaces it after the build, using the size of the file as it
// ended up on disk.
package sizeinject

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"strings"
)

// Token is the placeholder emitted by the page layout and consumed by
// [Inject].
const Token = "__SIZE__"

// Label formats n bytes as kibibytes with exactly one fractional digit,
// e.g. 6400 -> "6.3KB".
func Label(n int64) string {
	kb := math.Round(float64(n)/1024*10) / 10
	return fmt.Sprintf("%.1fKB", kb)
}

// Result describes what a single [Inject] run did.
type Result struct {
	Size     int64  // size of the file on disk, in bytes, before rewriting
	Label    string // formatted size label, e.g. "6.2KB"
	Injected bool   // whether the token was found and replaced
}

// Inject replaces the first occurrence of token in the file at path with
// the formatted size of that file and writes the result back to the same
// path.
//
// The size is taken from the filesystem, not from the contents read into
// memory, so it reflects exactly what a client would download. If the token
// is absent the file is rewritten unchanged and Result.Injected is false;
// callers that want that to be an error should check the flag.
//
// Inject performs exactly one read and one write of the target file and
// touches no other file. Any I/O error is returned as is.
func Inject(path, token string) (*Result, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Size:  fi.Size(),
		Label: Label(fi.Size()),
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	nb := []byte(strings.Replace(string(b), token, res.Label, 1))
	res.Injected = !bytes.Equal(b, nb)

	if err := os.WriteFile(path, nb, 0o644); err != nil {
		return nil, err
	}
	return res, nil
}
