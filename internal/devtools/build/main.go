// © 2025 Felipe Galindo. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package main

import (
	"context"
	"flag"
	"fmt"
	"path/filepath"

	"github.com/felipegalind0/dashboard/internal/devtools"
	"github.com/felipegalind0/dashboard/internal/site"
	"github.com/felipegalind0/dashboard/internal/sizeinject"

	"go.astrophena.name/base/cli"
)

func main() { cli.Main(new(app)) }

type app struct {
	prod bool
}

func (a *app) Flags(fs *flag.FlagSet) {
	fs.BoolVar(&a.prod, "prod", false, "Build in a production mode.")
}

func (a *app) Run(ctx context.Context) error {
	devtools.EnsureRoot()

	dir := filepath.Join(".", "build")
	if len(flag.Args()) > 0 {
		dir = flag.Args()[0]
	}

	if err := site.Build(&site.Config{
		Src:  ".",
		Dst:  dir,
		Prod: a.prod,
	}); err != nil {
		return err
	}

	// The page weight is only known once the page is on disk, so the
	// placeholder is patched strictly after the build.
	res, err := sizeinject.Inject(filepath.Join(dir, "index.html"), sizeinject.Token)
	if err != nil {
		return err
	}
	env := cli.GetEnv(ctx)
	fmt.Fprintf(env.Stdout, "injected: %s\n", res.Label)
	return nil
}
