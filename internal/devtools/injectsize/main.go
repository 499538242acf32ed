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
	"github.com/felipegalind0/dashboard/internal/sizeinject"

	"go.astrophena.name/base/cli"
)

func main() { cli.Main(new(app)) }

type app struct {
	strict bool
}

func (a *app) Flags(fs *flag.FlagSet) {
	fs.BoolVar(&a.strict, "strict", false, "Fail if the placeholder is not found in the page.")
}

func (a *app) Run(ctx context.Context) error {
	devtools.EnsureRoot()

	target := filepath.Join("build", "index.html")

	res, err := sizeinject.Inject(target, sizeinject.Token)
	if err != nil {
		return err
	}
	if a.strict && !res.Injected {
		return fmt.Errorf("%s: placeholder %q not found", target, sizeinject.Token)
	}

	env := cli.GetEnv(ctx)
	fmt.Fprintf(env.Stdout, "injected: %s\n", res.Label)
	return nil
}
