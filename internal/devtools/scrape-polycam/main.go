// © 2025 Felipe Galindo. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package main

import (
	"context"
	"flag"

	"github.com/felipegalind0/dashboard/internal/devtools"
	"github.com/felipegalind0/dashboard/internal/polycam"

	"go.astrophena.name/base/cli"

	_ "github.com/joho/godotenv/autoload"
)

func main() { cli.Main(new(app)) }

type app struct {
	username string
}

func (a *app) Flags(fs *flag.FlagSet) {
	fs.StringVar(&a.username, "username", "", "Polycam `username` to scrape. Defaults to $POLYCAM_USERNAME.")
}

func (a *app) Run(ctx context.Context) error {
	devtools.EnsureRoot()

	env := cli.GetEnv(ctx)
	username := a.username
	if username == "" {
		username = env.Getenv("POLYCAM_USERNAME")
	}

	return polycam.Sync(ctx, &polycam.Config{Username: username})
}
