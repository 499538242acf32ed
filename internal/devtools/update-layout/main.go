// © 2025 Felipe Galindo. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/felipegalind0/dashboard/internal/devtools"
	"github.com/felipegalind0/dashboard/internal/layout"

	"go.astrophena.name/base/cli"
)

func main() { cli.Main(new(app)) }

type app struct {
	page   string
	css    string
	readme string
}

func (a *app) Flags(fs *flag.FlagSet) {
	fs.StringVar(&a.page, "page", filepath.Join("pages", "index.html"), "Dashboard page `source`.")
	fs.StringVar(&a.css, "css", filepath.Join("static", "css", "grid.css"), "Grid `stylesheet`.")
	fs.StringVar(&a.readme, "readme", "README.md", "README `path` to update.")
}

func (a *app) Run(ctx context.Context) error {
	devtools.EnsureRoot()

	css, err := os.ReadFile(a.css)
	if err != nil {
		return err
	}
	page, err := os.ReadFile(a.page)
	if err != nil {
		return err
	}
	readme, err := os.ReadFile(a.readme)
	if err != nil {
		return err
	}

	block := layout.Diagrams(string(css), string(page))
	updated := layout.InjectReadme(string(readme), block)
	if err := os.WriteFile(a.readme, []byte(updated), 0o644); err != nil {
		return err
	}

	env := cli.GetEnv(ctx)
	fmt.Fprintf(env.Stdout, "%s updated with layout diagrams.\n", a.readme)
	return nil
}
