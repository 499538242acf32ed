// © 2025 Felipe Galindo. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

/*
Package layout keeps the README's ASCII layout diagrams in sync with the
dashboard grid.

The dashboard is a CSS grid of lettered cells (.cell-a, .cell-b, ...). The
desktop placement comes from the grid-column/grid-row rules in the 768px+
media query of the grid stylesheet; the tablet and mobile layouts are
derived from the order in which the cells appear in the page source. The
package renders all three as box-drawing diagrams and injects them into
README.md between the LAYOUT:START and LAYOUT:END markers.
*/
package layout

import (
	"fmt"
	"regexp"
	"strings"
)

// Labels maps cell letters to the widget names shown in the diagrams.
// Unknown letters fall back to the uppercased letter.
var Labels = map[string]string{
	"a": "STATUS",
	"b": "INPUT_STREAM",
	"c": "GH_STATS",
	"d": "CORRUPT_DATA",
	"e": "RECENT_COMMITS",
}

// Span is a half-open range of grid line numbers, as in CSS
// "grid-column: 1 / 3".
type Span struct {
	From, To int
}

// Placement is the desktop grid position of a single cell.
type Placement struct {
	Col, Row Span
}

var (
	cellRuleRe = regexp.MustCompile(`\.cell-([a-z])\s*\{([^}]*grid-(?:column|row)[^}]*)\}`)
	gridColRe  = regexp.MustCompile(`grid-column:\s*(\d+)\s*/\s*(\d+)`)
	gridRowRe  = regexp.MustCompile(`grid-row:\s*(\d+)\s*/\s*(\d+)`)
	cellTagRe  = regexp.MustCompile(`class="cell\s+cell-([a-z])"`)
)

// ParsePlacements extracts grid-column and grid-row spans for each cell
// from the grid stylesheet. Rules that lack either property are skipped.
func ParsePlacements(css string) map[string]Placement {
	placements := make(map[string]Placement)
	for _, m := range cellRuleRe.FindAllStringSubmatch(css, -1) {
		letter, block := m[1], m[2]
		col := gridColRe.FindStringSubmatch(block)
		row := gridRowRe.FindStringSubmatch(block)
		if col == nil || row == nil {
			continue
		}
		placements[letter] = Placement{
			Col: Span{From: atoi(col[1]), To: atoi(col[2])},
			Row: Span{From: atoi(row[1]), To: atoi(row[2])},
		}
	}
	return placements
}

// atoi converts digits already matched by \d+, so it can't fail.
func atoi(s string) int {
	var n int
	for _, c := range s {
		n = n*10 + int(c-'0')
	}
	return n
}

// ParseSourceOrder extracts the cell order from the page's HTML source
// (section class="cell cell-X").
func ParseSourceOrder(html string) []string {
	var order []string
	for _, m := range cellTagRe.FindAllStringSubmatch(html, -1) {
		order = append(order, m[1])
	}
	return order
}

// Grid is a rectangular layout of cell letters. The empty string marks an
// empty tract.
type Grid [][]string

// DesktopGrid builds the 4-column desktop layout from parsed placements.
func DesktopGrid(placements map[string]Placement) Grid {
	var maxRow, maxCol int
	for _, p := range placements {
		maxRow = max(maxRow, p.Row.To)
		maxCol = max(maxCol, p.Col.To)
	}
	rows, cols := maxRow-1, maxCol-1
	if rows <= 0 || cols <= 0 {
		return nil
	}

	g := make(Grid, rows)
	for r := range g {
		g[r] = make([]string, cols)
	}
	for letter, p := range placements {
		for r := p.Row.From - 1; r < p.Row.To-1; r++ {
			for c := p.Col.From - 1; c < p.Col.To-1; c++ {
				g[r][c] = letter
			}
		}
	}
	return g
}

// TabletGrid builds the 2-column tablet layout: the GitHub stats cell (c)
// spans both columns, the rest fill left to right in source order. An odd
// cell left at the end spans the whole row.
func TabletGrid(order []string) Grid {
	var queue []string
	for _, c := range order {
		if c != "c" {
			queue = append(queue, c)
		}
	}

	var g Grid
	for _, c := range order {
		switch {
		case c == "c":
			g = append(g, []string{"c", "c"})
		case len(queue) > 0:
			row := []string{queue[0]}
			queue = queue[1:]
			if len(queue) > 0 {
				row = append(row, queue[0])
				queue = queue[1:]
			} else {
				row = append(row, row[0])
			}
			g = append(g, row)
		}
	}
	return g
}

// MobileGrid builds the 1-column mobile layout: source order, one cell per
// row.
func MobileGrid(order []string) Grid {
	var g Grid
	for _, c := range order {
		g = append(g, []string{c})
	}
	return g
}

// Diagrams renders the markdown block with all three layout diagrams from
// the grid stylesheet and the page source.
func Diagrams(css, html string) string {
	placements := ParsePlacements(css)
	order := ParseSourceOrder(html)

	d4 := DesktopGrid(placements).Render(16)
	d2 := TabletGrid(order).Render(20)
	d1 := MobileGrid(order).Render(40)

	upper := make([]string, len(order))
	for i, c := range order {
		upper[i] = strings.ToUpper(c)
	}

	return fmt.Sprintf("**4 columns** (desktop, 768px+)\n\n```\n%s\n```\n\n"+
		"**2 columns** (tablet, 580px+)\n\n```\n%s\n```\n\n"+
		"**1 column** (mobile)\n\n```\n%s\n```\n\n"+
		"Source order: %s",
		d4, d2, d1, strings.Join(upper, " → "))
}

const (
	markerStart = "<!-- LAYOUT:START -->"
	markerEnd   = "<!-- LAYOUT:END -->"
)

var sectionRe = regexp.MustCompile(`(?s)## Layout\n.*?\n---`)

// InjectReadme replaces the content between the LAYOUT markers with block.
// If the markers are not present yet, the whole "## Layout" section is
// rewritten with a marked-up one.
func InjectReadme(readme, block string) string {
	if strings.Contains(readme, markerStart) {
		re := regexp.MustCompile(`(?s)` + regexp.QuoteMeta(markerStart) + `.*?` + regexp.QuoteMeta(markerEnd))
		return re.ReplaceAllLiteralString(readme, markerStart+"\n"+block+"\n"+markerEnd)
	}
	return sectionRe.ReplaceAllLiteralString(readme,
		"## Layout\n\n"+markerStart+"\n"+block+"\n"+markerEnd+"\n\n---")
}
