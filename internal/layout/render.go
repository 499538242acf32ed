// © 2025 Felipe Galindo. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package layout

import "strings"

// Render draws the grid as a box-drawing diagram. Adjacent equal cells are
// merged into a single box, both horizontally and vertically. colWidth is
// the inner width of one column; each cell shows its label on the first
// content line and its letter on the second.
func (g Grid) Render(colWidth int) string {
	rows := len(g)
	if rows == 0 {
		return ""
	}
	cols := len(g[0])
	if cols == 0 {
		return ""
	}

	w := colWidth

	// cell returns the letter at (r, c), or the empty string outside the
	// grid.
	cell := func(r, c int) string {
		if r >= 0 && r < rows && c >= 0 && c < cols {
			return g[r][c]
		}
		return ""
	}
	// sameCell reports whether two positions hold the same non-empty cell.
	sameCell := func(r, c, r2, c2 int) bool {
		if r < 0 || r >= rows || c < 0 || c >= cols {
			return false
		}
		if r2 < 0 || r2 >= rows || c2 < 0 || c2 >= cols {
			return false
		}
		return g[r][c] != "" && g[r][c] == g[r2][c2]
	}

	var lines []string

	for r := 0; r < rows; r++ {
		// Top border of the row. The corner character at each column
		// depends on which line segments extend from it, which in turn
		// depends on the four cells meeting there.
		var top strings.Builder
		for c := 0; c < cols; c++ {
			tl := cell(r-1, c-1)
			tr := cell(r-1, c)
			bl := cell(r, c-1)
			br := cell(r, c)

			segUp := (c == 0 && r > 0) || (r > 0 && tl != tr)
			segDown := c == 0 || bl != br
			segLeft := (r == 0 && c > 0) || (c > 0 && tl != bl)
			segRight := r == 0 || tr != br

			if r == 0 {
				segUp = false
				segLeft = c > 0
				segRight = true
				segDown = true
			}
			if c == 0 {
				segLeft = false
				segUp = r > 0
				segDown = true
			}

			var ch string
			switch {
			case r == 0 && c == 0:
				ch = "┌"
			case r == 0:
				ch = "┬"
			case c == 0 && segRight:
				ch = "├"
			case c == 0:
				ch = "│"
			default:
				ch = corner(segUp, segRight, segDown, segLeft)
			}
			top.WriteString(ch)

			if sameCell(r-1, c, r, c) {
				top.WriteString(strings.Repeat(" ", w))
			} else {
				top.WriteString(strings.Repeat("─", w))
			}
		}

		// Right edge corner.
		trCell, brCell := cell(r-1, cols-1), cell(r, cols-1)
		switch {
		case r == 0:
			top.WriteString("┐")
		case trCell != "" && trCell == brCell:
			top.WriteString("│")
		default:
			top.WriteString("┤")
		}
		lines = append(lines, top.String())

		// Group the row into horizontal spans of equal cells.
		type span struct {
			start, width int
			cur          string
		}
		var spans []span
		for c := 0; c < cols; {
			cur := g[r][c]
			width := 1
			for c+width < cols && g[r][c+width] == cur {
				width++
			}
			spans = append(spans, span{c, width, cur})
			c += width
		}

		// Two content lines per row: widget name, then the cell letter.
		for lineIdx := 0; lineIdx < 2; lineIdx++ {
			var content strings.Builder
			for _, s := range spans {
				innerW := w*s.width + (s.width - 1)
				var text string
				if s.cur != "" {
					// Label the cell only in the first row it occupies.
					firstRow := r == 0 || g[r-1][s.start] != s.cur
					if firstRow {
						if lineIdx == 0 {
							text = "  " + labelFor(s.cur)
						} else {
							text = "  [" + strings.ToUpper(s.cur) + "]"
						}
					}
					if len(text) > innerW {
						text = text[:innerW]
					}
				}
				content.WriteString("│")
				content.WriteString(text)
				content.WriteString(strings.Repeat(" ", innerW-len(text)))
			}
			content.WriteString("│")
			lines = append(lines, content.String())
		}
	}

	// Bottom border.
	var bottom strings.Builder
	for c := 0; c < cols; c++ {
		switch {
		case c == 0:
			bottom.WriteString("└")
		case cell(rows-1, c-1) != cell(rows-1, c):
			bottom.WriteString("┴")
		default:
			bottom.WriteString("─")
		}
		bottom.WriteString(strings.Repeat("─", w))
	}
	bottom.WriteString("┘")
	lines = append(lines, bottom.String())

	return strings.Join(lines, "\n")
}

func labelFor(letter string) string {
	if l, ok := Labels[letter]; ok {
		return l
	}
	return strings.ToUpper(letter)
}

// corner picks the box-drawing character for an interior corner from the
// line segments extending up, right, down and left of it.
func corner(up, right, down, left bool) string {
	var bits int
	if up {
		bits |= 8
	}
	if right {
		bits |= 4
	}
	if down {
		bits |= 2
	}
	if left {
		bits |= 1
	}
	switch bits {
	case 0b1111:
		return "┼"
	case 0b1110:
		return "├"
	case 0b1011:
		return "┤"
	case 0b1101:
		return "┴"
	case 0b0111:
		return "┬"
	case 0b1100:
		return "└"
	case 0b1001:
		return "┘"
	case 0b0101:
		return "─"
	case 0b0011:
		return "┐"
	case 0b0110:
		return "┌"
	case 0b1010:
		return "│"
	case 0b1000:
		return "╵"
	case 0b0100:
		return "╶"
	case 0b0010:
		return "╷"
	case 0b0001:
		return "╴"
	case 0b0000:
		return " "
	}
	return "┼"
}
