package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Braille patterns pack a 2x4 dot block into one rune:
//
//	1 4
//	2 5
//	3 6
//	7 8
//
// Unicode offset 0x2800.
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

// Canvas is a braille-dot terminal canvas with a per-cell color overlay.
// Sub-pixel resolution is (Width*2) x (Height*4).
type Canvas struct {
	Width, Height int
	grid          [][]rune
	colors        [][]string
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		grid:   make([][]rune, h),
		colors: make([][]string, h),
	}
	for i := range c.grid {
		c.grid[i] = make([]rune, w)
		c.colors[i] = make([]string, w)
		for j := range c.grid[i] {
			c.grid[i][j] = 0x2800
		}
	}
	return c
}

// Set lights the sub-pixel at (x, y). The color applies to the whole cell;
// the latest write wins.
func (c *Canvas) Set(x, y int, color string) {
	if x < 0 || y < 0 {
		return
	}
	col := x / 2
	row := y / 4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.grid[row][col] |= rune(pixelMap[y%4][x%2])
	if color != "" {
		c.colors[row][col] = color
	}
}

func (c *Canvas) Clear() {
	for i := range c.grid {
		for j := range c.grid[i] {
			c.grid[i][j] = 0x2800
			c.colors[i][j] = ""
		}
	}
}

func (c *Canvas) String() string {
	var sb strings.Builder
	for i := range c.grid {
		j := 0
		for j < c.Width {
			color := c.colors[i][j]
			start := j
			for j < c.Width && c.colors[i][j] == color {
				j++
			}
			run := string(c.grid[i][start:j])
			if color == "" {
				sb.WriteString(run)
			} else {
				sb.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(run))
			}
		}
		if i < len(c.grid)-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}
