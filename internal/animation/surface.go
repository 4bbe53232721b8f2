package animation

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"unicode"
)

// Surface is a pixel-addressed drawing target.
type Surface interface {
	// Size returns the drawable area in pixels.
	Size() (width, height int)
	// Fade dims everything drawn so far by one step, leaving trails.
	Fade()
	// Clear erases the surface.
	Clear()
	// DrawGlyph draws glyph with its baseline at (x, y).
	DrawGlyph(x, y int, glyph rune)
	// DrawDot draws a round dot of the given radius centred on (x, y).
	DrawDot(x, y, radius float64)
}

// DefaultTrail is how many fades a glyph survives on a TextSurface.
const DefaultTrail = 8

type cell struct {
	glyph rune
	life  int
}

// TextSurface renders to a grid of terminal cells. Each cell covers
// cellSize x cellSize pixels. A drawn glyph stays visible for trail fades.
type TextSurface struct {
	mu       sync.Mutex
	cols     int
	rows     int
	cellSize int
	trail    int
	cells    []cell
}

// NewTextSurface creates a cols x rows surface.
func NewTextSurface(cols, rows, cellSize int) *TextSurface {
	if cellSize <= 0 {
		cellSize = 1
	}
	s := &TextSurface{cellSize: cellSize, trail: DefaultTrail}
	s.Resize(cols, rows)
	return s
}

// Resize changes the grid dimensions and clears it.
func (s *TextSurface) Resize(cols, rows int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cols = max(cols, 0)
	s.rows = max(rows, 0)
	s.cells = make([]cell, s.cols*s.rows)
}

// Size implements Surface.
func (s *TextSurface) Size() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cols * s.cellSize, s.rows * s.cellSize
}

// Fade implements Surface.
func (s *TextSurface) Fade() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.cells {
		if s.cells[i].life > 0 {
			s.cells[i].life--
		}
	}
}

// Clear implements Surface.
func (s *TextSurface) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.cells {
		s.cells[i] = cell{}
	}
}

// DrawGlyph implements Surface. The glyph occupies the cell above its
// baseline; positions outside the grid are ignored.
func (s *TextSurface) DrawGlyph(x, y int, glyph rune) {
	if !unicode.IsPrint(glyph) {
		glyph = ' '
	}
	s.set(x/s.cellSize, y/s.cellSize-1, glyph)
}

// DrawDot implements Surface.
func (s *TextSurface) DrawDot(x, y, radius float64) {
	glyph := '.'
	if radius > 2 {
		glyph = 'o'
	}
	s.set(int(x)/s.cellSize, int(y)/s.cellSize, glyph)
}

func (s *TextSurface) set(col, row int, glyph rune) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if col < 0 || row < 0 || col >= s.cols || row >= s.rows {
		return
	}
	s.cells[row*s.cols+col] = cell{glyph: glyph, life: s.trail}
}

// String returns the visible frame, one line per row.
func (s *TextSurface) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var b strings.Builder
	b.Grow((s.cols + 1) * s.rows)
	for r := 0; r < s.rows; r++ {
		for c := 0; c < s.cols; c++ {
			cl := s.cells[r*s.cols+c]
			if cl.life > 0 {
				b.WriteRune(cl.glyph)
			} else {
				b.WriteByte(' ')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Render writes the frame to w, moving the cursor home first when
// home is set.
func (s *TextSurface) Render(w io.Writer, home bool) error {
	frame := s.String()
	if home {
		frame = "\033[H" + frame
	}
	if _, err := io.WriteString(w, frame); err != nil {
		return fmt.Errorf("render frame: %w", err)
	}
	return nil
}
