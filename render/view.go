// Package render draws a debug view of the world and scheduler into a tcell screen
package render

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/vi-rts/scheduler"
	"github.com/lixenwraith/vi-rts/world"
)

// Glyphs used by the view
const (
	GlyphPawn      = '@'
	GlyphCarrier   = '&'
	GlyphTree      = 'T'
	GlyphWood      = '='
	GlyphGold      = '$'
	GlyphMeat      = '%'
	GlyphStockpile = '#'
	GlyphMine      = 'M'
	GlyphSheep     = 's'
)

var (
	styleBase      = tcell.StyleDefault
	stylePawn      = tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true)
	styleBusy      = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleTree      = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleStructure = tcell.StyleDefault.Foreground(tcell.ColorTeal)
	styleSheep     = tcell.StyleDefault.Foreground(tcell.ColorSilver)
	styleStatus    = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorSilver)
)

var resourceGlyphs = [world.ResourceKindCount]rune{
	world.ResourceWood: GlyphWood,
	world.ResourceGold: GlyphGold,
	world.ResourceMeat: GlyphMeat,
}

// View renders one frame per Draw call
// The bottom row is reserved for the status line
type View struct {
	screen tcell.Screen
}

// NewView wraps an initialized screen
func NewView(s tcell.Screen) *View {
	return &View{screen: s}
}

// Draw paints the world, then the status line, then shows the frame
// Must be called with the simulation lock held
func (v *View) Draw(w *world.World, m *scheduler.Manager, status string) {
	v.screen.Clear()
	_, height := v.screen.Size()

	// Later layers overwrite earlier ones: ground items, then structures, then creatures
	for i := range w.Trees {
		if t := &w.Trees[i]; t.Alive {
			v.put(t.Pos, GlyphTree, styleTree, height)
		}
	}
	for i := range w.Resources {
		if r := &w.Resources[i]; r.Alive && !r.Held {
			v.put(r.Pos, resourceGlyphs[r.Kind], styleBase, height)
		}
	}
	for i := range w.Structures {
		s := &w.Structures[i]
		if !s.Alive {
			continue
		}
		glyph := GlyphStockpile
		if s.Kind == world.StructureGoldMine {
			glyph = GlyphMine
		}
		v.put(s.Pos, glyph, styleStructure, height)
	}
	for i := range w.Sheep {
		if s := &w.Sheep[i]; s.Alive {
			v.put(s.Pos, GlyphSheep, styleSheep, height)
		}
	}
	for i := range w.Pawns {
		p := &w.Pawns[i]
		if !p.Alive || p.Hidden {
			continue
		}
		glyph, style := rune(GlyphPawn), stylePawn
		if p.Carries {
			glyph = GlyphCarrier
		}
		if _, busy := m.ActiveFor(world.PawnID(i)); busy {
			style = styleBusy
		}
		v.put(p.Pos, glyph, style, height)
	}

	v.statusLine(status, height-1)
	v.screen.Show()
}

func (v *View) put(pos world.Vec2, glyph rune, style tcell.Style, height int) {
	// Last row belongs to the status line
	if int(pos.Y) >= height-1 {
		return
	}
	v.screen.SetContent(int(pos.X), int(pos.Y), glyph, nil, style)
}

func (v *View) statusLine(text string, y int) {
	if y < 0 {
		return
	}
	width, _ := v.screen.Size()
	x := 0
	for _, r := range text {
		if x >= width {
			break
		}
		v.screen.SetContent(x, y, r, nil, styleStatus)
		x++
	}
	for ; x < width; x++ {
		v.screen.SetContent(x, y, ' ', nil, styleStatus)
	}
}

// StatusText formats the standard status line
func StatusText(tick uint64, r scheduler.Report, w *world.World, paused bool) string {
	state := "running"
	if paused {
		state = "paused"
	}
	return fmt.Sprintf(" tick %d | %s | live %d | ingest %d preempt %d cancel %d done %d | wood %d gold %d meat %d ",
		tick, state, r.Live, r.Ingested, r.Preempted, r.Cancelled, r.Finalized,
		w.TotalStock(world.ResourceWood), w.TotalStock(world.ResourceGold), w.TotalStock(world.ResourceMeat))
}
