// Package core holds the optional ebiten presentation-layer adapter.
// Nothing under internal/core/ecs imports this package or ebiten; Game
// is a thin driver that ticks the core once per Update() call and lets
// plugins own whatever they draw through ebiten's own Image handle.
package core

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"

	"forgekernel/internal/core/ecs"
)

// Game adapts an ecs.Driver to ebiten's Update/Draw/Layout contract.
// It carries no game-domain state of its own; everything observable
// lives in the driver's Registry, reached through components and
// systems loaded by the entity/plugin loaders.
type Game struct {
	driver *ecs.Driver
	width  int
	height int
}

// NewGame wraps driver for ebiten to run, at the given window size.
func NewGame(driver *ecs.Driver, width, height int) *Game {
	return &Game{driver: driver, width: width, height: height}
}

// Update runs exactly one core tick per ebiten frame.
func (g *Game) Update() error {
	_, err := g.driver.Tick()
	return err
}

// Draw clears the screen; any plugin wanting to render through ebiten
// reaches the *ebiten.Image itself via a component it owns, not through
// Game, which has no notion of sprites or cameras.
func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{20, 20, 28, 255})
	ebitenutil.DebugPrintAt(screen, "forgekernel", 4, 4)
}

// Layout reports the fixed logical screen size Game was built with.
func (g *Game) Layout(_, _ int) (screenWidth, screenHeight int) {
	return g.width, g.height
}

// Run configures the ebiten window and blocks running the game loop
// until the window closes or Update returns a non-nil error.
func (g *Game) Run(title string) error {
	ebiten.SetWindowSize(g.width, g.height)
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	return ebiten.RunGame(g)
}
