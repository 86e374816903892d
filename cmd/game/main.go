// Command game is a thin ebiten presentation-layer adapter kept from
// the teacher, showing how a Game ticks the core registry once per
// Update() call without the core package depending on ebiten.
package main

import (
	"log"

	"forgekernel/internal/core"
	"forgekernel/internal/core/ecs"
)

func main() {
	registry := ecs.NewRegistry()
	ecs.RegisterSceneComponent(registry)
	events := ecs.NewEventManager()
	ecs.InstallShutdownHandler(registry, events)

	driver := ecs.NewDriver(registry, events)
	game := core.NewGame(driver, 1280, 720)
	if err := game.Run("forgekernel"); err != nil {
		log.Fatal(err)
	}
}
