// Command sim is the headless process entry point: it builds a
// registry, loads plugins and entities from a configuration directory,
// and runs the tick driver until a ShutdownEvent is observed.
package main

import (
	"flag"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"forgekernel/internal/core/ecs"
	"forgekernel/internal/core/ecs/loader"
	"forgekernel/internal/core/ecs/plugin"
	"forgekernel/internal/core/metrics"
)

func main() {
	entitiesDir := flag.String("entities", "", "directory of entity template JSON files to load")
	pluginsDir := flag.String("plugins", "", "directory of Lua-scripted plugin files (*.lua) to load with no dependencies")
	verbose := flag.Bool("v", false, "debug-level logging")
	flag.Parse()

	level := zerolog.InfoLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()

	registry := ecs.NewRegistry()
	ecs.RegisterSceneComponent(registry)
	events := ecs.NewEventManager()
	ecs.InstallShutdownHandler(registry, events)

	collector := metrics.NewCollector()
	collector.MustRegister(prometheus.DefaultRegisterer)

	entityLoader := loader.New(registry)
	host := plugin.NewHost(registry, events, entityLoader)

	if *pluginsDir != "" {
		descriptors, err := discoverLuaPlugins(*pluginsDir)
		if err != nil {
			log.Error().Err(err).Str("dir", *pluginsDir).Msg("plugin discovery failed")
			os.Exit(1)
		}
		if err := host.LoadAll(descriptors); err != nil {
			log.Error().Err(err).Msg("plugin load failed")
			os.Exit(1)
		}
		log.Info().Int("count", len(descriptors)).Msg("plugins loaded")
	}

	if *entitiesDir != "" {
		spawned, err := entityLoader.LoadDir(*entitiesDir)
		if err != nil {
			log.Error().Err(err).Str("dir", *entitiesDir).Msg("entity load failed")
			os.Exit(1)
		}
		log.Info().Int("count", len(spawned)).Msg("entities loaded")
	}

	driver := ecs.NewDriver(registry, events)
	driver.Log = log

	var prevPublished, prevDispatched, prevErrors uint64
	driver.OnTick = func(_ ecs.Now, elapsed time.Duration) {
		collector.ObserveTick(elapsed.Seconds())
		collector.ObserveCounts(registry, registry.AliveCount(), []ecs.ComponentType{"scene"})
		collector.ObserveEvents(&prevPublished, &prevDispatched, &prevErrors, events.StatsSnapshot())
	}

	log.Info().Msg("starting tick loop")
	code, err := driver.Run(func(ecs.Now) bool { return false })
	if err != nil {
		log.Error().Err(err).Msg("tick loop aborted")
		os.Exit(1)
	}
	log.Info().Int("code", code).Msg("shutdown requested")
	os.Exit(code)
}

// discoverLuaPlugins builds one no-dependency plugin.Descriptor per
// *.lua file directly under dir; dependency-ordered loading with a
// manifest is left to a future configuration format (spec.md's plugin
// dependency contract is exercised by plugin.Host.LoadAll regardless
// of how descriptors are produced).
func discoverLuaPlugins(dir string) ([]plugin.Descriptor, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []plugin.Descriptor
	for _, e := range entries {
		if e.IsDir() || len(e.Name()) < 4 || e.Name()[len(e.Name())-4:] != ".lua" {
			continue
		}
		name := e.Name()
		out = append(out, plugin.Descriptor{
			Name:       name,
			ScriptPath: dir + string(os.PathSeparator) + name,
		})
	}
	return out, nil
}
