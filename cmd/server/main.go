package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"masquerade-panic/internal/api"
	"masquerade-panic/internal/config"
	"masquerade-panic/internal/game"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("💡 No .env file found, using environment variables only")
	} else {
		log.Println("✅ Loaded environment from .env")
	}

	log.Println("🎮 ================================")
	log.Println("🎮  MASQUERADE PANIC - SIM SERVER")
	log.Println("🎮 ================================")

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Configuration error: %v", err)
	}

	log.Printf("🎮 Config: %d TPS, %gx%g map, %d NPCs, %gs round",
		appConfig.Sim.TickRate,
		appConfig.Tuning.MapWidth, appConfig.Tuning.MapHeight,
		appConfig.Tuning.NPCCount, appConfig.Tuning.GameMaxTime)
	if appConfig.Sim.Seed != 0 {
		log.Printf("🎲 Fixed RNG seed: %d (replayable run)", appConfig.Sim.Seed)
	}

	engine, err := game.NewEngine(game.EngineConfig{
		TickRate: appConfig.Sim.TickRate,
		Seed:     appConfig.Sim.Seed,
		Tuning:   &appConfig.Tuning,
	})
	if err != nil {
		log.Fatalf("❌ Failed to create engine: %v", err)
	}

	// Wire metrics to the tick and to gameplay events
	engine.OnTick(api.RecordTick)
	engine.OnEvent(func(ev game.Event) {
		switch ev.Type {
		case game.EventTypeCapture:
			api.RecordCapture()
		case game.EventTypeEscape:
			api.RecordEscape()
		case game.EventTypeFlashlightOn:
			api.RecordFlashlightActivation()
		case game.EventTypePhaseChange:
			var p game.PhasePayload
			if err := ev.DecodePayload(&p); err == nil {
				api.RecordKillerTransition(p.To)
			}
		}
	})

	eventLogPath := getEnvWithDefault("EVENT_LOG_PATH", "events.jsonl")
	if err := engine.StartEventLog(eventLogPath); err != nil {
		log.Printf("⚠️ Event log disabled: %v", err)
	} else {
		log.Printf("📝 Event log: %s", eventLogPath)
	}

	if os.Getenv("DISABLE_DEBUG_SERVER") != "true" {
		if err := api.StartDebugServer(api.DefaultObservabilityConfig()); err != nil {
			log.Printf("⚠️ Debug server disabled: %v", err)
		}
	}

	server := api.NewServer(engine)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	engine.Start()
	log.Println("✅ Simulation engine started")

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		addr := fmt.Sprintf(":%d", appConfig.Server.Port)
		return server.Run(gctx, addr)
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Println("🛑 Shutting down...")
		engine.Stop()
		engine.StopEventLog()
		return nil
	})

	// Periodic session timer gauge refresh for dashboards
	g.Go(func() error {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				api.UpdateSessionTimer(engine.Snapshot().Timer)
			}
		}
	})

	log.Println("✅ Server ready! Press Ctrl+C to stop.")
	if err := g.Wait(); err != nil && err != context.Canceled {
		log.Printf("⚠️ Shutdown with error: %v", err)
	}
	log.Println("👋 Goodbye!")
}

func getEnvWithDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
