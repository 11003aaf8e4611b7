/*
Package main
File: main.go
Description: Server entry point. Loads the run configuration, starts the
real-time WebSocket hub and the scheduler that keeps the run ticking, and
serves the command/query API.
*/

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/everforgeworks/outrider/internal/api"
	"github.com/everforgeworks/outrider/internal/game"
)

// GetEnv returns the environment value for key, or fallback when unset.
func GetEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func main() {
	configPath := GetEnv("OUTRIDER_CONFIG", "")
	addr := GetEnv("OUTRIDER_ADDR", ":8081")

	// 1. Load the run configuration (embedded defaults + optional override file)
	cfg, err := game.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Config Fail: %v", err)
	}
	if seed := GetEnv("OUTRIDER_SEED", ""); seed != "" {
		n, err := strconv.ParseInt(seed, 10, 64)
		if err != nil {
			log.Fatalf("Config Fail: OUTRIDER_SEED: %v", err)
		}
		cfg.Seed = n
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Initialize and start the Real-Time WebSocket Hub
	hub := api.NewHub()
	go hub.Run(ctx)

	// 3. Build the run; every game event is fanned out through the hub
	g := game.NewGame(cfg, game.Options{Notifier: hub})

	// 4. THE HEARTBEAT
	// One loop per timing domain; they stop by themselves when the run concludes.
	sched := game.NewScheduler(g)
	sched.Start(ctx)

	// 5. Hot-reload logic: Listen for SIGHUP to stage a new configuration.
	// It takes effect at the next reset so a run in progress keeps its rules.
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGHUP)
		for {
			select {
			case <-ctx.Done():
				return
			case <-sigChan:
				log.Println("SIGNAL: Reloading run configuration...")
				next, err := game.LoadConfig(configPath)
				if err != nil {
					log.Printf("SIGNAL: Reload failed, keeping current config: %v", err)
					continue
				}
				next.Seed = cfg.Seed
				g.StageConfig(next)
				log.Println("SIGNAL: New configuration staged for the next reset")
			}
		}
	}()

	// 6. Setup Router and Handlers
	server := api.NewServer(ctx, g, sched, hub)
	limiter := api.NewIPRateLimiter(20, 40)
	go limiter.Janitor(ctx, time.Minute, 3*time.Minute)
	handler := corsMiddleware(limiter.Middleware(server.Routes()))

	// 7. Start the Server
	srv := &http.Server{Addr: addr, Handler: handler}
	go func() {
		<-ctx.Done()
		log.Println("SIGNAL: Shutting down...")
		sched.Stop()
		if err := srv.Shutdown(context.Background()); err != nil {
			log.Printf("SIGNAL: Shutdown error: %v", err)
		}
	}()

	log.Printf("OUTRIDER: Run server live on %s", addr)
	log.Printf("Real-time Hub: Online")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}

// corsMiddleware lets a browser client served from another origin talk to the API.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
