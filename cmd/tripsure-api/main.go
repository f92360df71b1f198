// README: Entry point; loads config, wires services, starts the HTTP server.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"tripsure/internal/ai"
	"tripsure/internal/config"
	"tripsure/internal/geo"
	httptransport "tripsure/internal/http"
	"tripsure/internal/infra"
	"tripsure/internal/modules/conversation"
	"tripsure/internal/modules/escalation"
	"tripsure/internal/modules/pricing"
)

func main() {
	// .env is optional; real deployments use the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		log.Fatal(err)
	}
	defer dbPool.Close()

	redisClient := infra.NewRedis(cfg.Redis.Addr)
	defer redisClient.Close()

	extractor, err := ai.NewGeminiExtractor(ctx, cfg.AI.GeminiKey)
	if err != nil {
		log.Fatalf("gemini init: %v", err)
	}
	defer extractor.Close()

	resolver, err := geo.NewService(cfg.Maps.APIKey)
	if err != nil {
		log.Fatalf("maps init: %v", err)
	}

	store := conversation.NewRedisStore(redisClient)
	pricingSvc := pricing.NewService(pricing.NewStore(dbPool), resolver)
	escalationSvc := escalation.NewService(escalation.NewStore(redisClient))

	convSvc := conversation.NewService(conversation.Deps{
		Checkpoints:     store,
		Transcripts:     store,
		Locker:          store,
		Extractor:       extractor,
		Resolver:        resolver,
		Pricing:         pricingSvc,
		Escalation:      escalationSvc,
		Guard:           conversation.NewLoopGuard(cfg.Dialogue.TurnCeiling, cfg.Dialogue.NoProgressLimit),
		ExtractTimeout:  time.Duration(cfg.Dialogue.ExtractTimeoutSeconds) * time.Second,
		TranscriptTurns: cfg.Dialogue.TranscriptTurns,
	})

	router := httptransport.NewRouter(httptransport.ServerDeps{Turns: convSvc, Quotes: pricingSvc})
	server := &http.Server{Addr: cfg.HTTP.Addr, Handler: router}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	log.Printf("tripsure-api listening on %s", cfg.HTTP.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}
