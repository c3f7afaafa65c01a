// cmd/server/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"strconv"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/artfulguesser/backend/internal/archive"
	"github.com/artfulguesser/backend/internal/handlers"
	"github.com/artfulguesser/backend/internal/middleware"
	"github.com/artfulguesser/backend/internal/prompt"
	"github.com/artfulguesser/backend/internal/session"
	"github.com/artfulguesser/backend/internal/store"
)

func main() {
	logger := logrus.New()
	if level, err := logrus.ParseLevel(getEnv("LOG_LEVEL", "info")); err == nil {
		logger.SetLevel(level)
	}

	ctx := context.Background()

	// Store: one JSON document per session. Redis when configured, so several
	// service nodes can share state; in-process memory otherwise.
	var st store.Store
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		rs, err := store.NewRedisStore(ctx, addr, getEnvInt("REDIS_DB", 0))
		if err != nil {
			log.Fatalf("redis store: %v", err)
		}
		st = rs
		logger.Infof("Using Redis session store at %s", addr)
	} else {
		st = store.NewMemoryStore()
		logger.Info("Using in-memory session store")
	}

	var gen prompt.Generator
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		gen = prompt.NewOpenAIGenerator(key, os.Getenv("OPENAI_MODEL"))
	} else {
		logger.Warn("OPENAI_API_KEY not set; all round words will come from the offline fallback list")
	}

	svc := session.NewService(st, gen, logger)
	defer svc.Close()

	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		arch, err := archive.Connect(ctx, dsn)
		if err != nil {
			log.Fatalf("archive: %v", err)
		}
		defer arch.Close()
		svc.Archiver = arch
		logger.Info("Game result archive enabled")
	}

	srv := handlers.NewServer(svc, gen, logger)

	mux := http.NewServeMux()
	logged := middleware.RequestLogger(logger)

	mux.Handle("/session/create", logged(http.HandlerFunc(srv.CreateSessionHandler)))
	mux.Handle("/session/join", logged(http.HandlerFunc(srv.JoinSessionHandler)))
	mux.Handle("/session/ws/", http.HandlerFunc(srv.SessionWSHandler))

	mux.Handle("/ai/prompt", logged(http.HandlerFunc(srv.GeneratePromptHandler)))
	mux.Handle("/ai/evaluate", logged(http.HandlerFunc(srv.EvaluateGuessHandler)))
	mux.Handle("/ai/guess-drawing", logged(http.HandlerFunc(srv.GuessDrawingHandler)))

	addr := ":8080"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}
	logger.Infof("Running on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}

// getEnv reads an environment variable or returns a default value.
func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

// getEnvInt parses an environment variable as integer, else a default value.
func getEnvInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
