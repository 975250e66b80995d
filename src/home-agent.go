package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	aicore "github.com/halcyon-labs/home-agent/src/ai/core"
	_ "github.com/halcyon-labs/home-agent/src/ai/providers"
	"github.com/halcyon-labs/home-agent/src/audit"
	"github.com/halcyon-labs/home-agent/src/bot"
	"github.com/halcyon-labs/home-agent/src/config"
	"github.com/halcyon-labs/home-agent/src/confirm"
	"github.com/halcyon-labs/home-agent/src/core"
	"github.com/halcyon-labs/home-agent/src/data"
	"github.com/halcyon-labs/home-agent/src/interpreter"
	"github.com/halcyon-labs/home-agent/src/modules/ide"
	"github.com/halcyon-labs/home-agent/src/modules/launcher"
	"github.com/halcyon-labs/home-agent/src/modules/remote"
	"github.com/halcyon-labs/home-agent/src/modules/system"
	"github.com/halcyon-labs/home-agent/src/webserver"
)

func main() {
	cfg := config.Load()

	db := data.MustDB(cfg.MySQLDSN, cfg.SQLitePath)
	auditLog, err := audit.New(db)
	if err != nil {
		log.Fatalf("audit: %v", err)
	}

	registry := core.NewRegistry()
	registry.Register(system.New(auditLog, cfg.ArtifactDir))
	registry.Register(launcher.New())
	registry.Register(ide.New(cfg.EditorCmd, cfg.WorkspaceDir))
	registry.Register(remote.New(remote.Config{
		Host:     cfg.RemoteHost,
		User:     cfg.RemoteUser,
		Password: cfg.RemotePassword,
		KeyFile:  cfg.RemoteKeyFile,
	}))
	log.Printf("registered %d modules", len(registry.All()))

	dispatcher := core.NewDispatcher(registry, time.Duration(cfg.ModuleTimeout)*time.Second)

	var confirmations confirm.Store
	if cfg.RedisURL != "" {
		confirmations = confirm.NewRedisStore(data.MustRedis(cfg.RedisURL), confirm.DefaultTTL)
	} else {
		confirmations = confirm.NewMemoryStore(confirm.DefaultTTL)
	}

	aiClient, err := aicore.NewClient(aicore.FactoryConfig{
		Provider: cfg.AIProvider,
		Model:    cfg.AIModel,
		Endpoint: cfg.OllamaURL,
		APIKey:   cfg.OpenAIKey,
	})
	if err != nil {
		log.Printf("WARNING: AI provider unavailable (%v); interpreter runs on fallback rules only", err)
		aiClient = nil
	}
	interp := interpreter.New(registry, dispatcher, auditLog, aiClient)

	if cfg.DiscordToken != "" {
		b, err := bot.New(bot.Config{
			Token:         cfg.DiscordToken,
			OwnerID:       cfg.OwnerID,
			Registry:      registry,
			Dispatcher:    dispatcher,
			Interpreter:   interp,
			Confirmations: confirmations,
			AuditLog:      auditLog,
		})
		if err != nil {
			log.Fatalf("bot: %v", err)
		}
		if err := b.Start(); err != nil {
			log.Fatalf("bot start: %v", err)
		}
		defer b.Stop()
	} else {
		log.Printf("DISCORD_TOKEN not set; conversational front end disabled")
	}

	router := webserver.New(cfg, webserver.Deps{
		Registry:    registry,
		Dispatcher:  dispatcher,
		Interpreter: interp,
		AuditLog:    auditLog,
		ArtifactDir: cfg.ArtifactDir,
	})
	httpSrv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http: %v", err)
		}
	}()
	log.Printf("home-agent API listening on %s", cfg.Port)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	shutCtx, cancelShut := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShut()
	_ = httpSrv.Shutdown(shutCtx)
}
