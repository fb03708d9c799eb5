package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bookwyrm/pkg/agent"
	"bookwyrm/pkg/channels"
	_ "bookwyrm/pkg/channels/telegram" // register telegram channel factory
	_ "bookwyrm/pkg/channels/web"      // register web channel factory
	"bookwyrm/pkg/config"
	"bookwyrm/pkg/gateway"
	"bookwyrm/pkg/handler"
	"bookwyrm/pkg/llm"
	_ "bookwyrm/pkg/llm/gemini"   // register gemini provider
	_ "bookwyrm/pkg/llm/ollamalm" // register ollama provider
	_ "bookwyrm/pkg/llm/openailm" // register groq/openai providers
	"bookwyrm/pkg/monitor"
	"bookwyrm/pkg/search"
	"bookwyrm/pkg/tools"
)

func main() {
	monitor.PrintBanner()

	cfg, sysCfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	monitor.SetupSlog(sysCfg.LogLevel)

	// Engine and handler read tuning through the store, one snapshot
	// per turn, so the reload goroutine below can swap it safely.
	sysStore := config.NewStore(sysCfg)

	// LLM client (provider chain with retry policy)
	client, err := llm.NewFromConfig(cfg, sysCfg)
	if err != nil {
		slog.Error("Failed to init LLM client", "error", err)
		os.Exit(1)
	}

	// Search backend shared by all lookup tools
	searcher := search.NewClient(cfg.TavilyAPIKey, time.Duration(sysCfg.SearchTimeoutMs)*time.Millisecond)

	// Recommendation engine with the full lookup toolset
	engine := agent.NewEngine(client, cfg, sysStore)
	engine.RegisterTool(
		tools.NewGenreTool(searcher),
		tools.NewSimilarTool(searcher),
		tools.NewMoodTool(searcher),
		tools.NewDetailsTool(searcher),
		tools.NewBuyTool(searcher),
		tools.NewWebSearchTool(searcher),
	)

	sessions := llm.NewSessionManager(sysCfg.HistoryMaxTurns)
	chatHandler := handler.NewChatHandler(engine, sessions, sysStore)

	gw, err := gateway.NewGatewayBuilder().
		WithMonitor(monitor.NewCLIMonitor()).
		WithChannel(channels.LoadFromConfig(cfg.Channels, sessions, sysCfg)...).
		WithHandler(chatHandler).
		Build()
	if err != nil {
		slog.Error("Failed to build gateway", "error", err)
		os.Exit(1)
	}

	// Hot-reload engine tuning when system.json changes. Channel and
	// credential changes still require a restart.
	watchCtx, cancelWatch := context.WithCancel(context.Background())
	defer cancelWatch()
	go func() {
		for range config.WatchConfig(watchCtx, "system.json") {
			reloaded := config.LoadSystemConfig("system.json")
			sysStore.Replace(reloaded)
			monitor.SetupSlog(reloaded.LogLevel)
			slog.Info("System config reloaded", "log_level", reloaded.LogLevel)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	slog.Info("Received shutdown signal, stopping services")
	gw.StopAll()
	slog.Info("Bye")
}
