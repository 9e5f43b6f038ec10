package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"settlement_console/internal/avatar"
	"settlement_console/internal/chatbot"
	"settlement_console/internal/config"
	"settlement_console/internal/console"
	"settlement_console/internal/handlers"
	"settlement_console/internal/logger"
	authMiddleware "settlement_console/internal/middleware"
	"settlement_console/internal/services"
	"settlement_console/web"
)

const sweepInterval = 10 * time.Minute

func main() {
	configFile := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Init(cfg.Log)
	log := logger.Component("server")

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend := services.NewBackend(services.NewAPIClient(cfg.Backend.BaseURL, cfg.Backend.Timeout))

	var publicURL *url.URL
	if u, err := url.Parse(cfg.Server.PublicURL); err == nil && u.Host != "" {
		publicURL = u
	}
	assistantBase := chatbot.ResolveAPIBase(cfg.Assistant.BaseURL, publicURL)
	assistantAPI := services.NewAPIClient(assistantBase, cfg.Backend.Timeout)
	assistant := services.NewAssistantService(assistantAPI)
	log.Info("upstreams configured", "backend", cfg.Backend.BaseURL, "assistant", assistantBase)

	var contexts chatbot.ContextStore = chatbot.NewMemoryContextStore(cfg.Assistant.ContextTTL)
	if cfg.Redis.URL != "" {
		store, err := services.NewRedisContextStore(cfg.Redis.URL, cfg.Assistant.ContextTTL)
		if err != nil {
			log.Warn("redis unavailable, keeping document context in memory", "error", err)
		} else {
			defer store.Close()
			contexts = store
		}
	}

	// Interfaces stay nil unless Firebase is up, so the middleware can tell.
	var (
		verifier authMiddleware.SessionVerifier
		issuer   handlers.SessionIssuer
	)
	if cfg.Auth.Enabled {
		client, err := services.InitFirebase(ctx, cfg.Auth.CredentialsPath)
		if err != nil {
			log.Warn("firebase initialization failed, sign-in will not work", "error", err)
		} else {
			verifier, issuer = client, client
		}
	}

	profile, err := avatar.LookupByName(cfg.Assistant.Character)
	if err != nil {
		log.Warn("unknown default character, using aesong", "character", cfg.Assistant.Character)
		profile, _ = avatar.Lookup(string(avatar.Aesong))
	}
	hub := chatbot.NewHub(assistant, contexts, chatbot.HubConfig{
		Widget: chatbot.WidgetConfig{
			Character:    profile.Name,
			Model:        cfg.Assistant.Model,
			SystemPrompt: cfg.Assistant.SystemPrompt,
			Greeting:     profile.Greeting,
		},
		Voice: chatbot.VoiceConfig{
			Character: profile.Name,
			Model:     cfg.Assistant.Model,
			TopK:      cfg.Assistant.RAGTopK,
		},
	}, logger.Component("chatbot"))
	avatars := avatar.NewLoader(assistantAPI, assistantBase, logger.Component("avatar"))

	sessions := console.NewSessions(cfg.Assistant.ContextTTL)
	consoleLog := logger.Component("console")
	loader := console.NewLoader(backend, consoleLog)
	controller := console.NewController(backend, consoleLog)
	settlements := console.NewSettlements(backend, backend, consoleLog)

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = authMiddleware.NewErrorHandler(logger.Component("http"))

	renderer, err := web.NewTemplateRenderer(web.Templates)
	if err != nil {
		return err
	}
	e.Renderer = renderer

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	e.StaticFS("/static", echo.MustSubFS(web.Static, "static"))

	// Model assets are streamed from the assistant service unchanged.
	assistantURL, err := url.Parse(assistantBase)
	if err != nil {
		return fmt.Errorf("invalid assistant url %q: %w", assistantBase, err)
	}
	e.Group("/api/models", middleware.ProxyWithConfig(middleware.ProxyConfig{
		Balancer: middleware.NewRoundRobinBalancer([]*middleware.ProxyTarget{{URL: assistantURL}}),
	}))

	chatHandler := handlers.NewChatHandler(hub, avatars)
	authHandler := handlers.NewAuthHandler(issuer, cfg.Auth, cfg.IsProduction())
	dashboardHandler := handlers.NewDashboardHandler(loader, sessions, chatHandler.Panel)
	participantHandler := handlers.NewParticipantHandler(backend, loader, controller, sessions, chatHandler.Panel)
	projectHandler := handlers.NewProjectHandler(backend, loader, controller, sessions, chatHandler.Panel)
	settlementHandler := handlers.NewSettlementHandler(settlements, sessions, chatHandler.Panel)

	// Public routes
	e.GET("/login", authHandler.LoginPage)
	e.POST("/auth/login", authHandler.HandleLogin)
	e.POST("/auth/logout", authHandler.HandleLogout)

	// Protected routes
	protected := e.Group("")
	if cfg.Auth.Enabled {
		protected.Use(authMiddleware.RequireAuth(verifier))
	} else {
		protected.Use(authMiddleware.Anonymous())
	}
	protected.Use(authMiddleware.ConsoleSession(cfg.Assistant.ContextTTL, cfg.IsProduction()))

	protected.GET("/dashboard", dashboardHandler.Dashboard)

	protected.GET("/participants", participantHandler.ListParticipants)
	protected.GET("/participants/create", participantHandler.CreateParticipantPage)
	protected.POST("/participants", participantHandler.StoreParticipant)
	protected.GET("/participants/:id/edit", participantHandler.EditParticipantPage)
	protected.POST("/participants/:id/update", participantHandler.UpdateParticipant)
	protected.GET("/participants/:id/delete", participantHandler.DeleteParticipantPage)
	protected.POST("/participants/:id/delete", participantHandler.DeleteParticipant)

	protected.GET("/projects", projectHandler.ListProjects)
	protected.GET("/projects/create", projectHandler.CreateProjectPage)
	protected.POST("/projects", projectHandler.StoreProject)
	protected.GET("/projects/:id/edit", projectHandler.EditProjectPage)
	protected.POST("/projects/:id/update", projectHandler.UpdateProject)
	protected.GET("/projects/:id/delete", projectHandler.DeleteProjectPage)
	protected.POST("/projects/:id/delete", projectHandler.DeleteProject)

	protected.GET("/settlements", settlementHandler.SettlementPage)
	protected.POST("/settlements/calculate", settlementHandler.Calculate)

	protected.POST("/chat/toggle", chatHandler.Toggle)
	protected.POST("/chat/voice", chatHandler.ToggleVoice)
	protected.POST("/chat/messages", chatHandler.SendMessage)
	protected.POST("/chat/capabilities", chatHandler.Capabilities)
	protected.POST("/chat/character", chatHandler.SelectCharacter)
	protected.POST("/chat/record", chatHandler.Record)
	protected.POST("/chat/transcript", chatHandler.Transcript)
	protected.PUT("/chat/context", chatHandler.SetDocumentContext)
	protected.DELETE("/chat/context", chatHandler.ClearDocumentContext)
	protected.GET("/avatar/scene", chatHandler.Scene)

	// Redirect root to dashboard (or login if not authenticated)
	e.GET("/", func(c echo.Context) error {
		return c.Redirect(http.StatusTemporaryRedirect, "/dashboard")
	})

	go sweep(ctx, sessions, hub, cfg.Assistant.ContextTTL, log)

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", "addr", cfg.Addr())
		errCh <- e.Start(cfg.Addr())
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

// sweep evicts idle console and chat sessions until ctx ends.
func sweep(ctx context.Context, sessions *console.Sessions, hub *chatbot.Hub, idle time.Duration, log *slog.Logger) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			states := sessions.Sweep()
			chats := hub.Sweep(idle)
			if states > 0 || chats > 0 {
				log.Info("swept idle sessions", "console", states, "chat", chats)
			}
		}
	}
}
