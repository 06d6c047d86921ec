package cmd

import (
	"context"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/nikogura/portfolio-assistant/pkg/chat"
	"github.com/nikogura/portfolio-assistant/pkg/config"
	"github.com/nikogura/portfolio-assistant/pkg/llm"
	"github.com/nikogura/portfolio-assistant/pkg/parser"
	"github.com/nikogura/portfolio-assistant/pkg/portfolio"
	"github.com/nikogura/portfolio-assistant/pkg/resume"
	"github.com/nikogura/portfolio-assistant/pkg/server"
	"github.com/nikogura/portfolio-assistant/pkg/tools"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

//nolint:gochecknoglobals // Cobra boilerplate
var listenAddr string

//nolint:gochecknoglobals // Cobra boilerplate
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the portfolio API and chat endpoint",
	Long: `Serve the portfolio over HTTP.

If the portfolio document cannot be loaded, a placeholder portfolio is served
and /healthz reports "config": "fallback". Without an API key for the selected
provider, /api/chat answers 500 "Missing API key" while every other route works.

Example:
  portfolio-assistant serve
  portfolio-assistant serve --listen :3000 --portfolio https://example.com/portfolio.yaml`,
	RunE: runServe,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&listenAddr, "listen", "", "Listen address (default from settings)")
}

// app holds the components shared by every command.
type app struct {
	settings config.Config
	doc      portfolio.Config
	loaded   bool
	parser   *parser.Parser
	catalog  *tools.Catalog
	store    resume.Store
	logger   *slog.Logger
}

// newApp loads settings and the portfolio, inspects the resume when one is
// configured and builds the parser and tool catalog.
func newApp(ctx context.Context) (a *app, err error) {
	a = &app{logger: newLogger()}

	a.settings, err = loadSettings()
	if err != nil {
		return a, err
	}

	a.doc, a.loaded = portfolio.LoadOrFallback(ctx, a.settings.PortfolioPath, a.logger)

	a.store, err = resume.NewStore(ctx, a.settings.Resume)
	switch {
	case errors.Is(err, resume.ErrNotConfigured):
		a.logger.Info("no resume store configured, downloads disabled")
		err = nil
	case err != nil:
		a.logger.Warn("resume store unavailable, downloads disabled", "error", err)
		a.store = nil
		err = nil
	default:
		a.enrichResume(ctx)
	}

	a.parser, err = parser.New(&a.doc)
	if err != nil {
		err = errors.Wrap(err, "failed to create parser")
		return a, err
	}

	a.catalog, err = tools.NewCatalog(&a.doc, a.logger)
	if err != nil {
		err = errors.Wrap(err, "failed to create tool catalog")
		return a, err
	}

	return a, err
}

// enrichResume fills resume size and type from the stored file.
func (a *app) enrichResume(ctx context.Context) {
	data, name, err := a.store.Fetch(ctx)
	if err != nil {
		a.logger.Warn("failed to fetch resume", "location", a.store.Location(), "error", err)
		return
	}

	info, err := resume.Inspect(name, data)
	if err != nil {
		a.logger.Warn("failed to inspect resume", "location", a.store.Location(), "error", err)
	}

	a.doc.Resume = resume.Enrich(a.doc.Resume, info)
	a.logger.Debug("resume inspected", "location", a.store.Location(), "type", info.FileType,
		"size", info.SizeLabel, "pages", info.Pages, "words", info.Words)
}

// newProvider builds the configured model provider. It returns a nil provider
// without error when no API key is set.
func newProvider(ctx context.Context, settings config.Config, logger *slog.Logger) (provider llm.Provider, err error) {
	if settings.APIKey() == "" {
		logger.Warn("no API key configured, chat disabled", "provider", settings.Provider)
		return provider, err
	}

	switch settings.Provider {
	case config.ProviderAnthropic:
		var p *llm.Anthropic
		p, err = llm.NewAnthropic(settings.AnthropicAPIKey, settings.GetAnthropicModel(), "", logger)
		if err != nil {
			return provider, err
		}
		provider = p
	default:
		var p *llm.Gemini
		p, err = llm.NewGemini(ctx, settings.GoogleAPIKey, settings.GetGeminiModel(), "", logger)
		if err != nil {
			return provider, err
		}
		provider = p
	}

	return provider, err
}

func runServe(cmd *cobra.Command, args []string) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var a *app
	a, err = newApp(ctx)
	if err != nil {
		return err
	}

	var provider llm.Provider
	provider, err = newProvider(ctx, a.settings, a.logger)
	if err != nil {
		err = errors.Wrap(err, "failed to create model provider")
		return err
	}

	var chatHandler *chat.Handler
	chatHandler, err = chat.NewHandler(provider, a.parser, a.catalog, chat.Options{
		MaxDuration: a.settings.MaxDuration(),
		MaxSteps:    a.settings.Chat.MaxSteps,
		MaxTokens:   a.settings.Chat.MaxTokens,
		Logger:      a.logger,
	})
	if err != nil {
		return err
	}

	var srv *server.Server
	srv, err = server.New(a.parser, a.catalog, chatHandler, resume.NewHandler(a.store, a.logger), server.Options{
		ConfigLoaded: a.loaded,
		Logger:       a.logger,
	})
	if err != nil {
		return err
	}

	addr := a.settings.ListenAddr
	if listenAddr != "" {
		addr = listenAddr
	}

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("serving portfolio", "addr", addr, "provider", chatHandler.ProviderName(), "name", a.doc.Personal.Name)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err = <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
			return err
		}
		err = errors.Wrapf(err, "failed to serve on %s", addr)
		return err
	case <-ctx.Done():
	}

	a.logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err = httpServer.Shutdown(shutdownCtx)
	if err != nil {
		err = errors.Wrap(err, "failed to shut down server")
		return err
	}

	return err
}
