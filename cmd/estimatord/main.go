package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/SpaceshipxDev/creationfromzeus/internal/common"
	"github.com/SpaceshipxDev/creationfromzeus/internal/llm"
	"github.com/SpaceshipxDev/creationfromzeus/internal/llm/openai"
	"github.com/SpaceshipxDev/creationfromzeus/internal/pipeline"
	"github.com/SpaceshipxDev/creationfromzeus/internal/render"
	"github.com/SpaceshipxDev/creationfromzeus/internal/server"
	"github.com/SpaceshipxDev/creationfromzeus/internal/session"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("config invalid", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	completer := openai.NewClient(openai.Config{
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		Timeout:     cfg.LLM.Timeout,
	}, logger)

	var raster *render.RasterClient
	if cfg.Render.RasterizerURL != "" {
		raster = render.NewRasterClient(cfg.Render.RasterizerURL, cfg.Render.Timeout, logger)
	}
	var cad *render.CADClient
	if cfg.Render.CADRendererURL != "" {
		cad = render.NewCADClient(cfg.Render.CADRendererURL, cfg.Render.Timeout, cfg.Render.MaxParallel, logger)
	}

	defaults := llm.Defaults{
		SupplierName:       cfg.Defaults.SupplierName,
		SupplierContact:    cfg.Defaults.SupplierContact,
		SupplierTel:        cfg.Defaults.SupplierTel,
		SupplierEmail:      cfg.Defaults.SupplierEmail,
		SupplierAddress:    cfg.Defaults.SupplierAddress,
		PaymentTerms:       cfg.Defaults.PaymentTerms,
		AcceptanceStandard: cfg.Defaults.AcceptanceStandard,
		Validity:           cfg.Defaults.Validity,
		Notice:             cfg.Defaults.Notice,
	}

	sessions := session.NewRegistry(cfg.Session.WorkDir, cfg.Session.TTL, logger)
	pipe := pipeline.New(logger, defaults, cfg.LLM.InputMode, completer, raster, cad)
	srv := server.New(logger, cfg, sessions, pipe)

	httpSrv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: srv.Router(),
	}

	go func() {
		logger.Info("http serving", "addr", cfg.Server.Addr, "input_mode", cfg.LLM.InputMode)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http serve", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "err", err)
	}
}
