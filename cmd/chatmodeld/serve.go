package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"chatmodeld/internal/config"
	"chatmodeld/internal/httpapi"
	"chatmodeld/internal/manager"
	"chatmodeld/internal/registry"
	"chatmodeld/internal/store"
	"chatmodeld/pkg/types"
)

func buildServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP and websocket server",
		RunE:  runServe,
	}
	fl := cmd.Flags()
	fl.String("addr", envOr("CHATMODELD_ADDR", ":8080"), "HTTP listen address, e.g. :8080")
	fl.String("models-dir", envOr("CHATMODELD_MODELS_DIR", "~/models/llm"), "Directory to scan for *.gguf files and genie bundles")
	fl.String("db-path", "", "SQLite path for instance metadata and generation history (empty=off)")
	fl.String("default-model", "", "Default model id when a request omits model")
	fl.Int("mem-budget-mb", 0, "Memory budget in MB for all instances (0=unlimited)")
	fl.Int("mem-margin-mb", 0, "Reserved memory margin in MB to keep free")
	fl.Int("max-queue-depth", 0, "Per-instance queue depth before 429 (0=default)")
	fl.Int("max-wait-ms", 0, "Queue wait before 429, in milliseconds (0=default)")
	fl.Int("drain-timeout-ms", 0, "Eviction drain timeout in milliseconds (0=default)")
	fl.Int64("infer-timeout-s", 0, "Per-request generation timeout in seconds (0=off)")
	fl.Int64("max-body-bytes", 0, "Request body cap in bytes (0=default)")
	fl.String("cors-origins", "", "Comma-separated origins allowed for browser clients (empty=CORS off)")
	fl.Bool("warm-default", false, "Load the default model at startup instead of on first request")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	fl := cmd.Flags()

	var cfg config.Config
	if flagConfig != "" {
		var err error
		cfg, err = config.Load(flagConfig)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
	}
	// Explicitly set flags win over file values; otherwise the file wins;
	// otherwise the flag default applies.
	if fl.Changed("addr") || cfg.Addr == "" {
		cfg.Addr, _ = fl.GetString("addr")
	}
	if fl.Changed("models-dir") || cfg.ModelsDir == "" {
		cfg.ModelsDir, _ = fl.GetString("models-dir")
	}
	if fl.Changed("db-path") || cfg.DBPath == "" {
		cfg.DBPath, _ = fl.GetString("db-path")
	}
	if fl.Changed("default-model") || cfg.DefaultModel == "" {
		cfg.DefaultModel, _ = fl.GetString("default-model")
	}
	if fl.Changed("mem-budget-mb") || cfg.MemBudgetMB == 0 {
		cfg.MemBudgetMB, _ = fl.GetInt("mem-budget-mb")
	}
	if fl.Changed("mem-margin-mb") || cfg.MemMarginMB == 0 {
		cfg.MemMarginMB, _ = fl.GetInt("mem-margin-mb")
	}
	if fl.Changed("max-queue-depth") || cfg.MaxQueueDepth == 0 {
		cfg.MaxQueueDepth, _ = fl.GetInt("max-queue-depth")
	}
	if fl.Changed("max-wait-ms") || cfg.MaxWaitMS == 0 {
		cfg.MaxWaitMS, _ = fl.GetInt("max-wait-ms")
	}
	if fl.Changed("drain-timeout-ms") || cfg.DrainTimeoutMS == 0 {
		cfg.DrainTimeoutMS, _ = fl.GetInt("drain-timeout-ms")
	}
	if !cmd.InheritedFlags().Changed("log-level") && cfg.LogLevel != "" {
		flagLogLevel = cfg.LogLevel
	}
	logger := newLogger()

	discovered, err := registry.LoadDir(cfg.ModelsDir)
	if err != nil {
		if len(cfg.Models) == 0 {
			return fmt.Errorf("scan models dir %s: %w", cfg.ModelsDir, err)
		}
		logger.Warn().Err(err).Str("dir", cfg.ModelsDir).Msg("models dir scan failed; serving explicit entries only")
	}
	explicit := make([]types.Model, 0, len(cfg.Models))
	for _, mc := range cfg.Models {
		explicit = append(explicit, mc.Model())
	}
	reg := registry.Merge(discovered, explicit)
	if len(reg) == 0 {
		logger.Warn().Str("dir", cfg.ModelsDir).Msg("no models found; model list will be empty")
	}

	var st *store.Store
	if cfg.DBPath != "" {
		st, err = store.Open(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("open store %s: %w", cfg.DBPath, err)
		}
	}

	mlog := logger.With().Str("component", "manager").Logger()
	mgr := manager.NewWithConfig(manager.ManagerConfig{
		Registry:       reg,
		BudgetMB:       cfg.MemBudgetMB,
		MarginMB:       cfg.MemMarginMB,
		DefaultModel:   cfg.DefaultModel,
		MaxQueueDepth:  cfg.MaxQueueDepth,
		MaxWait:        time.Duration(cfg.MaxWaitMS) * time.Millisecond,
		DrainTimeout:   time.Duration(cfg.DrainTimeoutMS) * time.Millisecond,
		LlamaCtx:       cfg.Llama.ContextSize,
		LlamaThreads:   cfg.Llama.Threads,
		LlamaGPULayers: cfg.Llama.GPULayers,
		Store:          st,
		Logger:         &mlog,
	})
	mgr.SetEventPublisher(manager.NewLogPublisher(logger.With().Str("component", "events").Logger()))

	for _, chk := range mgr.Preflight().Models {
		if !chk.OK {
			logger.Warn().Str("model", chk.ModelID).Str("runtime", chk.Runtime).Str("error", chk.Error).Msg("preflight check failed")
		}
	}

	httpapi.SetLogger(logger.With().Str("component", "http").Logger())
	if n, _ := fl.GetInt64("max-body-bytes"); n > 0 {
		httpapi.SetMaxBodyBytes(n)
	}
	if sec, _ := fl.GetInt64("infer-timeout-s"); sec > 0 {
		httpapi.SetInferTimeoutSeconds(sec)
	}
	if s, _ := fl.GetString("cors-origins"); s != "" {
		cfg.CORS.Enabled = true
		cfg.CORS.Origins = splitCSV(s)
	}
	if cfg.CORS.Enabled {
		httpapi.SetCORSOptions(true, cfg.CORS.Origins, cfg.CORS.Methods, cfg.CORS.Headers)
	}

	// Streams observe this context so in-flight generations stop when the
	// process shuts down.
	baseCtx, baseCancel := context.WithCancel(context.Background())
	defer baseCancel()
	httpapi.SetBaseContext(baseCtx)

	if warm, _ := fl.GetBool("warm-default"); warm && cfg.DefaultModel != "" {
		if opID, err := mgr.Switch(baseCtx, cfg.DefaultModel); err != nil {
			logger.Warn().Err(err).Str("model", cfg.DefaultModel).Msg("warm default model")
		} else {
			logger.Info().Str("model", cfg.DefaultModel).Str("op_id", opID).Msg("warming default model")
		}
	}

	srv := &http.Server{Addr: cfg.Addr, Handler: httpapi.NewMux(mgr)}
	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.Addr).Str("models_dir", cfg.ModelsDir).Int("models", len(reg)).Msg("chatmodeld listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-stop:
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
	case err := <-errCh:
		mgr.Close()
		return fmt.Errorf("server error: %w", err)
	}

	// Stop accepting, let handlers finish, then cancel streams and
	// release instances. Close after Shutdown so responses in flight
	// are not torn down mid-write.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("graceful shutdown")
	}
	baseCancel()
	if err := mgr.Close(); err != nil {
		logger.Warn().Err(err).Msg("close manager")
	}
	return nil
}
