package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sharktrack/sharktrack-backend-go/internal/api"
	"github.com/sharktrack/sharktrack-backend-go/internal/metrics"
	"github.com/sharktrack/sharktrack-backend-go/internal/service"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context())
		},
	}
}

func (a *app) serve(ctx context.Context) error {
	defer a.logger.Sync() //nolint:errcheck

	// 初始化数据库
	repo, closeDB, err := a.openRepository(ctx)
	if err != nil {
		return err
	}
	defer closeDB()

	src, err := a.newSource(repo)
	if err != nil {
		return err
	}

	m := metrics.New()
	pipelineSvc, err := service.NewPipelineService(src, a.pipeline, m, a.logger)
	if err != nil {
		return err
	}
	datasetSvc, err := service.NewDatasetService(repo, a.pipeline, a.logger)
	if err != nil {
		return err
	}

	if a.cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	if a.cfg.JWTSecret == "" {
		a.logger.Warn("JWT secret not set, dataset uploads are disabled")
	}

	// 初始化路由
	router := api.SetupRouter(a.cfg, api.Dependencies{
		Pipeline: pipelineSvc,
		Datasets: datasetSvc,
		Metrics:  m,
		Logger:   a.logger,
	})

	srv := &http.Server{
		Addr:              a.cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		// 启动服务器
		a.logger.Info("server starting", zap.String("addr", a.cfg.Port), zap.String("source", src.Name()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
