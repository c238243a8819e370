package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"dasa.cc/primeview/config"
	"dasa.cc/primeview/loader"
	"dasa.cc/primeview/metrics"
	"dasa.cc/primeview/viewer"
)

type rootOptions struct {
	configPath string
	dataDir    string
	logLevel   string
}

// app carries what every subcommand needs once flags and config are read.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	metrics *metrics.Registry
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	a := &app{}

	cmd := &cobra.Command{
		Use:   "primeview",
		Short: "View precomputed grid datasets and their relations",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd, opts)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.configPath, "config", "c", "", "config file path")
	pf.StringVarP(&opts.dataDir, "data-dir", "d", "", "directory of dataset files")
	pf.StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	cmd.AddCommand(
		newViewCmd(a),
		newSnapshotCmd(a),
		newReplCmd(a),
	)
	return cmd
}

func (a *app) init(cmd *cobra.Command, opts *rootOptions) error {
	v := config.New()
	pf := cmd.Flags()
	for key, name := range map[string]string{"data.dir": "data-dir", "log.level": "log-level"} {
		if f := pf.Lookup(name); f != nil && f.Changed {
			if err := v.BindPFlag(key, f); err != nil {
				return err
			}
		}
	}
	cfg, err := config.LoadWith(v, opts.configPath)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg.Log)
	if err != nil {
		return fmt.Errorf("logger initialization failed: %w", err)
	}
	a.cfg, a.logger = cfg, logger
	if cfg.Metrics.Addr != "" {
		a.metrics = metrics.NewRegistry()
	}
	return nil
}

// newLogger builds a console logger writing to stderr at the configured level.
func newLogger(c config.LogConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.Level)
	if err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	if c.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.Encoding = "console"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}
	return zc.Build()
}

// source returns the dataset source the config names, S3 taking precedence.
func (a *app) source(ctx context.Context) (loader.Source, error) {
	s3c := a.cfg.Data.S3
	if s3c.Bucket != "" {
		return loader.NewS3Source(ctx, loader.S3Options{
			Bucket:   s3c.Bucket,
			Prefix:   s3c.Prefix,
			Region:   s3c.Region,
			Endpoint: s3c.Endpoint,
		})
	}
	return &loader.DirSource{Dir: a.cfg.Data.Dir}, nil
}

// session returns a session over the configured source sized w by h; zero
// sizes use the configured view size.
func (a *app) session(ctx context.Context, w, h int) (*viewer.Session, error) {
	src, err := a.source(ctx)
	if err != nil {
		return nil, err
	}
	o := viewer.OptionsFrom(a.cfg)
	if w > 0 && h > 0 {
		o.Width, o.Height = float64(w), float64(h)
	}
	l := loader.New(src, a.logger.Named("loader"))
	return viewer.New(l, o, a.logger.Named("viewer"), a.metrics), nil
}

// firstSelector returns selector, else the configured one, else the first
// the source lists.
func (a *app) firstSelector(ctx context.Context, s *viewer.Session, selector string) (string, error) {
	if selector != "" {
		return selector, nil
	}
	if a.cfg.View.Selector != "" {
		return a.cfg.View.Selector, nil
	}
	ss, err := s.Loader.List(ctx)
	if err != nil {
		return "", err
	}
	if len(ss) == 0 {
		return "", loader.ErrNotFound
	}
	return ss[0], nil
}

// serveMetrics exposes the registry until ctx is done.
func (a *app) serveMetrics(ctx context.Context) {
	if a.metrics == nil {
		return
	}
	srv := &http.Server{
		Addr:              a.cfg.Metrics.Addr,
		Handler:           a.metrics.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		a.logger.Info("serving metrics", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("metrics server failed", zap.Error(err))
		}
	}()
	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdown)
	}()
}
