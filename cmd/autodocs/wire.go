package main

import (
	"context"
	"fmt"
	"strings"

	"autodocs/internal/artifact"
	"autodocs/internal/config"
	"autodocs/internal/logging"
	"autodocs/internal/rewrite"
	"autodocs/internal/rewrite/client"
)

// buildService constructs the provider client and wraps it in the
// middleware chain. Logging sits outermost, the cache above the retry
// loop so hits skip it entirely, and the rate limiter and timeout below
// it so every attempt pays a token and carries its own deadline.
func buildService(ctx context.Context, cfg *config.Config, dryRun bool) (rewrite.Service, error) {
	var svc rewrite.Service
	switch {
	case dryRun || cfg.Provider == "fake":
		svc = &rewrite.Fake{}
	case cfg.Provider == "gemini":
		g, err := client.NewGemini(ctx, cfg.APIKey, cfg.Model)
		if err != nil {
			return nil, fmt.Errorf("gemini client: %w", err)
		}
		svc = g
	case cfg.Provider == "openai":
		svc = client.NewOpenAI(client.OpenAIConfig{
			BaseURL: cfg.BaseURL,
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
		})
	default:
		return nil, fmt.Errorf("unknown provider %q (supported: gemini, openai, fake)", cfg.Provider)
	}

	mws := []rewrite.Middleware{rewrite.WithLogging(nil)}
	if cfg.Cache.Enabled {
		cache, err := buildCache(cfg.Cache)
		if err != nil {
			return nil, err
		}
		mws = append(mws, rewrite.WithCache(cache))
	}
	mws = append(mws, rewrite.Retry(cfg.MaxAttempts, cfg.BaseDelay.Std()))
	if cfg.RequestsPerSecond > 0 {
		mws = append(mws, rewrite.RateLimit(cfg.RequestsPerSecond, cfg.Burst))
	}
	mws = append(mws, rewrite.WithTimeout(cfg.AttemptTimeout.Std()))
	return rewrite.Wrap(svc, mws...), nil
}

func buildCache(cc config.CacheConfig) (rewrite.Cache, error) {
	mem, err := rewrite.NewMemoryCache(cc.MaxEntries)
	if err != nil {
		return nil, fmt.Errorf("memory cache: %w", err)
	}
	if strings.TrimSpace(cc.Dir) == "" {
		return mem, nil
	}
	disk, err := rewrite.NewDiskCache(rewrite.DiskCacheConfig{
		Dir:        cc.Dir,
		TTL:        cc.TTL.Std(),
		MaxEntries: cc.MaxEntries,
	})
	if err != nil {
		return nil, fmt.Errorf("disk cache: %w", err)
	}
	return rewrite.NewLayeredCache(mem, disk), nil
}

// buildStore picks the primary artifact store from the run mode and
// attaches any configured mirrors. The returned cleanup closes database
// handles and is safe to call when no mirror opened one. Dry runs keep
// results in memory and never mirror.
func buildStore(cfg *config.Config, outputDir string, dryRun bool) (artifact.Store, func(), error) {
	log := logging.New("cli")

	var primary artifact.Store
	switch {
	case dryRun:
		primary = artifact.NewMemoryStore()
	case outputDir != "":
		ds, err := artifact.NewDirStore(outputDir)
		if err != nil {
			return nil, nil, fmt.Errorf("output directory: %w", err)
		}
		primary = ds
	default:
		primary = artifact.NewInPlaceStore()
	}

	var closers []func() error
	cleanup := func() {
		for _, c := range closers {
			if err := c(); err != nil {
				log.Warn("artifact store close failed", "error", err)
			}
		}
	}
	if dryRun {
		return primary, cleanup, nil
	}

	var mirrors []artifact.Store
	for _, name := range cfg.Artifact.Mirrors {
		switch name {
		case "s3":
			if !cfg.Artifact.S3.CanUse() {
				log.Warn("s3 mirror skipped: endpoint, credentials, or bucket missing")
				continue
			}
			s3, err := artifact.NewS3Store(artifact.S3Config{
				Endpoint:  cfg.Artifact.S3.Endpoint,
				Region:    cfg.Artifact.S3.Region,
				AccessKey: cfg.Artifact.S3.AccessKey,
				SecretKey: cfg.Artifact.S3.SecretKey,
				Bucket:    cfg.Artifact.S3.Bucket,
				UseSSL:    cfg.Artifact.S3.UseSSL,
			})
			if err != nil {
				cleanup()
				return nil, nil, fmt.Errorf("s3 mirror: %w", err)
			}
			mirrors = append(mirrors, s3)
		case "postgres":
			if strings.TrimSpace(cfg.Artifact.PostgresDSN) == "" {
				log.Warn("postgres mirror skipped: no DSN")
				continue
			}
			db, err := artifact.OpenPostgres(cfg.Artifact.PostgresDSN)
			if err != nil {
				cleanup()
				return nil, nil, fmt.Errorf("postgres mirror: %w", err)
			}
			closers = append(closers, db.Close)
			mirrors = append(mirrors, artifact.NewPostgresStore(db))
		case "sqlite":
			if strings.TrimSpace(cfg.Artifact.SQLitePath) == "" {
				log.Warn("sqlite mirror skipped: no path")
				continue
			}
			db, err := artifact.OpenSQLite(cfg.Artifact.SQLitePath)
			if err != nil {
				cleanup()
				return nil, nil, fmt.Errorf("sqlite mirror: %w", err)
			}
			closers = append(closers, db.Close)
			mirrors = append(mirrors, artifact.NewSQLiteStore(db))
		default:
			log.Warn("unknown artifact mirror", "name", name)
		}
	}
	if len(mirrors) > 0 {
		return artifact.NewMultiStore(primary, mirrors...), cleanup, nil
	}
	return primary, cleanup, nil
}
