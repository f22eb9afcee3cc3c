// Package app wires configuration into the stores, services and HTTP
// modules shared by the api and admin binaries.
package app

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"go.uber.org/zap"

	"estate-api/internal/core/auth"
	"estate-api/internal/core/cache"
	"estate-api/internal/core/config"
	"estate-api/internal/core/tracing"
	"estate-api/internal/imagehost"
	"estate-api/internal/repo"
	"estate-api/internal/service"
	"estate-api/internal/transport/http/handler"
	"estate-api/internal/transport/http/router"
)

type App struct {
	Cfg      *config.Config
	Log      *zap.Logger
	Registry *router.Registry
	Options  router.Options

	closers []func(context.Context) error
}

// New connects every backing service named in cfg. On error the services
// opened so far are released before returning.
func New(ctx context.Context, cfg *config.Config, l *zap.Logger) (_ *App, err error) {
	a := &App{Cfg: cfg, Log: l, Registry: &router.Registry{}}
	defer func() {
		if err != nil {
			_ = a.Close(context.WithoutCancel(ctx))
		}
	}()

	shutdownTracer, err := tracing.Init(ctx, tracing.Options{
		Endpoint:    cfg.Tracing.Endpoint,
		ServiceName: cfg.Tracing.ServiceName,
		Environment: cfg.App.Env,
		Version:     cfg.Tracing.Version,
	})
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, shutdownTracer)

	stores, err := repo.Open(ctx, cfg.DB, l)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, stores.Close)

	listingOpts := []service.ListingOption{service.WithLogger(l)}
	if cfg.Redis.Addr != "" {
		c := cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if perr := c.Ping(ctx); perr != nil {
			// the store still serves reads; run uncached
			l.Warn("redis unreachable, listing cache disabled", zap.Error(perr))
			_ = c.Close()
		} else {
			a.closers = append(a.closers, func(context.Context) error { return c.Close() })
			listingOpts = append(listingOpts, service.WithCache(c, time.Duration(cfg.Cache.ListingTTLSec)*time.Second))
		}
	}

	jwter := &auth.JWTer{
		Secret: jwtSecret(cfg.Auth.JWTSecret, l),
		Issuer: cfg.Auth.JWTIssuer,
		TTL:    time.Duration(cfg.Auth.AccessTokenTTLMin) * time.Minute,
	}
	if cfg.Auth.StaticToken == "" {
		l.Info("static admin token not set; admin routes accept admin JWTs only")
	}

	uploader, err := imagehost.FromConfig(ctx, cfg.ImageHost.Provider,
		imagehost.NewCloudinary(cfg.ImageHost.UploadURL, cfg.ImageHost.UploadPreset),
		imagehost.S3Options{
			Region:    cfg.S3.Region,
			Bucket:    cfg.S3.Bucket,
			Endpoint:  cfg.S3.Endpoint,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			PublicURL: cfg.S3.PublicURL,
		})
	if err != nil {
		return nil, err
	}

	users := service.NewUserService(stores.Users, jwter, l)
	listings := service.NewListingService(stores.Listings, listingOpts...)

	a.Registry.Register(
		handler.Auth{Users: users, Cookie: handler.Cookie{
			Name:   cfg.Auth.CookieName,
			Secure: cfg.Auth.CookieSecure,
			MaxAge: cfg.Auth.AccessTokenTTLMin * 60,
		}},
		handler.Listings{Svc: listings, Users: users},
		handler.Users{Users: users, Listings: listings},
		handler.Upload{Host: imagehost.NewHost(uploader, cfg.ImageHost.MaxBytes, l)},
	)
	a.Options = router.Options{
		Logger:      l,
		Gate:        &auth.Gate{StaticToken: cfg.Auth.StaticToken, JWT: jwter},
		CookieName:  cfg.Auth.CookieName,
		CORSOrigins: cfg.App.CORSOrigins,
		Limits:      cfg.Limits,
		StaticDir:   cfg.App.StaticDir,
	}
	return a, nil
}

// Close releases backing services in reverse order of acquisition.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func jwtSecret(configured string, l *zap.Logger) []byte {
	if configured != "" {
		return []byte(configured)
	}
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	l.Warn("auth.jwt_secret not set; using a random secret, sessions end on restart")
	return []byte(hex.EncodeToString(b))
}
