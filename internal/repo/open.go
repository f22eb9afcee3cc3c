package repo

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"estate-api/internal/core/config"
	"estate-api/internal/core/database"
	"estate-api/internal/domain"
	"estate-api/internal/feature/listing"
	"estate-api/internal/feature/user"
)

// Stores bundles the persistence services picked by configuration.
type Stores struct {
	Listings domain.ListingStore
	Users    domain.UserStore
	Close    func(context.Context) error
}

// Open connects the configured backend. The returned Close must be called
// on shutdown.
func Open(ctx context.Context, cfg config.DB, l *zap.Logger) (*Stores, error) {
	switch cfg.Driver {
	case "mongo":
		timeout := time.Duration(cfg.ConnectTimeoutSec) * time.Second
		client, err := database.NewMongo(ctx, database.MongoOpts{
			URI:            cfg.URI,
			MaxPoolSize:    uint64(max(cfg.MaxOpenConns, 0)),
			ConnectTimeout: timeout,
		})
		if err != nil {
			return nil, err
		}
		db := client.Database(cfg.Database)
		listings, users := NewMongoListingRepo(db), NewMongoUserRepo(db)
		if err := listings.EnsureIndexes(ctx); err != nil {
			l.Warn("listing indexes", zap.Error(err))
		}
		if err := users.EnsureIndexes(ctx); err != nil {
			l.Warn("user indexes", zap.Error(err))
		}
		l.Info("store ready", zap.String("driver", "mongo"), zap.String("database", cfg.Database))
		return &Stores{Listings: listings, Users: users, Close: client.Disconnect}, nil

	case "postgres", "mysql":
		db, err := database.NewGorm(database.Opts{
			Driver:             cfg.Driver,
			DSN:                cfg.DSN,
			Username:           cfg.Username,
			Password:           cfg.Password,
			MaxOpenConns:       cfg.MaxOpenConns,
			MaxIdleConns:       cfg.MaxIdleConns,
			ConnMaxLifetimeMin: cfg.ConnMaxLifetimeMin,
			LogLevel:           cfg.LogLevel,
		})
		if err != nil {
			return nil, fmt.Errorf("%s connect: %w", cfg.Driver, err)
		}
		if cfg.AutoMigrate {
			if err := db.WithContext(ctx).AutoMigrate(&user.UserModel{}, &listing.ListingModel{}); err != nil {
				_ = database.CloseGorm(db)
				return nil, fmt.Errorf("auto migrate: %w", err)
			}
		}
		l.Info("store ready", zap.String("driver", cfg.Driver), zap.String("dsn", database.MaskDSN(cfg.DSN)))
		return &Stores{
			Listings: NewListingRepo(db),
			Users:    NewUserRepo(db),
			Close:    func(context.Context) error { return database.CloseGorm(db) },
		}, nil

	case "memory":
		l.Warn("using in-memory store; data is lost on exit")
		return &Stores{
			Listings: NewMemoryListingRepo(),
			Users:    NewMemoryUserRepo(),
			Close:    func(context.Context) error { return nil },
		}, nil
	}
	return nil, fmt.Errorf("%w: %q", database.ErrUnsupportedDriver, cfg.Driver)
}
