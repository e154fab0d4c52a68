// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"

	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	invitestore "github.com/ibbtech/memberhub/internal/app/store/invites"
	memberstore "github.com/ibbtech/memberhub/internal/app/store/members"
	ministrystore "github.com/ibbtech/memberhub/internal/app/store/ministries"
)

// ConnectDB opens the MongoDB connection and verifies it with a ping.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	opts := options.Client().
		ApplyURI(appCfg.MongoURI).
		SetMaxPoolSize(appCfg.MongoMaxPoolSize).
		SetMinPoolSize(appCfg.MongoMinPoolSize)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return DBDeps{}, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return DBDeps{}, fmt.Errorf("ping mongo: %w", err)
	}

	logger.Info("connected to MongoDB",
		zap.String("database", appCfg.MongoDatabase))

	return DBDeps{
		MongoClient:   client,
		MongoDatabase: client.Database(appCfg.MongoDatabase),
	}, nil
}

// EnsureSchema creates the indexes every collection relies on:
// the partial unique email index on members, the TTL index on invite
// expiry, and the unique ministry name.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	db := deps.MongoDatabase

	if err := memberstore.New(db).EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("member indexes: %w", err)
	}
	if err := invitestore.New(db, appCfg.InviteExpiry).EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("invite indexes: %w", err)
	}
	if err := ministrystore.New(db).EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("ministry indexes: %w", err)
	}

	logger.Info("database indexes ensured")
	return nil
}
