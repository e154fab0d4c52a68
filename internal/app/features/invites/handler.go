// internal/app/features/invites/handler.go
package invites

import (
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/ibbtech/memberhub/internal/app/service/reconcile"
	invitestore "github.com/ibbtech/memberhub/internal/app/store/invites"
)

// Handler is the feature-level handler for invites.
type Handler struct {
	Log     *zap.Logger
	Invites *invitestore.Store
	Svc     *reconcile.Service
}

func NewHandler(db *mongo.Database, svc *reconcile.Service, expiry time.Duration, logger *zap.Logger) *Handler {
	return &Handler{
		Log:     logger,
		Invites: invitestore.New(db, expiry),
		Svc:     svc,
	}
}
