// internal/app/features/members/handler.go
package members

import (
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/ibbtech/memberhub/internal/app/service/reconcile"
	memberstore "github.com/ibbtech/memberhub/internal/app/store/members"
	"github.com/ibbtech/memberhub/internal/app/system/resolve"
)

// Handler is the feature-level handler for member records.
// It holds the store, the reconciliation service, and the read-side
// resolver provided by Startup.
type Handler struct {
	Log      *zap.Logger
	Members  *memberstore.Store
	Svc      *reconcile.Service
	Resolver *resolve.Resolver
}

func NewHandler(db *mongo.Database, svc *reconcile.Service, logger *zap.Logger) *Handler {
	store := memberstore.New(db)
	return &Handler{
		Log:      logger,
		Members:  store,
		Svc:      svc,
		Resolver: resolve.New(store, logger),
	}
}
