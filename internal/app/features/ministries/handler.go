// internal/app/features/ministries/handler.go
package ministries

import (
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	ministrystore "github.com/ibbtech/memberhub/internal/app/store/ministries"
)

// Handler is the feature-level handler for ministries.
type Handler struct {
	Log        *zap.Logger
	Ministries *ministrystore.Store
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		Log:        logger,
		Ministries: ministrystore.New(db),
	}
}
