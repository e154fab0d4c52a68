// internal/app/service/reconcile/photo.go
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	memberstore "github.com/ibbtech/memberhub/internal/app/store/members"
	"github.com/ibbtech/memberhub/internal/domain/faults"
	"github.com/ibbtech/memberhub/internal/domain/models"
)

// UploadPhoto stores a member photo with a unique path and records the
// new path on the document, including an audit record for the change.
// A previous photo blob is deleted best-effort.
func (s *Service) UploadPhoto(ctx context.Context, id primitive.ObjectID, filename string, r io.Reader, contentType string) (string, error) {
	if s.blobs == nil {
		return "", faults.Validation("armazenamento de fotos não configurado")
	}

	m, err := s.members.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, memberstore.ErrNotFound) {
			return "", faults.NotFound("membro não encontrado")
		}
		return "", err
	}

	now := time.Now().UTC()
	path := filepath.ToSlash(filepath.Join(
		fmt.Sprintf("photos/%04d/%02d", now.Year(), now.Month()),
		uuid.New().String()[:8]+filepath.Ext(filename),
	))

	opts := &storage.PutOptions{ContentType: contentType}
	if err := s.blobs.Put(ctx, path, r, opts); err != nil {
		return "", faults.Provider("enviar foto", err)
	}

	record := models.ChangeRecord{
		Chave:     "foto",
		Antigo:    m.Foto,
		Novo:      path,
		UpdatedAt: now,
	}
	if err := s.members.Update(ctx, id, bson.M{"foto": path}, []models.ChangeRecord{record}); err != nil {
		// Roll the new blob back so it does not leak.
		if delErr := s.blobs.Delete(ctx, path); delErr != nil {
			s.log.Error("photo rollback delete failed; orphaned blob",
				zap.String("path", path), zap.Error(delErr))
		}
		return "", err
	}

	if m.Foto != "" {
		if err := s.blobs.Delete(ctx, m.Foto); err != nil {
			s.log.Warn("previous photo delete failed; orphaned blob",
				zap.String("path", m.Foto), zap.Error(err))
		}
	}

	return path, nil
}
