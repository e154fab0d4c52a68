// Package reconcile orchestrates member mutations across the local
// document store, the external identity provider, and notification
// dispatch. There is no cross-system transaction: each step has a
// defined compensating action, and accepted partial-failure states are
// logged distinctly so an operator can reconcile manually.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/flowchartsman/retry"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	memberstore "github.com/ibbtech/memberhub/internal/app/store/members"
	"github.com/ibbtech/memberhub/internal/app/system/format"
	"github.com/ibbtech/memberhub/internal/app/system/history"
	"github.com/ibbtech/memberhub/internal/app/system/identity"
	"github.com/ibbtech/memberhub/internal/app/system/notify"
	"github.com/ibbtech/memberhub/internal/domain/faults"
	"github.com/ibbtech/memberhub/internal/domain/models"
)

// MemberStore is the persistence surface the service needs.
type MemberStore interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Member, error)
	GetByEmail(ctx context.Context, email string) (*models.Member, error)
	Create(ctx context.Context, m models.Member) (models.Member, error)
	Update(ctx context.Context, id primitive.ObjectID, set bson.M, records []models.ChangeRecord) error
	AttachProvider(ctx context.Context, id primitive.ObjectID, info models.ProviderInfo) error
	Delete(ctx context.Context, id primitive.ObjectID) (int64, error)
	EmailExists(ctx context.Context, email string) (bool, error)
}

// BlobStore is the slice of the blob storage surface the service uses.
// waffle's storage.Store implementations satisfy it.
type BlobStore interface {
	Put(ctx context.Context, path string, r io.Reader, opts *storage.PutOptions) error
	Delete(ctx context.Context, path string) error
}

// InviteStore is the invitation persistence surface.
type InviteStore interface {
	Create(ctx context.Context, inv models.Invite) (models.Invite, string, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Invite, error)
	Accept(ctx context.Context, id primitive.ObjectID, token string) (*models.Invite, error)
	Expiry() time.Duration
}

// Config carries the service-level settings.
type Config struct {
	SiteName         string
	BaseURL          string
	SecretariatEmail string
}

// Service coordinates member reconciliation.
type Service struct {
	members  MemberStore
	invites  InviteStore
	idp      identity.Provider
	mailer   notify.Mailer
	whatsapp notify.WhatsAppSender
	blobs    BlobStore
	cfg      Config
	log      *zap.Logger
}

// New builds a Service. blobs and logger may be nil.
func New(members MemberStore, invites InviteStore, idp identity.Provider,
	mailer notify.Mailer, whatsapp notify.WhatsAppSender, blobs BlobStore,
	cfg Config, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		members:  members,
		invites:  invites,
		idp:      idp,
		mailer:   mailer,
		whatsapp: whatsapp,
		blobs:    blobs,
		cfg:      cfg,
		log:      logger,
	}
}

// CreateMember persists a new member and registers a matching identity
// with the external provider. On provider failure the local document is
// deleted again and the failure surfaces to the caller.
func (s *Service) CreateMember(ctx context.Context, m models.Member, password string) (*models.Member, error) {
	if m.Email != "" {
		exists, err := s.members.EmailExists(ctx, m.Email)
		if err != nil {
			return nil, fmt.Errorf("check local email: %w", err)
		}
		if exists {
			return nil, faults.Conflict("email já cadastrado")
		}
		if _, err := s.idp.FindByEmail(ctx, m.Email); err == nil {
			return nil, faults.Conflict("email já cadastrado no provedor de identidade")
		} else if !errors.Is(err, identity.ErrUserNotFound) {
			return nil, faults.Provider("consultar provedor de identidade", err)
		}
	}

	created, err := s.members.Create(ctx, m)
	if err != nil {
		if errors.Is(err, memberstore.ErrDuplicateEmail) {
			return nil, faults.Conflict("email já cadastrado")
		}
		return nil, faults.Validation(err.Error())
	}

	// A record without an email is local-only (visitors, children); no
	// identity is registered for it.
	if created.Email == "" {
		return &created, nil
	}

	uid, err := s.registerIdentity(ctx, &created, password)
	if err != nil {
		// Compensating action: the local document must not outlive a
		// failed registration.
		if _, delErr := s.members.Delete(ctx, created.ID); delErr != nil {
			s.log.Error("compensating delete failed; orphaned member document",
				zap.String("member_id", created.ID.Hex()),
				zap.Error(delErr))
		}
		if errors.Is(err, identity.ErrEmailExists) || errors.Is(err, identity.ErrPhoneExists) {
			return nil, faults.Conflict("identidade já cadastrada no provedor")
		}
		return nil, faults.Provider("registrar identidade", err)
	}

	info := models.ProviderInfo{ProviderID: models.ProviderPassword, UID: uid}
	if err := s.members.AttachProvider(ctx, created.ID, info); err != nil {
		// The identity exists but the back-reference write failed. The
		// record stays usable; log for manual reconciliation.
		s.log.Error("attach provider uid failed; identity not linked",
			zap.String("member_id", created.ID.Hex()),
			zap.String("uid", uid),
			zap.Error(err))
	} else {
		created.Autenticacao.ProvidersInfo = append(created.Autenticacao.ProvidersInfo, info)
	}

	return &created, nil
}

// registerIdentity creates the provider identity with the member's
// claims. An EmailExists right after a negative FindByEmail is treated as
// a transient provider inconsistency and retried a few times before the
// compensating path takes over.
func (s *Service) registerIdentity(ctx context.Context, m *models.Member, password string) (string, error) {
	var uid string
	retrier := retry.NewRetrier(3, 100*time.Millisecond, time.Second)
	err := retrier.RunContext(ctx, func(ctx context.Context) error {
		var err error
		uid, err = s.idp.Register(ctx, identity.NewAccount{
			Email:       m.Email,
			Phone:       providerPhone(m.Telefone),
			Password:    password,
			DisplayName: m.Nome,
		})
		if err == nil {
			return nil
		}
		if errors.Is(err, identity.ErrEmailExists) {
			// Lookup said the email was free moments ago.
			s.log.Warn("provider email conflict after negative lookup, retrying",
				zap.String("email", m.Email))
			return err
		}
		return retry.Stop(err)
	})
	if err != nil {
		return "", err
	}

	if err := s.idp.SetClaims(ctx, uid, map[string]any{
		"role":     m.Role,
		"memberId": m.ID.Hex(),
	}); err != nil {
		s.log.Warn("set identity claims failed",
			zap.String("uid", uid), zap.Error(err))
	}
	return uid, nil
}

// UpdateMember applies a partial update, appends the computed audit
// records, and pushes the new display fields to every linked identity.
// Provider push failures do not block each other; they surface joined
// once reconciliation completes.
func (s *Service) UpdateMember(ctx context.Context, id primitive.ObjectID, partial map[string]any, password string) (*models.Member, error) {
	current, err := s.members.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, memberstore.ErrNotFound) {
			return nil, faults.NotFound("membro não encontrado")
		}
		return nil, err
	}

	oldDoc, err := history.Doc(current)
	if err != nil {
		return nil, fmt.Errorf("snapshot current state: %w", err)
	}
	partialDoc, err := history.Doc(partial)
	if err != nil {
		return nil, faults.Validation("dados de atualização inválidos")
	}

	newDoc := make(map[string]any, len(oldDoc)+len(partialDoc))
	for k, v := range oldDoc {
		newDoc[k] = v
	}
	for k, v := range partialDoc {
		newDoc[k] = v
	}
	records := history.Diff(oldDoc, newDoc, time.Now())

	set := bson.M{}
	for k, v := range partial {
		set[k] = v
	}
	if err := s.members.Update(ctx, id, set, records); err != nil {
		if errors.Is(err, memberstore.ErrDuplicateEmail) {
			return nil, faults.Conflict("email já cadastrado")
		}
		if errors.Is(err, memberstore.ErrNotFound) {
			return nil, faults.NotFound("membro não encontrado")
		}
		return nil, err
	}

	// The persisted document is the authoritative post-update view.
	updated, err := s.members.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var pushErrs []error
	for _, p := range updated.Autenticacao.ProvidersInfo {
		if err := s.pushIdentity(ctx, updated, p, password); err != nil {
			pushErrs = append(pushErrs, fmt.Errorf("provider %s uid %s: %w", p.ProviderID, p.UID, err))
		}
	}
	if len(pushErrs) > 0 {
		return updated, faults.Provider("sincronizar identidades", errors.Join(pushErrs...))
	}
	return updated, nil
}

func (s *Service) pushIdentity(ctx context.Context, m *models.Member, p models.ProviderInfo, password string) error {
	upd := identity.AccountUpdate{
		Email:       m.Email,
		Phone:       providerPhone(m.Telefone),
		DisplayName: m.Nome,
	}
	if password != "" {
		upd.Password = password
	}
	if err := s.idp.Update(ctx, p.UID, upd); err != nil {
		return err
	}
	return s.idp.SetClaims(ctx, p.UID, map[string]any{
		"role":     m.Role,
		"memberId": m.ID.Hex(),
	})
}

// DeleteMember removes the member everywhere. Blob and identity cleanup
// are best-effort: their failures are logged distinctly and never block
// removal of the local document.
func (s *Service) DeleteMember(ctx context.Context, id primitive.ObjectID) error {
	m, err := s.members.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, memberstore.ErrNotFound) {
			return faults.NotFound("membro não encontrado")
		}
		return err
	}

	if m.Foto != "" && s.blobs != nil {
		if err := s.blobs.Delete(ctx, m.Foto); err != nil {
			s.log.Error("photo blob delete failed; orphaned blob",
				zap.String("member_id", id.Hex()),
				zap.String("path", m.Foto),
				zap.Error(err))
		}
	}

	for _, p := range m.Autenticacao.ProvidersInfo {
		if err := s.idp.Delete(ctx, p.UID); err != nil && !errors.Is(err, identity.ErrUserNotFound) {
			s.log.Error("identity delete failed; orphaned identity",
				zap.String("member_id", id.Hex()),
				zap.String("uid", p.UID),
				zap.Error(err))
		}
	}

	n, err := s.members.Delete(ctx, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return faults.NotFound("membro não encontrado")
	}
	return nil
}

// ResetPassword generates a reset link at the provider and mails it.
func (s *Service) ResetPassword(ctx context.Context, email string) error {
	link, err := s.idp.PasswordResetLink(ctx, email)
	if err != nil {
		if errors.Is(err, identity.ErrUserNotFound) {
			return faults.NotFound("email não cadastrado")
		}
		return faults.Provider("gerar link de redefinição", err)
	}

	name := email
	if m, err := s.members.GetByEmail(ctx, email); err == nil {
		name = m.Nome
	}

	e := notify.BuildPasswordResetEmail(notify.PasswordResetEmailData{
		SiteName:   s.cfg.SiteName,
		MemberName: name,
		ResetLink:  link,
	})
	e.To = email
	if err := s.mailer.Send(ctx, e); err != nil {
		return faults.Provider("enviar email de redefinição", err)
	}
	return nil
}

// RequestUpdate notifies the secretariat that a member wants their
// record corrected.
func (s *Service) RequestUpdate(ctx context.Context, memberID primitive.ObjectID, message string) error {
	m, err := s.members.GetByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, memberstore.ErrNotFound) {
			return faults.NotFound("membro não encontrado")
		}
		return err
	}

	e := notify.BuildUpdateRequestEmail(notify.UpdateRequestEmailData{
		SiteName:   s.cfg.SiteName,
		MemberName: m.Nome,
		Message:    message,
	})
	e.To = s.cfg.SecretariatEmail
	if err := s.mailer.Send(ctx, e); err != nil {
		return faults.Provider("enviar solicitação de atualização", err)
	}
	return nil
}

// providerPhone renders the stored phone as an E.164-ish number for the
// identity provider, empty when unusable.
func providerPhone(phone string) string {
	if format.Phone(phone) == "" {
		return ""
	}
	return format.InternationalPhone(phone)
}
