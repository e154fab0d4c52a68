// internal/app/service/reconcile/invites.go
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	invitestore "github.com/ibbtech/memberhub/internal/app/store/invites"
	"github.com/ibbtech/memberhub/internal/app/system/notify"
	"github.com/ibbtech/memberhub/internal/domain/faults"
	"github.com/ibbtech/memberhub/internal/domain/models"
)

// SendInvite creates a pending invite and dispatches the invite link by
// email and, when a phone is present, by WhatsApp. The invite record
// itself is the idempotency anchor; there is no in-memory dispatch gate.
func (s *Service) SendInvite(ctx context.Context, inv models.Invite) (*models.Invite, error) {
	if inv.To == "" && inv.Phone == "" {
		return nil, faults.Validation("convite precisa de email ou telefone")
	}
	if inv.To != "" {
		exists, err := s.members.EmailExists(ctx, inv.To)
		if err != nil {
			return nil, fmt.Errorf("check invite email: %w", err)
		}
		if exists {
			return nil, faults.Conflict("email já cadastrado")
		}
	}

	created, token, err := s.invites.Create(ctx, inv)
	if err != nil {
		return nil, err
	}
	link := fmt.Sprintf("%s/invites/%s/accept?token=%s", s.cfg.BaseURL, created.ID.Hex(), token)

	var dispatchErrs []error
	if created.To != "" {
		e := notify.BuildInviteEmail(notify.InviteEmailData{
			SiteName:   s.cfg.SiteName,
			GuestName:  created.RequestName,
			InviteLink: link,
			ExpiresIn:  expiryText(s.invites.Expiry()),
		})
		e.To = created.To
		if err := s.mailer.Send(ctx, e); err != nil {
			dispatchErrs = append(dispatchErrs, fmt.Errorf("email: %w", err))
		}
	}
	if created.Phone != "" {
		body := fmt.Sprintf("Olá %s! Você foi convidado(a) para criar seu cadastro no %s: %s",
			created.RequestName, s.cfg.SiteName, link)
		status, err := s.whatsapp.Send(ctx, providerPhone(created.Phone), body)
		if err != nil {
			dispatchErrs = append(dispatchErrs, fmt.Errorf("whatsapp: %w", err))
		} else {
			s.log.Info("invite whatsapp dispatched",
				zap.String("invite_id", created.ID.Hex()),
				zap.String("status", string(status)))
		}
	}

	if len(dispatchErrs) > 0 {
		// The invite stays pending; the caller may retry dispatch.
		return &created, faults.Provider("enviar convite", errors.Join(dispatchErrs...))
	}
	return &created, nil
}

// AcceptInvite validates the invite, creates the member through the
// regular create contract, and flips the invite to its terminal accepted
// state. Accepting an already accepted invite never creates a second
// member.
func (s *Service) AcceptInvite(ctx context.Context, inviteID primitive.ObjectID, token string, m models.Member, password string) (*models.Member, error) {
	inv, err := s.invites.GetByID(ctx, inviteID)
	if err != nil {
		if errors.Is(err, invitestore.ErrNotFound) {
			return nil, faults.NotFound("convite não encontrado")
		}
		return nil, err
	}
	if inv.IsAccepted {
		return nil, faults.Conflict("convite já aceito")
	}
	if time.Now().After(inv.ExpiresAt) {
		return nil, faults.Conflict("convite expirado")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(inv.TokenHash), []byte(token)); err != nil {
		return nil, faults.Validation("token de convite inválido")
	}

	if m.Email != "" {
		exists, err := s.members.EmailExists(ctx, m.Email)
		if err != nil {
			return nil, fmt.Errorf("check accept email: %w", err)
		}
		if exists {
			return nil, faults.Conflict("email já cadastrado")
		}
	}

	created, err := s.CreateMember(ctx, m, password)
	if err != nil {
		return nil, err
	}

	if _, err := s.invites.Accept(ctx, inviteID, token); err != nil {
		// A concurrent accept won the compare-and-set. The member created
		// here must not survive, or two accepts would double-create.
		if delErr := s.DeleteMember(ctx, created.ID); delErr != nil {
			s.log.Error("compensating member delete failed after lost invite race",
				zap.String("member_id", created.ID.Hex()),
				zap.Error(delErr))
		}
		switch {
		case errors.Is(err, invitestore.ErrAlreadyAccepted):
			return nil, faults.Conflict("convite já aceito")
		case errors.Is(err, invitestore.ErrExpired):
			return nil, faults.Conflict("convite expirado")
		case errors.Is(err, invitestore.ErrInvalidToken):
			return nil, faults.Validation("token de convite inválido")
		}
		return nil, err
	}

	return created, nil
}

func expiryText(d time.Duration) string {
	days := int(d.Hours() / 24)
	if days <= 1 {
		return "1 dia"
	}
	return fmt.Sprintf("%d dias", days)
}
