// internal/app/system/resolve/resolve.go
package resolve

// Read-side enrichment for member aggregates. Spouse, children, and
// deacon fields are denormalized pointers: the id is authoritative and
// the cached display fields are refreshed here from the live records.
// Nothing in this package writes to the store.

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/ibbtech/memberhub/internal/app/system/format"
	"github.com/ibbtech/memberhub/internal/domain/models"
)

// refIDLength is the canonical id length; anything else is a free-text
// placeholder and is never sent to the store.
const refIDLength = 24

// MemberGetter is the narrow read surface the resolver needs.
type MemberGetter interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Member, error)
}

// Resolver enriches member aggregates from a backing member store.
type Resolver struct {
	members MemberGetter
	log     *zap.Logger
}

// New builds a Resolver. logger may be nil.
func New(members MemberGetter, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{members: members, log: logger}
}

// Enrich resolves cross-references and display-normalizes a batch of
// members. A failure on one member never aborts the rest: that member is
// returned with safe defaults and the failure is logged.
func (r *Resolver) Enrich(ctx context.Context, members []models.Member) []models.Member {
	out := make([]models.Member, len(members))
	for i := range members {
		out[i] = r.enrichOne(ctx, members[i])
	}
	return out
}

// EnrichOne is the singleton form of Enrich.
func (r *Resolver) EnrichOne(ctx context.Context, m models.Member) models.Member {
	return r.enrichOne(ctx, m)
}

func (r *Resolver) enrichOne(ctx context.Context, m models.Member) models.Member {
	m.Diacono = r.resolveDeacon(ctx, m)
	r.resolveChildren(ctx, &m)
	r.resolveSpouse(ctx, &m)
	normalizeDisplay(&m)
	return m
}

// resolveDeacon refreshes the deacon reference, falling back to a neutral
// placeholder when the reference is empty or the fetch fails.
func (r *Resolver) resolveDeacon(ctx context.Context, m models.Member) models.MemberRef {
	empty := models.MemberRef{}
	if m.Diacono.ID == "" {
		return empty
	}
	fetched, err := r.fetchRef(ctx, m.Diacono.ID)
	if err != nil {
		r.log.Warn("deacon reference resolve failed",
			zap.String("member_id", m.ID.Hex()),
			zap.String("deacon_id", m.Diacono.ID),
			zap.Error(err))
		return empty
	}
	return models.MemberRef{
		ID:        m.Diacono.ID,
		Nome:      fetched.Nome,
		IsMember:  true,
		IsDiacono: fetched.IsDiacono,
	}
}

func (r *Resolver) resolveChildren(ctx context.Context, m *models.Member) {
	if !m.InformacoesPessoais.TemFilhos || len(m.InformacoesPessoais.Filhos) == 0 {
		m.InformacoesPessoais.Filhos = []models.MemberRef{}
		return
	}
	for i := range m.InformacoesPessoais.Filhos {
		child := &m.InformacoesPessoais.Filhos[i]

		// Free-text child: a name without an id never resolves.
		if child.ID == "" && child.Nome != "" {
			continue
		}

		if len(child.ID) == refIDLength {
			fetched, err := r.fetchRef(ctx, child.ID)
			if err != nil {
				r.log.Warn("child reference resolve failed",
					zap.String("member_id", m.ID.Hex()),
					zap.String("child_id", child.ID),
					zap.Error(err))
				child.Nome = ""
				child.IsMember = false
				child.IsDiacono = false
				continue
			}
			child.Nome = fetched.Nome
			child.IsMember = true
			child.IsDiacono = fetched.IsDiacono
			continue
		}

		child.IsMember = false
		child.IsDiacono = false
	}
}

func (r *Resolver) resolveSpouse(ctx context.Context, m *models.Member) {
	casamento := m.InformacoesPessoais.Casamento
	if casamento == nil || casamento.Conjugue == nil {
		m.InformacoesPessoais.Casamento = &models.Marriage{
			Conjugue: &models.MemberRef{},
		}
		return
	}
	conjugue := casamento.Conjugue
	if len(conjugue.ID) != refIDLength {
		return
	}
	fetched, err := r.fetchRef(ctx, conjugue.ID)
	if err != nil {
		r.log.Warn("spouse reference resolve failed",
			zap.String("member_id", m.ID.Hex()),
			zap.String("spouse_id", conjugue.ID),
			zap.Error(err))
		conjugue.IsMember = false
		conjugue.IsDiacono = false
		return
	}
	conjugue.Nome = format.Name(fetched.Nome)
	conjugue.IsMember = true
	conjugue.IsDiacono = fetched.IsDiacono
}

// fetchRef parses the 24-char id and loads the referenced member.
func (r *Resolver) fetchRef(ctx context.Context, id string) (*models.Member, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}
	return r.members.GetByID(ctx, oid)
}

// normalizeDisplay is the single normalization pass that produces a
// fully-populated aggregate: downstream consumers never re-check for
// missing nested blocks.
func normalizeDisplay(m *models.Member) {
	m.Nome = format.Name(m.Nome)
	m.CPF = format.CPF(m.CPF)
	m.Telefone = format.Phone(m.Telefone)

	if m.Ministerio == nil {
		m.Ministerio = []string{}
	}

	// Auth entries never appear in the visible history.
	if len(m.Historico) > 0 {
		kept := m.Historico[:0]
		for _, h := range m.Historico {
			if h.Chave == "autenticacao" {
				continue
			}
			kept = append(kept, h)
		}
		m.Historico = kept
	}
}
