package memberstore

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ibbtech/memberhub/internal/app/system/brdoc"
	"github.com/ibbtech/memberhub/internal/app/system/normalize"
	"github.com/ibbtech/memberhub/internal/domain/models"
)

// initialHistoryOld and initialHistoryNew seed the audit trail of every
// freshly created member document.
const (
	initialHistoryOld = "SEM INFORMAÇÕES ANTERIORES"
	initialHistoryNew = "MEMBRO CRIADO"
)

var (
	// ErrDuplicateEmail is returned when attempting to create a member with an email that already exists.
	ErrDuplicateEmail = errors.New("a member with this email already exists")
	// ErrNotFound is returned when no member matches the given id.
	ErrNotFound  = errors.New("member not found")
	errBadRole   = errors.New(`role must be "ADMIN"|"MEMBRO"`)
	errBadStatus = errors.New(`status must be "visitante"|"congregado"|"ativo"|"inativo"|"transferido"|"falecido"|"excluido"`)
	errBadCivil  = errors.New(`estadoCivil must be "solteiro"|"casado"|"separado"|"divorciado"|"viuvo"`)
	errNameEmpty = errors.New("nome is required")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("members")}
}

// EnsureIndexes creates the uniqueness and lookup indexes for the members
// collection. The email index is sparse so that visitor records without an
// email never collide.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "email", Value: 1}},
			Options: options.Index().
				SetName("idx_members_email_unique").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"email": bson.M{"$type": "string", "$gt": ""}}),
		},
		{
			Keys:    bson.D{{Key: "autenticacao.providersInfo.uid", Value: 1}},
			Options: options.Index().SetName("idx_members_provider_uid"),
		},
		{
			Keys:    bson.D{{Key: "nome", Value: 1}},
			Options: options.Index().SetName("idx_members_nome"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

// GetByID loads a member by ObjectID. Returns ErrNotFound when absent.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Member, error) {
	var m models.Member
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&m); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

// GetByEmail looks up a member by case-insensitive email.
// Returns ErrNotFound when absent.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.Member, error) {
	var m models.Member
	if err := s.c.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Decode(&m); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

// GetByProviderUID looks up the member linked to an external auth uid.
func (s *Store) GetByProviderUID(ctx context.Context, uid string) (*models.Member, error) {
	var m models.Member
	err := s.c.FindOne(ctx, bson.M{"autenticacao.providersInfo.uid": uid}).Decode(&m)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

// List returns all members sorted by name.
func (s *Store) List(ctx context.Context) ([]models.Member, error) {
	cur, err := s.c.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "nome", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Member
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListDeacons returns all members flagged as deacons, sorted by name.
func (s *Store) ListDeacons(ctx context.Context) ([]models.Member, error) {
	cur, err := s.c.Find(ctx, bson.M{"isDiacono": true},
		options.Find().SetSort(bson.D{{Key: "nome", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Member
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListByBirthMonth returns members whose birthday falls in the given month
// (1-12), sorted by day of month.
func (s *Store) ListByBirthMonth(ctx context.Context, month int) ([]models.Member, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"dataNascimento": bson.M{"$ne": nil}}}},
		{{Key: "$addFields", Value: bson.M{
			"_mes": bson.M{"$month": "$dataNascimento"},
			"_dia": bson.M{"$dayOfMonth": "$dataNascimento"},
		}}},
		{{Key: "$match", Value: bson.M{"_mes": month}}},
		{{Key: "$sort", Value: bson.D{{Key: "_dia", Value: 1}}}},
		{{Key: "$unset", Value: bson.A{"_mes", "_dia"}}},
	}
	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Member
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Create inserts a new member after normalizing and validating fields.
// The audit trail is seeded with the creation entry.
func (s *Store) Create(ctx context.Context, m models.Member) (models.Member, error) {
	m.ID = primitive.NewObjectID()
	m.Nome = normalize.Name(m.Nome)
	m.Email = normalize.Email(m.Email)
	m.Status = normalize.Status(m.Status)

	if m.Nome == "" {
		return models.Member{}, errNameEmpty
	}
	if m.Role == "" {
		m.Role = models.RoleMember
	}
	if !models.ValidRole(m.Role) {
		return models.Member{}, errBadRole
	}
	if m.Status == "" {
		m.Status = models.StatusVisitor
	}
	if !models.ValidStatus(m.Status) {
		return models.Member{}, errBadStatus
	}
	if cs := m.InformacoesPessoais.EstadoCivil; cs != "" && !models.ValidCivilState(cs) {
		return models.Member{}, errBadCivil
	}
	if m.CPF != "" {
		if err := brdoc.CheckCPFLength(m.CPF); err != nil {
			return models.Member{}, err
		}
	}

	if m.Ministerio == nil {
		m.Ministerio = []string{}
	}
	if m.InformacoesPessoais.Filhos == nil {
		m.InformacoesPessoais.Filhos = []models.MemberRef{}
	}
	if m.Autenticacao.ProvidersInfo == nil {
		m.Autenticacao.ProvidersInfo = []models.ProviderInfo{}
	}

	now := time.Now()
	m.CreatedAt = now
	m.UpdatedAt = now
	m.Historico = []models.ChangeRecord{{
		Chave:     "",
		Antigo:    initialHistoryOld,
		Novo:      initialHistoryNew,
		UpdatedAt: now,
	}}

	if _, err := s.c.InsertOne(ctx, m); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Member{}, ErrDuplicateEmail
		}
		return models.Member{}, err
	}
	return m, nil
}

// protectedKeys are document fields that Update refuses to $set. They are
// either immutable, owned by other operations, or append-only.
var protectedKeys = map[string]bool{
	"_id":          true,
	"autenticacao": true,
	"historico":    true,
	"createdAt":    true,
}

// Update applies a partial $set and appends audit records in one write.
// Protected keys in set are silently dropped. Returns ErrNotFound when the
// member does not exist and ErrDuplicateEmail on an email collision.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, set bson.M, records []models.ChangeRecord) error {
	clean := bson.M{}
	for k, v := range set {
		if protectedKeys[k] {
			continue
		}
		if k == "email" {
			if str, ok := v.(string); ok {
				v = normalize.Email(str)
			}
		}
		clean[k] = v
	}
	clean["updatedAt"] = time.Now()

	update := bson.M{"$set": clean}
	if len(records) > 0 {
		update["$push"] = bson.M{"historico": bson.M{"$each": records}}
	}

	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateEmail
		}
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// AppendHistory appends audit records without touching any other field.
func (s *Store) AppendHistory(ctx context.Context, id primitive.ObjectID, records []models.ChangeRecord) error {
	if len(records) == 0 {
		return nil
	}
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$push": bson.M{"historico": bson.M{"$each": records}}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// AttachProvider links an external identity uid to the member document,
// replacing any previous entry for the same provider.
func (s *Store) AttachProvider(ctx context.Context, id primitive.ObjectID, info models.ProviderInfo) error {
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$pull": bson.M{"autenticacao.providersInfo": bson.M{"providerId": info.ProviderID}}})
	if err != nil {
		return err
	}
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$push": bson.M{"autenticacao.providersInfo": info}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DetachProviders clears all linked identities from the member document.
func (s *Store) DetachProviders(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"autenticacao.providersInfo": []models.ProviderInfo{}}})
	return err
}

// Delete removes the member document. Returns the number deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// EmailExists checks whether any member already carries this email.
func (s *Store) EmailExists(ctx context.Context, email string) (bool, error) {
	email = normalize.Email(email)
	if email == "" {
		return false, nil
	}
	err := s.c.FindOne(ctx, bson.M{"email": email}).Err()
	if err == nil {
		return true, nil
	}
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	return false, err
}

// EmailExistsForOther checks whether the email belongs to a member other
// than the given id.
func (s *Store) EmailExistsForOther(ctx context.Context, email string, excludeID primitive.ObjectID) (bool, error) {
	email = normalize.Email(email)
	if email == "" {
		return false, nil
	}
	err := s.c.FindOne(ctx, bson.M{
		"email": email,
		"_id":   bson.M{"$ne": excludeID},
	}).Err()
	if err == nil {
		return true, nil
	}
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	return false, err
}
