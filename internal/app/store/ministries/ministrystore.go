package ministrystore

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ibbtech/memberhub/internal/app/system/normalize"
	"github.com/ibbtech/memberhub/internal/domain/models"
)

var (
	// ErrNotFound is returned when no ministry matches the given id.
	ErrNotFound = errors.New("ministry not found")
	// ErrDuplicateName is returned when a ministry with this name already exists.
	ErrDuplicateName = errors.New("a ministry with this name already exists")
	errBadCategory   = errors.New(`categoria must be "eclesiastico"|"pessoas"|"coordenacao"`)
	errNameEmpty     = errors.New("nome is required")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("ministries")}
}

// EnsureIndexes creates the unique name index.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "nome", Value: 1}},
			Options: options.Index().SetName("idx_ministries_nome_unique").SetUnique(true),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

// GetByID loads a ministry by ObjectID. Returns ErrNotFound when absent.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Ministry, error) {
	var m models.Ministry
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&m); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

// List returns all ministries sorted by name.
func (s *Store) List(ctx context.Context) ([]models.Ministry, error) {
	cur, err := s.c.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "nome", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Ministry
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListByCategory returns ministries of one category sorted by name.
func (s *Store) ListByCategory(ctx context.Context, categoria string) ([]models.Ministry, error) {
	cur, err := s.c.Find(ctx, bson.M{"categoria": categoria},
		options.Find().SetSort(bson.D{{Key: "nome", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Ministry
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Create inserts a new ministry after validating the category.
func (s *Store) Create(ctx context.Context, m models.Ministry) (models.Ministry, error) {
	m.ID = primitive.NewObjectID()
	m.Nome = normalize.Name(m.Nome)

	if m.Nome == "" {
		return models.Ministry{}, errNameEmpty
	}
	if !models.ValidMinistryCategory(m.Categoria) {
		return models.Ministry{}, errBadCategory
	}
	if m.Responsavel == nil {
		m.Responsavel = []models.MemberRef{}
	}

	now := time.Now()
	m.CreatedAt = now
	m.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, m); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Ministry{}, ErrDuplicateName
		}
		return models.Ministry{}, err
	}
	return m, nil
}

// Update holds the fields that can change on a ministry.
type Update struct {
	Nome        string
	Categoria   string
	Responsavel []models.MemberRef
}

// Apply updates a ministry. Returns ErrNotFound when absent.
func (s *Store) Apply(ctx context.Context, id primitive.ObjectID, upd Update) error {
	if upd.Categoria != "" && !models.ValidMinistryCategory(upd.Categoria) {
		return errBadCategory
	}

	set := bson.M{"updatedAt": time.Now()}
	if upd.Nome != "" {
		set["nome"] = normalize.Name(upd.Nome)
	}
	if upd.Categoria != "" {
		set["categoria"] = upd.Categoria
	}
	if upd.Responsavel != nil {
		set["responsavel"] = upd.Responsavel
	}

	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateName
		}
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a ministry. Returns the number deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
