package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ibbtech/memberhub/internal/domain/models"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateMember inserts a minimal active member and returns it.
func (f *Fixtures) CreateMember(ctx context.Context, nome, email string) models.Member {
	f.t.Helper()

	now := time.Now().UTC()
	m := models.Member{
		ID:         primitive.NewObjectID(),
		Nome:       nome,
		Email:      email,
		Role:       models.RoleMember,
		Status:     models.StatusActive,
		Ministerio: []string{},
		Historico:  []models.ChangeRecord{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	m.InformacoesPessoais.Filhos = []models.MemberRef{}
	m.Autenticacao.ProvidersInfo = []models.ProviderInfo{}

	if _, err := f.db.Collection("members").InsertOne(ctx, m); err != nil {
		f.t.Fatalf("failed to create test member: %v", err)
	}
	return m
}

// CreateDeacon inserts a member flagged as a deacon and returns it.
func (f *Fixtures) CreateDeacon(ctx context.Context, nome string) models.Member {
	f.t.Helper()

	m := f.CreateMember(ctx, nome, "")
	if _, err := f.db.Collection("members").UpdateOne(ctx,
		bson.M{"_id": m.ID},
		bson.M{"$set": bson.M{"isDiacono": true}},
	); err != nil {
		f.t.Fatalf("failed to flag test deacon: %v", err)
	}
	m.IsDiacono = true
	return m
}

// CreateVisitor inserts a visitor record (no email, visitante status).
func (f *Fixtures) CreateVisitor(ctx context.Context, nome string) models.Member {
	f.t.Helper()

	now := time.Now().UTC()
	m := models.Member{
		ID:         primitive.NewObjectID(),
		Nome:       nome,
		Role:       models.RoleMember,
		Status:     models.StatusVisitor,
		Ministerio: []string{},
		Historico:  []models.ChangeRecord{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if _, err := f.db.Collection("members").InsertOne(ctx, m); err != nil {
		f.t.Fatalf("failed to create test visitor: %v", err)
	}
	return m
}

// CreateMinistry inserts a ministry and returns it.
func (f *Fixtures) CreateMinistry(ctx context.Context, nome, categoria string) models.Ministry {
	f.t.Helper()

	now := time.Now().UTC()
	min := models.Ministry{
		ID:          primitive.NewObjectID(),
		Nome:        nome,
		Categoria:   categoria,
		Responsavel: []models.MemberRef{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := f.db.Collection("ministries").InsertOne(ctx, min); err != nil {
		f.t.Fatalf("failed to create test ministry: %v", err)
	}
	return min
}
