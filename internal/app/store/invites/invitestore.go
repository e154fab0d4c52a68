package invitestore

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"

	"github.com/ibbtech/memberhub/internal/app/system/normalize"
	"github.com/ibbtech/memberhub/internal/domain/models"
)

const (
	// TokenLength is the length of the invite link token in bytes (32 bytes = 64 hex chars).
	TokenLength = 32
	// DefaultExpiry is how long an invite link stays valid.
	DefaultExpiry = 7 * 24 * time.Hour
	// BcryptCost for hashing tokens.
	BcryptCost = 10
)

var (
	// ErrNotFound is returned when no invite matches.
	ErrNotFound = errors.New("invite not found")
	// ErrAlreadyAccepted is returned when accepting an invite that was already used.
	ErrAlreadyAccepted = errors.New("invite already accepted")
	// ErrExpired is returned when the invite link has passed its expiry.
	ErrExpired = errors.New("invite expired")
	// ErrInvalidToken is returned when the presented token does not match.
	ErrInvalidToken = errors.New("invalid invite token")
)

// Store manages invitation records.
type Store struct {
	c      *mongo.Collection
	expiry time.Duration
}

// New creates a Store with the given link expiry.
// If expiry is 0 or negative, DefaultExpiry (7 days) is used.
func New(db *mongo.Database, expiry time.Duration) *Store {
	if expiry <= 0 {
		expiry = DefaultExpiry
	}
	return &Store{c: db.Collection("invites"), expiry: expiry}
}

// Expiry returns the configured link expiry.
func (s *Store) Expiry() time.Duration {
	return s.expiry
}

// EnsureIndexes creates lookup indexes and the TTL index that removes
// stale pending invites. Accepted invites are kept: the TTL field is
// unset when an invite is accepted.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "expiresAt", Value: 1}},
			Options: options.Index().SetName("idx_invites_expires_ttl").SetExpireAfterSeconds(0),
		},
		{
			Keys:    bson.D{{Key: "memberIdRequested", Value: 1}},
			Options: options.Index().SetName("idx_invites_requester"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

// Create inserts a pending invite and returns it with the plaintext link
// token. The token is generated here and only its bcrypt hash is stored.
func (s *Store) Create(ctx context.Context, inv models.Invite) (models.Invite, string, error) {
	token := generateToken()
	hash, err := bcrypt.GenerateFromPassword([]byte(token), BcryptCost)
	if err != nil {
		return models.Invite{}, "", fmt.Errorf("hash invite token: %w", err)
	}

	now := time.Now()
	inv.ID = primitive.NewObjectID()
	inv.To = normalize.Email(inv.To)
	inv.IsAccepted = false
	inv.TokenHash = string(hash)
	inv.ExpiresAt = now.Add(s.expiry)
	inv.CreatedAt = now
	inv.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, inv); err != nil {
		return models.Invite{}, "", fmt.Errorf("insert invite: %w", err)
	}
	return inv, token, nil
}

// GetByID loads an invite by ObjectID. Returns ErrNotFound when absent.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Invite, error) {
	var inv models.Invite
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&inv); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &inv, nil
}

// List returns all invites, newest first.
func (s *Store) List(ctx context.Context) ([]models.Invite, error) {
	cur, err := s.c.Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Invite
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListByRequester returns the invites created on behalf of one member.
func (s *Store) ListByRequester(ctx context.Context, memberID string) ([]models.Invite, error) {
	cur, err := s.c.Find(ctx, bson.M{"memberIdRequested": memberID},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Invite
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Accept validates the token and flips the invite to accepted in a single
// compare-and-set write. Returns ErrAlreadyAccepted when the invite was
// used before, ErrExpired past the deadline, and ErrInvalidToken on a
// token mismatch. Acceptance is terminal.
func (s *Store) Accept(ctx context.Context, id primitive.ObjectID, token string) (*models.Invite, error) {
	inv, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv.IsAccepted {
		return nil, ErrAlreadyAccepted
	}
	if time.Now().After(inv.ExpiresAt) {
		return nil, ErrExpired
	}
	if err := bcrypt.CompareHashAndPassword([]byte(inv.TokenHash), []byte(token)); err != nil {
		return nil, ErrInvalidToken
	}

	// The filter re-checks isAccepted so two concurrent accepts cannot
	// both win. The TTL field is removed so accepted invites persist.
	res := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "isAccepted": false},
		bson.M{
			"$set":   bson.M{"isAccepted": true, "updatedAt": time.Now()},
			"$unset": bson.M{"expiresAt": ""},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	var updated models.Invite
	if err := res.Decode(&updated); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrAlreadyAccepted
		}
		return nil, err
	}
	return &updated, nil
}

// Delete removes an invite. Returns the number deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// generateToken generates a random token for invite links.
// Panics if the system's cryptographic random number generator fails.
func generateToken() string {
	b := make([]byte, TokenLength)
	if _, err := rand.Read(b); err != nil {
		panic("crypto/rand.Read failed: " + err.Error())
	}
	return hex.EncodeToString(b)
}
