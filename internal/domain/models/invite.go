// internal/domain/models/invite.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Invite grants one contact the right to create a member record once.
//
// Lifecycle: created pending (IsAccepted=false) and flipped to accepted
// exactly once when registration through the invite link completes. The
// accepted state is terminal; the transition is an atomic compare-and-set
// on the document, never an in-memory flag.
type Invite struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	MemberIDRequested string             `bson:"memberIdRequested" json:"memberIdRequested"`
	RequestName       string             `bson:"requestName" json:"requestName"`
	To                string             `bson:"to" json:"to"`
	Phone             string             `bson:"phone" json:"phone"`
	IsAccepted        bool               `bson:"isAccepted" json:"isAccepted"`

	// TokenHash is the bcrypt hash of the random token embedded in the
	// invite link. The plaintext token is only ever held by the invitee.
	TokenHash string    `bson:"tokenHash" json:"-"`
	ExpiresAt time.Time `bson:"expiresAt" json:"expiresAt"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}
