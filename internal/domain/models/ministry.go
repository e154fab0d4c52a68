// internal/domain/models/ministry.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Ministry categories.
const (
	MinistryEcclesiastical = "eclesiastico"
	MinistryPeople         = "pessoas"
	MinistryCoordination   = "coordenacao"
)

// ValidMinistryCategory reports whether c is a known category.
func ValidMinistryCategory(c string) bool {
	return c == MinistryEcclesiastical || c == MinistryPeople || c == MinistryCoordination
}

// Ministry is a church ministry with its responsible members.
//
// Responsavel entries are raw MemberRef snapshots: there is no update
// cascade when a referenced member's name changes later.
type Ministry struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Nome        string             `bson:"nome" json:"nome"`
	Categoria   string             `bson:"categoria" json:"categoria"`
	Responsavel []MemberRef        `bson:"responsavel" json:"responsavel"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}
