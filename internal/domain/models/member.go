// internal/domain/models/member.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Roles a member document can carry. ADMIN unlocks the management surface;
// everyone else is MEMBRO.
const (
	RoleAdmin  = "ADMIN"
	RoleMember = "MEMBRO"
)

// Membership status values. These mirror the congregation's bookkeeping:
// a visitante has never joined, a congregado attends without membership,
// and the remaining states track the member lifecycle to its end.
const (
	StatusVisitor     = "visitante"
	StatusSympathizer = "congregado"
	StatusActive      = "ativo"
	StatusInactive    = "inativo"
	StatusTransferred = "transferido"
	StatusDeceased    = "falecido"
	StatusRemoved     = "excluido"
)

// Civil-state values for informacoesPessoais.estadoCivil.
const (
	CivilSingle    = "solteiro"
	CivilMarried   = "casado"
	CivilSeparated = "separado"
	CivilDivorced  = "divorciado"
	CivilWidowed   = "viuvo"
)

// Identity provider ids as reported by the auth provider.
const (
	ProviderMicrosoft = "microsoft.com"
	ProviderGoogle    = "google.com"
	ProviderPassword  = "password"
)

// ValidRole reports whether r is a known role.
func ValidRole(r string) bool {
	return r == RoleAdmin || r == RoleMember
}

// ValidStatus reports whether s is a known membership status.
func ValidStatus(s string) bool {
	switch s {
	case StatusVisitor, StatusSympathizer, StatusActive, StatusInactive,
		StatusTransferred, StatusDeceased, StatusRemoved:
		return true
	}
	return false
}

// ValidCivilState reports whether cs is a known civil state.
func ValidCivilState(cs string) bool {
	switch cs {
	case CivilSingle, CivilMarried, CivilSeparated, CivilDivorced, CivilWidowed:
		return true
	}
	return false
}

// MemberRef is a denormalized pointer at another member, embedded in the
// spouse, children, and deacon fields. The id is the source of truth;
// Nome and IsDiacono are display caches refreshed on read. A ref with an
// empty id is a free-text placeholder and never resolves (IsMember stays
// false).
type MemberRef struct {
	ID        string `bson:"id" json:"id"`
	Nome      string `bson:"nome" json:"nome"`
	IsMember  bool   `bson:"isMember" json:"isMember"`
	IsDiacono bool   `bson:"isDiacono" json:"isDiacono"`
}

// ChangeRecord is one audit-trail entry: a field's before/after display
// values. Records are append-only; past entries are never rewritten.
type ChangeRecord struct {
	Chave     string    `bson:"chave" json:"chave"`
	Antigo    string    `bson:"antigo" json:"antigo"`
	Novo      string    `bson:"novo" json:"novo"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Marriage holds the spouse reference and wedding date.
type Marriage struct {
	Conjugue      *MemberRef `bson:"conjugue" json:"conjugue"`
	DataCasamento *time.Time `bson:"dataCasamento" json:"dataCasamento"`
}

// PersonalInfo groups civil state, marriage, and children.
type PersonalInfo struct {
	EstadoCivil string      `bson:"estadoCivil" json:"estadoCivil"`
	Casamento   *Marriage   `bson:"casamento" json:"casamento"`
	Filhos      []MemberRef `bson:"filhos" json:"filhos"`
	TemFilhos   bool        `bson:"temFilhos" json:"temFilhos"`
}

// Address is the member's mailing address.
type Address struct {
	CEP         string `bson:"cep" json:"cep"`
	Rua         string `bson:"rua" json:"rua"`
	Numero      string `bson:"numero" json:"numero"`
	Complemento string `bson:"complemento,omitempty" json:"complemento,omitempty"`
	Bairro      string `bson:"bairro" json:"bairro"`
	Cidade      string `bson:"cidade" json:"cidade"`
	Estado      string `bson:"estado" json:"estado"`
	Pais        string `bson:"pais" json:"pais"`
}

// DatedEvent captures date/reason/place blocks (admission, transfer, death).
type DatedEvent struct {
	Data   *time.Time `bson:"data" json:"data"`
	Motivo string     `bson:"motivo,omitempty" json:"motivo,omitempty"`
	Forma  string     `bson:"forma,omitempty" json:"forma,omitempty"`
	Local  string     `bson:"local,omitempty" json:"local,omitempty"`
}

// Removal is the exclusao block (date + reason only).
type Removal struct {
	Data   *time.Time `bson:"data" json:"data"`
	Motivo string     `bson:"motivo,omitempty" json:"motivo,omitempty"`
}

// VisitInfo records why a visitor first showed up.
type VisitInfo struct {
	Motivo string `bson:"motivo,omitempty" json:"motivo,omitempty"`
}

// ProviderInfo links the local document to one identity at the external
// auth provider. The provider's record is a separate entity; only the uid
// back-reference lives here.
type ProviderInfo struct {
	ProviderID string `bson:"providerId" json:"providerId"`
	UID        string `bson:"uid" json:"uid"`
}

// AuthInfo is the autenticacao block.
type AuthInfo struct {
	ProvidersInfo []ProviderInfo `bson:"providersInfo" json:"providersInfo"`
}

// Member is the aggregate root for one church member or visitor.
//
// Field names follow the stored document (Portuguese keys) so that the
// change-history engine and the older exports keep their key paths.
type Member struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Nome           string             `bson:"nome" json:"nome"`
	Foto           string             `bson:"foto" json:"foto"`
	CPF            string             `bson:"cpf" json:"cpf"`
	RG             string             `bson:"rg" json:"rg"`
	Email          string             `bson:"email" json:"email"`
	Telefone       string             `bson:"telefone" json:"telefone"`
	DataNascimento *time.Time         `bson:"dataNascimento" json:"dataNascimento"`

	Role   string `bson:"role" json:"role"`
	Status string `bson:"status" json:"status"`

	InformacoesPessoais PersonalInfo `bson:"informacoesPessoais" json:"informacoesPessoais"`

	Diacono   MemberRef `bson:"diacono" json:"diacono"`
	IsDiacono bool      `bson:"isDiacono" json:"isDiacono"`

	Ministerio []string `bson:"ministerio" json:"ministerio"`

	Endereco *Address `bson:"endereco" json:"endereco"`

	Ingresso      DatedEvent `bson:"ingresso" json:"ingresso"`
	Transferencia DatedEvent `bson:"transferencia" json:"transferencia"`
	Falecimento   DatedEvent `bson:"falecimento" json:"falecimento"`
	Exclusao      Removal    `bson:"exclusao" json:"exclusao"`
	Visitas       VisitInfo  `bson:"visitas" json:"visitas"`

	Autenticacao AuthInfo       `bson:"autenticacao" json:"autenticacao"`
	Historico    []ChangeRecord `bson:"historico" json:"historico"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Age computes the member's age in full years, or -1 when the birth date
// is unknown.
func (m *Member) Age(now time.Time) int {
	if m.DataNascimento == nil {
		return -1
	}
	b := *m.DataNascimento
	years := now.Year() - b.Year()
	if now.Month() < b.Month() || (now.Month() == b.Month() && now.Day() < b.Day()) {
		years--
	}
	return years
}
