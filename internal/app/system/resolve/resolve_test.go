// internal/app/system/resolve/resolve_test.go
package resolve

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ibbtech/memberhub/internal/domain/models"
)

type fakeStore struct {
	byID    map[string]*models.Member
	fetched []string
}

func (f *fakeStore) GetByID(_ context.Context, id primitive.ObjectID) (*models.Member, error) {
	f.fetched = append(f.fetched, id.Hex())
	m, ok := f.byID[id.Hex()]
	if !ok {
		return nil, errors.New("member not found")
	}
	return m, nil
}

func newFakeStore(members ...*models.Member) *fakeStore {
	f := &fakeStore{byID: map[string]*models.Member{}}
	for _, m := range members {
		f.byID[m.ID.Hex()] = m
	}
	return f
}

func member(id primitive.ObjectID, nome string) *models.Member {
	return &models.Member{ID: id, Nome: nome}
}

func TestEnrichDeaconResolved(t *testing.T) {
	deaconID := primitive.NewObjectID()
	deacon := member(deaconID, "carlos mendes")
	deacon.IsDiacono = true
	store := newFakeStore(deacon)

	m := models.Member{
		ID:      primitive.NewObjectID(),
		Nome:    "joana silva",
		Diacono: models.MemberRef{ID: deaconID.Hex()},
	}

	out := New(store, nil).EnrichOne(context.Background(), m)

	want := models.MemberRef{ID: deaconID.Hex(), Nome: "carlos mendes", IsMember: true, IsDiacono: true}
	if out.Diacono != want {
		t.Fatalf("diacono = %+v, want %+v", out.Diacono, want)
	}
}

func TestEnrichDeaconFetchFailure(t *testing.T) {
	store := newFakeStore()
	m := models.Member{
		ID:      primitive.NewObjectID(),
		Diacono: models.MemberRef{ID: primitive.NewObjectID().Hex(), Nome: "stale name"},
	}

	out := New(store, nil).EnrichOne(context.Background(), m)

	if out.Diacono != (models.MemberRef{}) {
		t.Fatalf("diacono = %+v, want neutral placeholder", out.Diacono)
	}
}

func TestEnrichChildIDGating(t *testing.T) {
	childID := primitive.NewObjectID()
	child := member(childID, "pedro silva")
	store := newFakeStore(child)

	m := models.Member{
		ID: primitive.NewObjectID(),
		InformacoesPessoais: models.PersonalInfo{
			TemFilhos: true,
			Filhos: []models.MemberRef{
				{ID: childID.Hex()},
				{ID: "", Nome: "Maria (bebê)"},
				{ID: "short", Nome: "old cached name", IsMember: true},
			},
		},
	}

	out := New(store, nil).EnrichOne(context.Background(), m)

	filhos := out.InformacoesPessoais.Filhos
	if len(filhos) != 3 {
		t.Fatalf("len(filhos) = %d, want 3", len(filhos))
	}
	if filhos[0].Nome != "pedro silva" || !filhos[0].IsMember {
		t.Errorf("registered child not resolved: %+v", filhos[0])
	}
	if filhos[1].Nome != "Maria (bebê)" {
		t.Errorf("free-text child modified: %+v", filhos[1])
	}
	if filhos[2].ID != "short" || filhos[2].IsMember {
		t.Errorf("short-id child = %+v, want id kept and membership cleared", filhos[2])
	}

	// Only the well-formed id reaches the store.
	if !reflect.DeepEqual(store.fetched, []string{childID.Hex()}) {
		t.Errorf("fetched = %v, want only %s", store.fetched, childID.Hex())
	}
}

func TestEnrichChildFetchFailureKeepsID(t *testing.T) {
	goneID := primitive.NewObjectID().Hex()
	m := models.Member{
		ID: primitive.NewObjectID(),
		InformacoesPessoais: models.PersonalInfo{
			TemFilhos: true,
			Filhos:    []models.MemberRef{{ID: goneID, Nome: "cached", IsMember: true, IsDiacono: true}},
		},
	}

	out := New(newFakeStore(), nil).EnrichOne(context.Background(), m)

	got := out.InformacoesPessoais.Filhos[0]
	want := models.MemberRef{ID: goneID}
	if got != want {
		t.Fatalf("child after failed fetch = %+v, want %+v", got, want)
	}
}

func TestEnrichNoChildrenYieldsEmptySlice(t *testing.T) {
	m := models.Member{ID: primitive.NewObjectID()}

	out := New(newFakeStore(), nil).EnrichOne(context.Background(), m)

	if out.InformacoesPessoais.Filhos == nil || len(out.InformacoesPessoais.Filhos) != 0 {
		t.Fatalf("filhos = %#v, want empty non-nil slice", out.InformacoesPessoais.Filhos)
	}
}

func TestEnrichSpouseSynthesizedWhenMissing(t *testing.T) {
	m := models.Member{ID: primitive.NewObjectID()}

	out := New(newFakeStore(), nil).EnrichOne(context.Background(), m)

	casamento := out.InformacoesPessoais.Casamento
	if casamento == nil || casamento.Conjugue == nil {
		t.Fatalf("casamento = %+v, want synthesized block", casamento)
	}
	if *casamento.Conjugue != (models.MemberRef{}) {
		t.Errorf("conjugue = %+v, want empty ref", *casamento.Conjugue)
	}
}

func TestEnrichSpouseResolvedAndFormatted(t *testing.T) {
	spouseID := primitive.NewObjectID()
	store := newFakeStore(member(spouseID, "ana BEATRIZ costa"))

	m := models.Member{
		ID: primitive.NewObjectID(),
		InformacoesPessoais: models.PersonalInfo{
			Casamento: &models.Marriage{Conjugue: &models.MemberRef{ID: spouseID.Hex()}},
		},
	}

	out := New(store, nil).EnrichOne(context.Background(), m)

	conjugue := out.InformacoesPessoais.Casamento.Conjugue
	if conjugue.Nome != "Ana Beatriz Costa" {
		t.Errorf("conjugue.Nome = %q, want %q", conjugue.Nome, "Ana Beatriz Costa")
	}
	if !conjugue.IsMember {
		t.Error("conjugue.IsMember = false, want true")
	}
}

func TestEnrichDisplayNormalization(t *testing.T) {
	m := models.Member{
		ID:       primitive.NewObjectID(),
		Nome:     "joão DA silva",
		CPF:      "52998224725",
		Telefone: "11988880000",
		Historico: []models.ChangeRecord{
			{Chave: "telefone", Antigo: "a", Novo: "b"},
			{Chave: "autenticacao", Antigo: "x", Novo: "y"},
		},
	}

	out := New(newFakeStore(), nil).EnrichOne(context.Background(), m)

	if out.Nome != "João Da Silva" {
		t.Errorf("Nome = %q", out.Nome)
	}
	if out.CPF != "529.982.247-25" {
		t.Errorf("CPF = %q", out.CPF)
	}
	if out.Telefone != "(11) 98888-0000" {
		t.Errorf("Telefone = %q", out.Telefone)
	}
	if len(out.Historico) != 1 || out.Historico[0].Chave != "telefone" {
		t.Errorf("Historico = %+v, want auth entries filtered", out.Historico)
	}
	if out.Ministerio == nil {
		t.Error("Ministerio = nil, want empty slice")
	}
}

func TestEnrichIdempotent(t *testing.T) {
	deaconID := primitive.NewObjectID()
	deacon := member(deaconID, "carlos mendes")
	deacon.IsDiacono = true
	childID := primitive.NewObjectID()
	store := newFakeStore(deacon, member(childID, "pedro silva"))

	in := []models.Member{{
		ID:       primitive.NewObjectID(),
		Nome:     "joana silva",
		Telefone: "11988880000",
		Diacono:  models.MemberRef{ID: deaconID.Hex()},
		InformacoesPessoais: models.PersonalInfo{
			TemFilhos: true,
			Filhos:    []models.MemberRef{{ID: childID.Hex()}},
		},
	}}

	r := New(store, nil)
	once := r.Enrich(context.Background(), in)
	twice := r.Enrich(context.Background(), once)

	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("second enrich differs:\nonce:  %+v\ntwice: %+v", once, twice)
	}
}

func TestEnrichBatchFailureIsolation(t *testing.T) {
	okID := primitive.NewObjectID()
	store := newFakeStore(member(okID, "carlos mendes"))

	in := []models.Member{
		{ID: primitive.NewObjectID(), Diacono: models.MemberRef{ID: primitive.NewObjectID().Hex()}},
		{ID: primitive.NewObjectID(), Nome: "joana silva", Diacono: models.MemberRef{ID: okID.Hex()}},
	}

	out := New(store, nil).Enrich(context.Background(), in)

	if len(out) != 2 {
		t.Fatalf("len(out) = %d, want 2", len(out))
	}
	if out[0].Diacono != (models.MemberRef{}) {
		t.Errorf("failed member diacono = %+v, want placeholder", out[0].Diacono)
	}
	if out[1].Diacono.Nome != "carlos mendes" {
		t.Errorf("healthy member diacono = %+v", out[1].Diacono)
	}
}
