package memberstore_test

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	memberstore "github.com/ibbtech/memberhub/internal/app/store/members"
	"github.com/ibbtech/memberhub/internal/domain/models"
	"github.com/ibbtech/memberhub/internal/testutil"
)

func TestStore_Create_Defaults(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := memberstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.Member{
		Nome:  "joana da silva",
		Email: "Joana@Example.com",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if created.ID == primitive.NilObjectID {
		t.Error("expected ID to be assigned")
	}
	if created.Email != "joana@example.com" {
		t.Errorf("email not normalized: %q", created.Email)
	}
	if created.Role != models.RoleMember {
		t.Errorf("expected default role MEMBRO, got %q", created.Role)
	}
	if created.Status != models.StatusVisitor {
		t.Errorf("expected default status visitante, got %q", created.Status)
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be set")
	}

	if len(created.Historico) != 1 {
		t.Fatalf("expected 1 initial history entry, got %d", len(created.Historico))
	}
	first := created.Historico[0]
	if first.Antigo != "SEM INFORMAÇÕES ANTERIORES" || first.Novo != "MEMBRO CRIADO" {
		t.Errorf("unexpected initial history entry: %+v", first)
	}
	if first.Chave != "" {
		t.Errorf("initial history chave: got %q, want empty", first.Chave)
	}
}

func TestStore_Create_InvalidStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := memberstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := store.Create(ctx, models.Member{Nome: "X Y", Status: "bogus"})
	if err == nil {
		t.Fatal("expected error for invalid status")
	}
}

func TestStore_Create_ShortCPF(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := memberstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := store.Create(ctx, models.Member{Nome: "X Y", CPF: "123"})
	if err == nil {
		t.Fatal("expected error for short CPF")
	}
}

func TestStore_Create_DuplicateEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := memberstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := store.EnsureIndexes(ctx); err != nil {
		t.Fatalf("EnsureIndexes failed: %v", err)
	}

	if _, err := store.Create(ctx, models.Member{Nome: "A B", Email: "dup@example.com"}); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}
	_, err := store.Create(ctx, models.Member{Nome: "C D", Email: "DUP@example.com"})
	if err != memberstore.ErrDuplicateEmail {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestStore_Create_VisitorsWithoutEmailDoNotCollide(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := memberstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := store.EnsureIndexes(ctx); err != nil {
		t.Fatalf("EnsureIndexes failed: %v", err)
	}

	if _, err := store.Create(ctx, models.Member{Nome: "Visitor One"}); err != nil {
		t.Fatalf("first visitor Create failed: %v", err)
	}
	if _, err := store.Create(ctx, models.Member{Nome: "Visitor Two"}); err != nil {
		t.Fatalf("second visitor Create failed: %v", err)
	}
}

func TestStore_Update_AppendsHistory(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := memberstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.Member{Nome: "Joana Silva", Telefone: "11988880000"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	records := []models.ChangeRecord{{
		Chave:     "telefone",
		Antigo:    "(11) 98888-0000",
		Novo:      "(11) 99999-0000",
		UpdatedAt: time.Now(),
	}}
	err = store.Update(ctx, created.ID, map[string]any{"telefone": "11999990000"}, records)
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got, err := store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Telefone != "11999990000" {
		t.Errorf("telefone: got %q", got.Telefone)
	}
	if len(got.Historico) != 2 {
		t.Fatalf("expected 2 history entries, got %d", len(got.Historico))
	}
	if got.Historico[1].Chave != "telefone" {
		t.Errorf("appended history chave: got %q", got.Historico[1].Chave)
	}
	if !got.UpdatedAt.After(created.UpdatedAt) {
		t.Error("expected UpdatedAt to advance")
	}
}

func TestStore_Update_ProtectedKeysDropped(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := memberstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.Member{Nome: "Joana Silva"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	err = store.Update(ctx, created.ID, map[string]any{
		"nome":      "Joana Souza",
		"historico": []models.ChangeRecord{},
		"createdAt": time.Time{},
	}, nil)
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got, err := store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Nome != "Joana Souza" {
		t.Errorf("nome: got %q", got.Nome)
	}
	if len(got.Historico) != 1 {
		t.Errorf("historico was overwritten: %d entries", len(got.Historico))
	}
	if got.CreatedAt.IsZero() {
		t.Error("createdAt was overwritten")
	}
}

func TestStore_Update_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := memberstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	err := store.Update(ctx, primitive.NewObjectID(), map[string]any{"nome": "X"}, nil)
	if err != memberstore.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_AttachProvider_ReplacesSameProvider(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := memberstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.Member{Nome: "Joana Silva", Email: "j@example.com"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	err = store.AttachProvider(ctx, created.ID, models.ProviderInfo{ProviderID: models.ProviderGoogle, UID: "uid-old"})
	if err != nil {
		t.Fatalf("first AttachProvider failed: %v", err)
	}
	err = store.AttachProvider(ctx, created.ID, models.ProviderInfo{ProviderID: models.ProviderGoogle, UID: "uid-new"})
	if err != nil {
		t.Fatalf("second AttachProvider failed: %v", err)
	}

	got, err := store.GetByProviderUID(ctx, "uid-new")
	if err != nil {
		t.Fatalf("GetByProviderUID failed: %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("wrong member resolved: %v", got.ID)
	}
	if len(got.Autenticacao.ProvidersInfo) != 1 {
		t.Fatalf("expected 1 provider entry, got %d", len(got.Autenticacao.ProvidersInfo))
	}
	if got.Autenticacao.ProvidersInfo[0].UID != "uid-new" {
		t.Errorf("uid: got %q", got.Autenticacao.ProvidersInfo[0].UID)
	}
}

func TestStore_ListDeacons(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := memberstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateMember(ctx, "Regular Member", "r@example.com")
	fixtures.CreateDeacon(ctx, "Bruno Deacon")
	fixtures.CreateDeacon(ctx, "Alice Deacon")

	got, err := store.ListDeacons(ctx)
	if err != nil {
		t.Fatalf("ListDeacons failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 deacons, got %d", len(got))
	}
	if got[0].Nome != "Alice Deacon" || got[1].Nome != "Bruno Deacon" {
		t.Errorf("deacons not sorted by name: %q, %q", got[0].Nome, got[1].Nome)
	}
}

func TestStore_ListByBirthMonth(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := memberstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateMember(ctx, "No Birthday", "nb@example.com")

	late := time.Date(1990, time.March, 25, 0, 0, 0, 0, time.UTC)
	early := time.Date(1985, time.March, 3, 0, 0, 0, 0, time.UTC)
	other := time.Date(1990, time.July, 1, 0, 0, 0, 0, time.UTC)

	for _, tc := range []struct {
		nome string
		dob  time.Time
	}{
		{"March Late", late},
		{"March Early", early},
		{"July Member", other},
	} {
		m := fixtures.CreateMember(ctx, tc.nome, "")
		err := store.Update(ctx, m.ID, map[string]any{"dataNascimento": tc.dob}, nil)
		if err != nil {
			t.Fatalf("Update dob failed: %v", err)
		}
	}

	got, err := store.ListByBirthMonth(ctx, 3)
	if err != nil {
		t.Fatalf("ListByBirthMonth failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 march birthdays, got %d", len(got))
	}
	if got[0].Nome != "March Early" || got[1].Nome != "March Late" {
		t.Errorf("not sorted by day: %q, %q", got[0].Nome, got[1].Nome)
	}
}

func TestStore_EmailExistsForOther(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := memberstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	a, err := store.Create(ctx, models.Member{Nome: "A B", Email: "a@example.com"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	exists, err := store.EmailExistsForOther(ctx, "a@example.com", a.ID)
	if err != nil {
		t.Fatalf("EmailExistsForOther failed: %v", err)
	}
	if exists {
		t.Error("own email should not count as taken")
	}

	exists, err = store.EmailExistsForOther(ctx, "a@example.com", primitive.NewObjectID())
	if err != nil {
		t.Fatalf("EmailExistsForOther failed: %v", err)
	}
	if !exists {
		t.Error("expected email to be taken by another member")
	}
}

func TestStore_Delete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := memberstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.Member{Nome: "To Delete"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	n, err := store.Delete(ctx, created.ID)
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if n != 1 {
		t.Errorf("deleted count: got %d, want 1", n)
	}

	if _, err := store.GetByID(ctx, created.ID); err != memberstore.ErrNotFound {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}
