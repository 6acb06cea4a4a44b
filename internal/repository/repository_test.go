package repository

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/AnshRaj112/salvioris-journal/internal/database"
	"github.com/AnshRaj112/salvioris-journal/internal/models"
	"github.com/AnshRaj112/salvioris-journal/pkg/utils"
	"github.com/go-test/deep"
	"github.com/google/uuid"
)

func newTestStore(t *testing.T, cipher *utils.BodyCipher) *Store {
	t.Helper()
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return New(db, cipher)
}

func mustUser(t *testing.T, s *Store, name string) *models.User {
	t.Helper()
	u := &models.User{Name: name, PasswordHash: "x"}
	if err := s.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("create user %s: %v", name, err)
	}
	return u
}

func TestCreateUserRejectsCaseInsensitiveDuplicate(t *testing.T) {
	s := newTestStore(t, nil)
	mustUser(t, s, "Garrett")

	err := s.CreateUser(context.Background(), &models.User{Name: "garrett", PasswordHash: "x"})
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	got, err := s.UserByName(context.Background(), "GARRETT")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if got.Name != "Garrett" {
		t.Errorf("display name changed: %q", got.Name)
	}
}

func TestUserByNameMissing(t *testing.T) {
	s := newTestStore(t, nil)
	if _, err := s.UserByName(context.Background(), "nobody"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestJournalLifecycle(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, nil)
	u := mustUser(t, s, "Garrett")

	j, err := s.CreateJournal(ctx, "  Neat birds I saw ", u.ID)
	if err != nil {
		t.Fatalf("create journal: %v", err)
	}
	if j.Title != "Neat birds I saw" {
		t.Errorf("title not trimmed: %q", j.Title)
	}

	got, err := s.GetJournal(ctx, j.ID)
	if err != nil {
		t.Fatalf("get journal: %v", err)
	}
	if diff := deep.Equal(got, j); diff != nil {
		t.Error(diff)
	}

	list, err := s.ListJournalsForUser(ctx, u.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].ID != j.ID {
		t.Errorf("unexpected journals: %+v", list)
	}

	other := mustUser(t, s, "Alice")
	list, err = s.ListJournalsForUser(ctx, other.ID)
	if err != nil {
		t.Fatalf("list other: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("other user sees %d journals", len(list))
	}
}

func TestCreateJournalValidation(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, nil)
	u := mustUser(t, s, "Garrett")

	_, err := s.CreateJournal(ctx, "   ", u.ID)
	verrs, ok := utils.AsValidation(err)
	if !ok || verrs.Field("title") == "" {
		t.Fatalf("expected title validation error, got %v", err)
	}

	_, err = s.CreateJournal(ctx, "Orphan", uuid.New())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing owner, got %v", err)
	}
}

func TestEntryLifecycle(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, nil)
	u := mustUser(t, s, "Garrett")
	j, err := s.CreateJournal(ctx, "Neat birds I saw", u.ID)
	if err != nil {
		t.Fatalf("create journal: %v", err)
	}

	e, err := s.CreateEntry(ctx, "Bald eagle", "Seemed lost", u.ID, j.ID)
	if err != nil {
		t.Fatalf("create entry: %v", err)
	}
	if e.UserID != u.ID || e.JournalID != j.ID {
		t.Fatalf("ownership not recorded: %+v", e)
	}

	got, err := s.GetEntry(ctx, e.ID)
	if err != nil {
		t.Fatalf("get entry: %v", err)
	}
	if diff := deep.Equal(got, e); diff != nil {
		t.Error(diff)
	}

	updated, err := s.UpdateEntry(ctx, e.ID, models.EntryUpdate{Title: "Bald eagle", Body: "Found its way home"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Body != "Found its way home" || updated.UserID != u.ID || updated.JournalID != j.ID {
		t.Errorf("unexpected update result: %+v", updated)
	}

	list, err := s.ListEntriesForJournal(ctx, j.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(list))
	}

	if err := s.DestroyEntry(ctx, e.ID); err != nil {
		t.Fatalf("destroy: %v", err)
	}
	if _, err := s.GetEntry(ctx, e.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after destroy, got %v", err)
	}
	if err := s.DestroyEntry(ctx, e.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second destroy: expected ErrNotFound, got %v", err)
	}
}

func TestCreateEntryRequiresJournalAndFields(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, nil)
	u := mustUser(t, s, "Garrett")

	if _, err := s.CreateEntry(ctx, "Title", "Body", u.ID, uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing journal, got %v", err)
	}

	j, _ := s.CreateJournal(ctx, "Birds", u.ID)
	_, err := s.CreateEntry(ctx, "", " ", u.ID, j.ID)
	verrs, ok := utils.AsValidation(err)
	if !ok {
		t.Fatalf("expected validation errors, got %v", err)
	}
	if verrs.Field("title") == "" || verrs.Field("body") == "" {
		t.Errorf("expected title and body messages, got %v", verrs)
	}
}

func TestUpdateMissingEntry(t *testing.T) {
	s := newTestStore(t, nil)
	_, err := s.UpdateEntry(context.Background(), uuid.New(), models.EntryUpdate{Title: "t", Body: "b"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestEntryBodiesSealedAtRest(t *testing.T) {
	ctx := context.Background()
	cipher, err := utils.NewBodyCipher("MDEyMzQ1Njc4OWFiY2RlZjAxMjM0NTY3ODlhYmNkZWY=")
	if err != nil {
		t.Fatalf("cipher: %v", err)
	}
	s := newTestStore(t, cipher)
	u := mustUser(t, s, "Garrett")
	j, _ := s.CreateJournal(ctx, "Birds", u.ID)
	e, err := s.CreateEntry(ctx, "Heron", "Standing very still", u.ID, j.ID)
	if err != nil {
		t.Fatalf("create entry: %v", err)
	}

	var raw string
	if err := s.DB().QueryRowContext(ctx, `SELECT body FROM entries WHERE id = $1`, e.ID).Scan(&raw); err != nil {
		t.Fatalf("raw select: %v", err)
	}
	if !strings.HasPrefix(raw, "enc:v1:") || strings.Contains(raw, "Standing") {
		t.Errorf("body stored in plaintext: %q", raw)
	}

	got, err := s.GetEntry(ctx, e.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Body != "Standing very still" {
		t.Errorf("body = %q", got.Body)
	}
}

func TestConcurrentEntryWrites(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, nil)
	u := mustUser(t, s, "Garrett")
	j, err := s.CreateJournal(ctx, "Neat birds I saw", u.ID)
	if err != nil {
		t.Fatalf("create journal: %v", err)
	}

	const workers, perWorker = 8, 5
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				e, err := s.CreateEntry(ctx, fmt.Sprintf("bird %d-%d", w, i), "spotted", u.ID, j.ID)
				if err != nil {
					t.Errorf("create: %v", err)
					return
				}
				if _, err := s.GetEntry(ctx, e.ID); err != nil {
					t.Errorf("get: %v", err)
				}
				if _, err := s.UpdateEntry(ctx, e.ID, models.EntryUpdate{Title: e.Title, Body: "counted"}); err != nil {
					t.Errorf("update: %v", err)
				}
			}
		}(w)
	}
	wg.Wait()

	list, err := s.ListEntriesForJournal(ctx, j.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != workers*perWorker {
		t.Fatalf("expected %d entries, got %d", workers*perWorker, len(list))
	}
	for _, e := range list {
		if e.Body != "counted" {
			t.Errorf("entry %q not updated: %q", e.Title, e.Body)
		}
	}
}
