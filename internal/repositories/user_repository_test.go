package repositories

import (
	"errors"
	"strconv"
	"testing"

	"quizly/api/internal/models"
	"quizly/api/internal/testhelpers"
)

func TestUserRepositoryCreateAndLookup(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	repo := &UserRepository{DB: db}

	user := &models.User{Name: "Ada", Email: "ada@example.com", PasswordHash: "hash"}
	if err := repo.CreateUser(user); err != nil {
		t.Fatalf("CreateUser returned error: %v", err)
	}

	byID, err := repo.GetUserByID(strconv.FormatUint(uint64(user.ID), 10))
	if err != nil {
		t.Fatalf("GetUserByID returned error: %v", err)
	}
	if byID.Email != "ada@example.com" {
		t.Fatalf("unexpected user %+v", byID)
	}

	byEmail, err := repo.GetUserByEmail("ada@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail returned error: %v", err)
	}
	if byEmail.ID != user.ID {
		t.Fatalf("expected same user, got %d", byEmail.ID)
	}
}

func TestUserRepositoryDuplicateEmail(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	repo := &UserRepository{DB: db}
	testhelpers.SeedUser(t, db, "Ada", "ada@example.com")

	err := repo.CreateUser(&models.User{Name: "Other", Email: "ada@example.com", PasswordHash: "hash"})
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestUserRepositoryNotFound(t *testing.T) {
	repo := &UserRepository{DB: testhelpers.SetupTestDB(t)}

	for _, id := range []string{"999", "not-a-number"} {
		if _, err := repo.GetUserByID(id); !errors.Is(err, ErrUserNotFound) {
			t.Fatalf("GetUserByID(%q): expected ErrUserNotFound, got %v", id, err)
		}
	}
	if _, err := repo.GetUserByEmail("ghost@example.com"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestGetUsersByIDs(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	repo := &UserRepository{DB: db}

	ada := testhelpers.SeedUser(t, db, "Ada", "ada@example.com")
	bob := testhelpers.SeedUser(t, db, "Bob", "bob@example.com")
	adaID := strconv.FormatUint(uint64(ada.ID), 10)
	bobID := strconv.FormatUint(uint64(bob.ID), 10)

	users, err := repo.GetUsersByIDs([]string{adaID, bobID, "424242", "junk"})
	if err != nil {
		t.Fatalf("GetUsersByIDs returned error: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}
	if users[bobID].Name != "Bob" {
		t.Fatalf("unexpected lookup result %+v", users)
	}

	empty, err := repo.GetUsersByIDs(nil)
	if err != nil || len(empty) != 0 {
		t.Fatalf("expected empty result, got %v %v", empty, err)
	}
}
