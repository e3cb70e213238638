package core

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/example/parlour/internal/models"
	"github.com/example/parlour/pkg/database"
)

func newUserService(t *testing.T, users ...models.Document) (UserService, *database.MemoryStore) {
	t.Helper()
	store := database.NewMemoryStore()
	for _, u := range users {
		if _, err := store.Insert(context.Background(), models.UsersCollection, u); err != nil {
			t.Fatalf("Insert() error = %v", err)
		}
	}
	return NewUserService(store, zap.NewNop()), store
}

func TestUpsertUser(t *testing.T) {
	svc, store := newUserService(t)
	ctx := context.Background()

	res, err := svc.UpsertUser(ctx, models.Document{"email": "a@x.com", "name": "A"})
	if err != nil {
		t.Fatalf("UpsertUser() error = %v", err)
	}
	if res.UpsertedCount != 1 || res.MatchedCount != 0 {
		t.Errorf("first upsert = %+v, want one upserted", res)
	}

	res, err = svc.UpsertUser(ctx, models.Document{"email": "a@x.com", "name": "Ann"})
	if err != nil {
		t.Fatalf("UpsertUser() error = %v", err)
	}
	if res.MatchedCount != 1 || res.ModifiedCount != 1 || res.UpsertedCount != 0 {
		t.Errorf("second upsert = %+v, want one matched and modified", res)
	}

	users, err := store.Find(ctx, models.UsersCollection, 0)
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if len(users) != 1 {
		t.Fatalf("len(users) = %d, want 1", len(users))
	}
	if users[0]["name"] != "Ann" {
		t.Errorf("name = %v, want Ann", users[0]["name"])
	}
}

func TestUpsertUserWithoutEmail(t *testing.T) {
	svc, store := newUserService(t, models.Document{"name": "walk-in"})
	ctx := context.Background()

	res, err := svc.UpsertUser(ctx, models.Document{"name": "walk-in customer"})
	if err != nil {
		t.Fatalf("UpsertUser() error = %v", err)
	}
	if res.MatchedCount != 1 || res.UpsertedCount != 0 {
		t.Errorf("upsert = %+v, want the existing user without email matched", res)
	}
	users, _ := store.Find(ctx, models.UsersCollection, 0)
	if len(users) != 1 || users[0]["name"] != "walk-in customer" {
		t.Errorf("users = %v, want one updated user", users)
	}
}

func TestIsAdmin(t *testing.T) {
	svc, _ := newUserService(t,
		models.Document{"email": "admin@x.com", "role": "admin"},
		models.Document{"email": "user@x.com"},
		models.Document{"email": "upper@x.com", "role": "Admin"},
	)
	tests := []struct {
		email string
		want  bool
	}{
		{"admin@x.com", true},
		{"user@x.com", false},
		{"upper@x.com", false},
		{"ghost@x.com", false},
	}
	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			got, err := svc.IsAdmin(context.Background(), tt.email)
			if err != nil {
				t.Fatalf("IsAdmin() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("IsAdmin(%s) = %v, want %v", tt.email, got, tt.want)
			}
		})
	}
}

func TestMakeAdmin(t *testing.T) {
	ctx := context.Background()

	t.Run("admin promotes user", func(t *testing.T) {
		svc, _ := newUserService(t,
			models.Document{"email": "admin@x.com", "role": "admin"},
			models.Document{"email": "user@x.com"},
		)
		res, err := svc.MakeAdmin(ctx, "admin@x.com", "user@x.com")
		if err != nil {
			t.Fatalf("MakeAdmin() error = %v", err)
		}
		if res.MatchedCount != 1 || res.ModifiedCount != 1 {
			t.Errorf("result = %+v, want one matched and modified", res)
		}
		ok, _ := svc.IsAdmin(ctx, "user@x.com")
		if !ok {
			t.Error("target was not promoted")
		}
	})

	t.Run("unknown target is not created", func(t *testing.T) {
		svc, store := newUserService(t, models.Document{"email": "admin@x.com", "role": "admin"})
		res, err := svc.MakeAdmin(ctx, "admin@x.com", "ghost@x.com")
		if err != nil {
			t.Fatalf("MakeAdmin() error = %v", err)
		}
		if res.MatchedCount != 0 || res.UpsertedCount != 0 {
			t.Errorf("result = %+v, want no match", res)
		}
		users, _ := store.Find(ctx, models.UsersCollection, 0)
		if len(users) != 1 {
			t.Errorf("len(users) = %d, want 1", len(users))
		}
	})

	denied := []struct {
		name      string
		requester string
	}{
		{"no requester", ""},
		{"requester not found", "ghost@x.com"},
		{"requester not admin", "user@x.com"},
	}
	for _, tt := range denied {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newUserService(t, models.Document{"email": "user@x.com"})
			_, err := svc.MakeAdmin(ctx, tt.requester, "user@x.com")
			if !errors.Is(err, ErrAccessDenied) {
				t.Fatalf("err = %v, want ErrAccessDenied", err)
			}
			ok, _ := svc.IsAdmin(ctx, "user@x.com")
			if ok {
				t.Error("target promoted despite denial")
			}
		})
	}
}
