package mongo

import (
	"context"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/99minutos/auth-system/internal/core/domain"
	"github.com/99minutos/auth-system/internal/core/ports"
)

func TestFilterDoc(t *testing.T) {
	if _, err := filterDoc(ports.UserFilter{}); !errors.Is(err, domain.ErrInvalidFilter) {
		t.Fatalf("expected ErrInvalidFilter, got %v", err)
	}
	if _, err := filterDoc(ports.UserFilter{ID: "not-hex"}); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound for bad id, got %v", err)
	}

	oid := primitive.NewObjectID()
	doc, err := filterDoc(ports.UserFilter{ID: oid.Hex(), ResetToken: "tok"})
	if err != nil {
		t.Fatalf("filterDoc returned error: %v", err)
	}
	if doc["_id"] != oid || doc["reset_token"] != "tok" || len(doc) != 2 {
		t.Fatalf("unexpected filter: %v", doc)
	}
}

func TestSetOrUnset(t *testing.T) {
	set, unset := bson.M{}, bson.M{}
	empty, value := "", "abc"

	setOrUnset(set, unset, "untouched", nil)
	setOrUnset(set, unset, "session_id", &empty)
	setOrUnset(set, unset, "reset_token", &value)

	if _, ok := set["untouched"]; ok {
		t.Fatalf("nil value should be left alone")
	}
	if _, ok := unset["session_id"]; !ok {
		t.Fatalf("empty value should be unset")
	}
	if set["reset_token"] != "abc" {
		t.Fatalf("expected reset_token to be set, got %v", set)
	}
}

func TestUserRepository_Mock(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ns := "auth." + usersCollection

	mt.Run("find decodes user", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		oid := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(1, ns, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: oid},
			{Key: "email", Value: "a@b.com"},
			{Key: "hashed_password", Value: "digest"},
			{Key: "session_id", Value: "sid"},
		}))

		user, err := repo.Find(context.Background(), ports.UserFilter{Email: "a@b.com"})
		if err != nil {
			mt.Fatalf("Find returned error: %v", err)
		}
		if user.ID != oid.Hex() || user.Email != "a@b.com" || user.SessionID != "sid" {
			mt.Fatalf("unexpected user: %+v", user)
		}
	})

	mt.Run("find not found", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		if _, err := repo.Find(context.Background(), ports.UserFilter{Email: "x@b.com"}); !errors.Is(err, domain.ErrUserNotFound) {
			mt.Fatalf("expected ErrUserNotFound, got %v", err)
		}
	})

	mt.Run("add duplicate", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index: 0, Code: 11000, Message: "duplicate key error",
		}))

		if _, err := repo.Add(context.Background(), "a@b.com", "digest"); !errors.Is(err, domain.ErrUserExists) {
			mt.Fatalf("expected ErrUserExists, got %v", err)
		}
	})

	mt.Run("add success", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		user, err := repo.Add(context.Background(), "a@b.com", "digest")
		if err != nil {
			mt.Fatalf("Add returned error: %v", err)
		}
		if user.ID == "" || user.Email != "a@b.com" {
			mt.Fatalf("unexpected user: %+v", user)
		}
	})

	mt.Run("update precondition fails", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 0},
			bson.E{Key: "nModified", Value: 0},
		))

		cleared := ""
		err := repo.Update(context.Background(),
			ports.UserFilter{ID: primitive.NewObjectID().Hex(), ResetToken: "stale"},
			ports.UserUpdate{ResetToken: &cleared},
		)
		if !errors.Is(err, domain.ErrUserNotFound) {
			mt.Fatalf("expected ErrUserNotFound, got %v", err)
		}
	})

	mt.Run("update requires id", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		if err := repo.Update(context.Background(), ports.UserFilter{Email: "a@b.com"}, ports.UserUpdate{}); !errors.Is(err, domain.ErrInvalidFilter) {
			mt.Fatalf("expected ErrInvalidFilter, got %v", err)
		}
	})
}
