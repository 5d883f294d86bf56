package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/99minutos/auth-system/internal/core/domain"
	"github.com/99minutos/auth-system/internal/core/ports"
)

const usersCollection = "users"

// UserRepository implements ports.UserRepository on a MongoDB collection.
type UserRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{coll: db.Collection(usersCollection), now: time.Now}
}

type mongoUser struct {
	ID               primitive.ObjectID `bson:"_id,omitempty"`
	Email            string             `bson:"email"`
	HashedPassword   string             `bson:"hashed_password"`
	SessionID        string             `bson:"session_id,omitempty"`
	SessionCreatedAt int64              `bson:"session_created_at,omitempty"`
	ResetToken       string             `bson:"reset_token,omitempty"`
	CreatedAt        int64              `bson:"created_at"`
	UpdatedAt        int64              `bson:"updated_at"`
}

func (mu mongoUser) toDomain() *domain.User {
	return &domain.User{
		ID:               mu.ID.Hex(),
		Email:            mu.Email,
		HashedPassword:   mu.HashedPassword,
		SessionID:        mu.SessionID,
		SessionCreatedAt: unixMilliToTime(mu.SessionCreatedAt),
		ResetToken:       mu.ResetToken,
		CreatedAt:        unixMilliToTime(mu.CreatedAt),
		UpdatedAt:        unixMilliToTime(mu.UpdatedAt),
	}
}

// EnsureIndexes creates the unique indexes backing the user invariants. The
// session and token indexes are sparse so that unset fields never collide.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "session_id", Value: 1}}, Options: options.Index().SetUnique(true).SetSparse(true)},
		{Keys: bson.D{{Key: "reset_token", Value: 1}}, Options: options.Index().SetUnique(true).SetSparse(true)},
	})
	if err != nil {
		return fmt.Errorf("create user indexes: %w", err)
	}
	return nil
}

// filterDoc translates f into a query. An ID that is not a valid ObjectID can
// match nothing, so it is reported as not found.
func filterDoc(f ports.UserFilter) (bson.M, error) {
	if f.IsEmpty() {
		return nil, domain.ErrInvalidFilter
	}
	doc := bson.M{}
	if f.ID != "" {
		oid, err := primitive.ObjectIDFromHex(f.ID)
		if err != nil {
			return nil, domain.ErrUserNotFound
		}
		doc["_id"] = oid
	}
	if f.Email != "" {
		doc["email"] = f.Email
	}
	if f.SessionID != "" {
		doc["session_id"] = f.SessionID
	}
	if f.ResetToken != "" {
		doc["reset_token"] = f.ResetToken
	}
	return doc, nil
}

func (r *UserRepository) Find(ctx context.Context, f ports.UserFilter) (*domain.User, error) {
	query, err := filterDoc(f)
	if err != nil {
		return nil, err
	}

	var mu mongoUser
	if err := r.coll.FindOne(ctx, query).Decode(&mu); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return mu.toDomain(), nil
}

func (r *UserRepository) Add(ctx context.Context, email, hashedPassword string) (*domain.User, error) {
	now := r.now().UTC().UnixMilli()
	doc := mongoUser{
		Email:          email,
		HashedPassword: hashedPassword,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("insert user: unexpected id type %T", res.InsertedID)
	}
	doc.ID = oid
	return doc.toDomain(), nil
}

// Update applies upd with a single UpdateOne, so the non-ID filter fields act
// as a compare-and-set precondition.
func (r *UserRepository) Update(ctx context.Context, f ports.UserFilter, upd ports.UserUpdate) error {
	if f.ID == "" {
		return domain.ErrInvalidFilter
	}
	query, err := filterDoc(f)
	if err != nil {
		return err
	}

	set := bson.M{"updated_at": r.now().UTC().UnixMilli()}
	unset := bson.M{}
	if upd.HashedPassword != nil {
		set["hashed_password"] = *upd.HashedPassword
	}
	setOrUnset(set, unset, "session_id", upd.SessionID)
	setOrUnset(set, unset, "reset_token", upd.ResetToken)
	if upd.SessionCreatedAt != nil {
		if upd.SessionCreatedAt.IsZero() {
			unset["session_created_at"] = ""
		} else {
			set["session_created_at"] = upd.SessionCreatedAt.UTC().UnixMilli()
		}
	}

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	res, err := r.coll.UpdateOne(ctx, query, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("update user: %w", domain.ErrUserExists)
		}
		return fmt.Errorf("update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// Empty values are unset so the sparse unique indexes skip the document.
func setOrUnset(set, unset bson.M, field string, v *string) {
	if v == nil {
		return
	}
	if *v == "" {
		unset[field] = ""
		return
	}
	set[field] = *v
}

func unixMilliToTime(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}
