package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/rentora/posts-service/internal/entity"
	"github.com/rentora/posts-service/internal/port/repository"
)

const userCollectionName = "users"

// UserMongoRepository reads the user directory maintained by the user
// service. This service never writes to it.
type UserMongoRepository struct {
	db *mongo.Database
}

func NewUserMongoRepository(client *mongo.Client, dbName string) *UserMongoRepository {
	return &UserMongoRepository{db: client.Database(dbName)}
}

type userDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Email     string             `bson:"email"`
	FullName  string             `bson:"full_name"`
	Role      string             `bson:"role"`
	Active    bool               `bson:"active"`
	CreatedAt primitive.DateTime `bson:"created_at"`
}

func (r *UserMongoRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrNotFound
	}

	var doc userDocument
	err = r.db.Collection(userCollectionName).FindOne(ctx, bson.M{"_id": objID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by id from mongo: %w", err)
	}

	return &entity.User{
		ID:        doc.ID.Hex(),
		Email:     doc.Email,
		FullName:  doc.FullName,
		Role:      doc.Role,
		Active:    doc.Active,
		CreatedAt: doc.CreatedAt.Time(),
	}, nil
}
