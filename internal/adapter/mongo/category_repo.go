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

const categoryCollectionName = "categories"

type CategoryMongoRepository struct {
	db *mongo.Database
}

func NewCategoryMongoRepository(client *mongo.Client, dbName string) *CategoryMongoRepository {
	return &CategoryMongoRepository{db: client.Database(dbName)}
}

type categoryDocument struct {
	ID   primitive.ObjectID `bson:"_id,omitempty"`
	Name string             `bson:"name"`
	Slug string             `bson:"slug"`
}

func (r *CategoryMongoRepository) GetByID(ctx context.Context, id string) (*entity.Category, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrNotFound
	}

	var doc categoryDocument
	err = r.db.Collection(categoryCollectionName).FindOne(ctx, bson.M{"_id": objID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get category by id from mongo: %w", err)
	}

	return &entity.Category{
		ID:   doc.ID.Hex(),
		Name: doc.Name,
		Slug: doc.Slug,
	}, nil
}
