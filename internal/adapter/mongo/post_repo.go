package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/rentora/posts-service/internal/entity"
	"github.com/rentora/posts-service/internal/port/repository"
)

const postCollectionName = "posts"

type PostMongoRepository struct {
	db *mongo.Database
}

func NewPostMongoRepository(client *mongo.Client, dbName string) *PostMongoRepository {
	return &PostMongoRepository{db: client.Database(dbName)}
}

type imageRefDocument struct {
	ID  string `bson:"id"`
	URL string `bson:"url"`
}

type postDocument struct {
	ID               primitive.ObjectID `bson:"_id,omitempty"`
	UserID           string             `bson:"user_id"`
	Title            string             `bson:"title"`
	Description      string             `bson:"description"`
	Price            float64            `bson:"price"`
	Location         string             `bson:"location"`
	Area             float64            `bson:"area"`
	CategoryID       string             `bson:"category_id"`
	ServiceBookingID string             `bson:"service_booking_id,omitempty"`
	Images           []imageRefDocument `bson:"images"`
	CreatedAt        primitive.DateTime `bson:"created_at"`
	UpdatedAt        primitive.DateTime `bson:"updated_at"`
}

func toPostDocument(p *entity.Post) (*postDocument, error) {
	images := make([]imageRefDocument, len(p.Images))
	for i, img := range p.Images {
		images[i] = imageRefDocument{ID: img.ID, URL: img.URL}
	}
	doc := &postDocument{
		UserID:           p.UserID,
		Title:            p.Title,
		Description:      p.Description,
		Price:            p.Price,
		Location:         p.Location,
		Area:             p.Area,
		CategoryID:       p.CategoryID,
		ServiceBookingID: p.ServiceBookingID,
		Images:           images,
		CreatedAt:        primitive.NewDateTimeFromTime(p.CreatedAt),
		UpdatedAt:        primitive.NewDateTimeFromTime(p.UpdatedAt),
	}
	if p.ID != "" {
		objID, err := primitive.ObjectIDFromHex(p.ID)
		if err != nil {
			return nil, fmt.Errorf("invalid post ID format: %w", err)
		}
		doc.ID = objID
	}
	return doc, nil
}

func toPostEntity(doc *postDocument) *entity.Post {
	images := make([]entity.ImageRef, len(doc.Images))
	for i, img := range doc.Images {
		images[i] = entity.ImageRef{ID: img.ID, URL: img.URL}
	}
	return &entity.Post{
		ID:               doc.ID.Hex(),
		UserID:           doc.UserID,
		Title:            doc.Title,
		Description:      doc.Description,
		Price:            doc.Price,
		Location:         doc.Location,
		Area:             doc.Area,
		CategoryID:       doc.CategoryID,
		ServiceBookingID: doc.ServiceBookingID,
		Images:           images,
		CreatedAt:        doc.CreatedAt.Time(),
		UpdatedAt:        doc.UpdatedAt.Time(),
	}
}

func (r *PostMongoRepository) Create(ctx context.Context, post *entity.Post) (string, error) {
	doc, err := toPostDocument(post)
	if err != nil {
		return "", err
	}

	res, err := r.db.Collection(postCollectionName).InsertOne(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("failed to create post in mongo: %w", err)
	}

	insertedID, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("failed to convert inserted_id to ObjectID")
	}
	return insertedID.Hex(), nil
}

func (r *PostMongoRepository) GetByID(ctx context.Context, id string) (*entity.Post, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrNotFound
	}

	var doc postDocument
	err = r.db.Collection(postCollectionName).FindOne(ctx, bson.M{"_id": objID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get post by id from mongo: %w", err)
	}
	return toPostEntity(&doc), nil
}

func (r *PostMongoRepository) Update(ctx context.Context, post *entity.Post) error {
	doc, err := toPostDocument(post)
	if err != nil {
		return err
	}
	if doc.ID.IsZero() {
		return fmt.Errorf("post ID is required for update")
	}

	update := bson.M{
		"$set": bson.M{
			"title":              doc.Title,
			"description":        doc.Description,
			"price":              doc.Price,
			"location":           doc.Location,
			"area":               doc.Area,
			"category_id":        doc.CategoryID,
			"service_booking_id": doc.ServiceBookingID,
			"images":             doc.Images,
			"updated_at":         doc.UpdatedAt,
		},
	}

	res, err := r.db.Collection(postCollectionName).UpdateOne(ctx, bson.M{"_id": doc.ID}, update)
	if err != nil {
		return fmt.Errorf("failed to update post in mongo: %w", err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *PostMongoRepository) Delete(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return repository.ErrNotFound
	}

	res, err := r.db.Collection(postCollectionName).DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return fmt.Errorf("failed to delete post from mongo: %w", err)
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *PostMongoRepository) List(ctx context.Context, filter repository.PostFilter, page, pageSize int) ([]*entity.Post, int, error) {
	mongoFilter := bson.M{}
	if filter.Title != "" {
		mongoFilter["title"] = bson.M{"$regex": regexp.QuoteMeta(filter.Title), "$options": "i"}
	}
	if filter.Location != "" {
		mongoFilter["location"] = bson.M{"$regex": regexp.QuoteMeta(filter.Location), "$options": "i"}
	}
	if filter.CategoryID != "" {
		mongoFilter["category_id"] = filter.CategoryID
	}

	findOptions := options.Find()
	findOptions.SetSkip(int64((page - 1) * pageSize))
	findOptions.SetLimit(int64(pageSize))
	// creation order keeps repeated identical queries stable
	findOptions.SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})

	cursor, err := r.db.Collection(postCollectionName).Find(ctx, mongoFilter, findOptions)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list posts from mongo: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []postDocument
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("failed to decode post list from mongo: %w", err)
	}

	posts := make([]*entity.Post, len(docs))
	for i, doc := range docs {
		posts[i] = toPostEntity(&doc)
	}

	totalCount, err := r.db.Collection(postCollectionName).CountDocuments(ctx, mongoFilter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count posts in mongo: %w", err)
	}

	return posts, int(totalCount), nil
}
