package repository

import (
	"context"

	"github.com/rentora/posts-service/internal/entity"
)

// PostFilter narrows ListPosts. Title and Location are case-insensitive
// partial matches, CategoryID is exact.
type PostFilter struct {
	Title      string
	Location   string
	CategoryID string
}

type PostRepository interface {
	Create(ctx context.Context, post *entity.Post) (string, error)
	GetByID(ctx context.Context, id string) (*entity.Post, error)
	Update(ctx context.Context, post *entity.Post) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter PostFilter, page, pageSize int) ([]*entity.Post, int, error)
}

type UserRepository interface {
	GetByID(ctx context.Context, id string) (*entity.User, error)
}

type CategoryRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Category, error)
}
