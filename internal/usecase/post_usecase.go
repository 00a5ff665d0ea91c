package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rentora/posts-service/internal/auth"
	"github.com/rentora/posts-service/internal/entity"
	"github.com/rentora/posts-service/internal/port/cache"
	"github.com/rentora/posts-service/internal/port/repository"
	"github.com/rentora/posts-service/internal/port/storage"
)

var (
	ErrPostNotFound  = errors.New("post not found")
	ErrForbidden     = errors.New("user not authorized to perform this action")
	ErrTooManyImages = errors.New("a post can carry at most 10 images")
)

const maxImagesPerPost = 10

func postCacheKey(postID string) string {
	return fmt.Sprintf("post:%s", postID)
}

const postCacheTTL = 5 * time.Minute

type EventPublisher interface {
	PublishPostCreated(ctx context.Context, post *entity.Post) error
	PublishPostUpdated(ctx context.Context, post *entity.Post) error
	PublishPostDeleted(ctx context.Context, postID string) error
}

type PostUsecase struct {
	posts      repository.PostRepository
	users      repository.UserRepository
	categories repository.CategoryRepository
	images     storage.ImageStorage
	cacheRepo  cache.CacheRepository
	publisher  EventPublisher
	logger     *zap.Logger
}

func NewPostUsecase(
	posts repository.PostRepository,
	users repository.UserRepository,
	categories repository.CategoryRepository,
	images storage.ImageStorage,
	cacheRepo cache.CacheRepository,
	publisher EventPublisher,
	logger *zap.Logger,
) *PostUsecase {
	return &PostUsecase{
		posts:      posts,
		users:      users,
		categories: categories,
		images:     images,
		cacheRepo:  cacheRepo,
		publisher:  publisher,
		logger:     logger,
	}
}

type CreatePostInput struct {
	Title            string
	Description      string
	Price            float64
	Location         string
	Area             float64
	CategoryID       string
	ServiceBookingID string
}

// UpdatePostInput tracks presence per field: a nil pointer means "keep the
// stored value", so updating price or area to 0 is a real update.
type UpdatePostInput struct {
	Title            *string
	Description      *string
	Price            *float64
	Location         *string
	Area             *float64
	CategoryID       *string
	ServiceBookingID *string
}

type ImageUpload struct {
	FileName string
	Data     []byte
}

func (uc *PostUsecase) CreatePost(ctx context.Context, identity *entity.Identity, input CreatePostInput, files []ImageUpload) (*entity.Post, error) {
	if !auth.Allowed(identity.Role, auth.ActionCreatePost) {
		uc.logger.Warn("create post denied by role table",
			zap.String("user_id", identity.UserID), zap.String("role", identity.Role))
		return nil, ErrForbidden
	}
	if err := validateCreateInput(input); err != nil {
		return nil, err
	}
	if len(files) > maxImagesPerPost {
		return nil, ErrTooManyImages
	}

	images, err := uc.uploadImages(ctx, files)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	post := &entity.Post{
		UserID:           identity.UserID,
		Title:            input.Title,
		Description:      input.Description,
		Price:            input.Price,
		Location:         input.Location,
		Area:             input.Area,
		CategoryID:       input.CategoryID,
		ServiceBookingID: input.ServiceBookingID,
		Images:           images,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	createdID, err := uc.posts.Create(ctx, post)
	if err != nil {
		uc.logger.Error("failed to create post in repository", zap.Error(err), zap.String("user_id", identity.UserID))
		// the uploaded objects would be orphaned otherwise
		uc.deleteImages(ctx, images)
		return nil, fmt.Errorf("PostUsecase.CreatePost: %w", err)
	}
	post.ID = createdID

	if uc.publisher != nil {
		if errPub := uc.publisher.PublishPostCreated(ctx, post); errPub != nil {
			uc.logger.Warn("failed to publish post.created event", zap.Error(errPub), zap.String("post_id", post.ID))
		}
	}
	return post, nil
}

type ListPostsInput struct {
	Title      string
	Location   string
	CategoryID string
	Page       int
	PageSize   int
}

type ListPostsOutput struct {
	Posts      []*entity.Post
	Page       int
	TotalPages int
	TotalPosts int
}

func (uc *PostUsecase) ListPosts(ctx context.Context, input ListPostsInput) (*ListPostsOutput, error) {
	if input.Page < 1 {
		input.Page = 1
	}
	if input.PageSize <= 0 {
		input.PageSize = 10
	}

	filter := repository.PostFilter{
		Title:      input.Title,
		Location:   input.Location,
		CategoryID: input.CategoryID,
	}
	posts, total, err := uc.posts.List(ctx, filter, input.Page, input.PageSize)
	if err != nil {
		uc.logger.Error("failed to list posts", zap.Error(err), zap.Any("filter", filter))
		return nil, fmt.Errorf("PostUsecase.ListPosts: %w", err)
	}

	totalPages := (total + input.PageSize - 1) / input.PageSize
	return &ListPostsOutput{
		Posts:      posts,
		Page:       input.Page,
		TotalPages: totalPages,
		TotalPosts: total,
	}, nil
}

func (uc *PostUsecase) GetPostByID(ctx context.Context, id string) (*entity.PostDetail, error) {
	if uc.cacheRepo != nil {
		key := postCacheKey(id)
		cached, err := uc.cacheRepo.Get(ctx, key)
		if err == nil {
			var detail entity.PostDetail
			if unmarshalErr := json.Unmarshal(cached, &detail); unmarshalErr == nil {
				uc.logger.Debug("post detail served from cache", zap.String("key", key))
				return &detail, nil
			}
			if delErr := uc.cacheRepo.Delete(ctx, key); delErr != nil {
				uc.logger.Warn("failed to drop corrupted cache entry", zap.String("key", key), zap.Error(delErr))
			}
		} else if !errors.Is(err, cache.ErrNotFound) {
			uc.logger.Warn("cache read failed, falling through to repository", zap.String("key", key), zap.Error(err))
		}
	}

	post, err := uc.posts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("PostUsecase.GetPostByID: %w", err)
	}

	detail := &entity.PostDetail{Post: *post}
	if owner, err := uc.users.GetByID(ctx, post.UserID); err == nil {
		detail.Owner = owner
	} else if !errors.Is(err, repository.ErrNotFound) {
		uc.logger.Warn("failed to resolve post owner", zap.String("post_id", id), zap.Error(err))
	}
	if category, err := uc.categories.GetByID(ctx, post.CategoryID); err == nil {
		detail.Category = category
	} else if !errors.Is(err, repository.ErrNotFound) {
		uc.logger.Warn("failed to resolve post category", zap.String("post_id", id), zap.Error(err))
	}

	if uc.cacheRepo != nil {
		if data, marshalErr := json.Marshal(detail); marshalErr == nil {
			if setErr := uc.cacheRepo.Set(ctx, postCacheKey(id), data, postCacheTTL); setErr != nil {
				uc.logger.Warn("failed to cache post detail", zap.String("post_id", id), zap.Error(setErr))
			}
		}
	}
	return detail, nil
}

func (uc *PostUsecase) UpdatePost(ctx context.Context, identity *entity.Identity, id string, input UpdatePostInput, newFiles []ImageUpload) (*entity.Post, error) {
	// existence before ownership: a missing post is 404 even for strangers
	post, err := uc.posts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("PostUsecase.UpdatePost: %w", err)
	}
	if !auth.Allowed(identity.Role, auth.ActionUpdatePost) {
		uc.logger.Warn("update post denied by role table",
			zap.String("user_id", identity.UserID), zap.String("role", identity.Role))
		return nil, ErrForbidden
	}
	if err := uc.authorizeOwnership(identity, post); err != nil {
		return nil, err
	}
	if err := validateUpdateInput(input); err != nil {
		return nil, err
	}
	if len(newFiles) > maxImagesPerPost {
		return nil, ErrTooManyImages
	}

	if len(newFiles) > 0 {
		newImages, err := uc.uploadImages(ctx, newFiles)
		if err != nil {
			return nil, err
		}
		uc.deleteImages(ctx, post.Images)
		post.Images = newImages
	}

	if input.Title != nil {
		post.Title = *input.Title
	}
	if input.Description != nil {
		post.Description = *input.Description
	}
	if input.Price != nil {
		post.Price = *input.Price
	}
	if input.Location != nil {
		post.Location = *input.Location
	}
	if input.Area != nil {
		post.Area = *input.Area
	}
	if input.CategoryID != nil {
		post.CategoryID = *input.CategoryID
	}
	if input.ServiceBookingID != nil {
		post.ServiceBookingID = *input.ServiceBookingID
	}
	post.UpdatedAt = time.Now()

	if err := uc.posts.Update(ctx, post); err != nil {
		uc.logger.Error("failed to update post in repository", zap.Error(err), zap.String("post_id", id))
		return nil, fmt.Errorf("PostUsecase.UpdatePost: %w", err)
	}

	uc.invalidateCache(ctx, id)
	if uc.publisher != nil {
		if errPub := uc.publisher.PublishPostUpdated(ctx, post); errPub != nil {
			uc.logger.Warn("failed to publish post.updated event", zap.Error(errPub), zap.String("post_id", id))
		}
	}
	return post, nil
}

func (uc *PostUsecase) DeletePost(ctx context.Context, identity *entity.Identity, id string) error {
	post, err := uc.posts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPostNotFound
		}
		return fmt.Errorf("PostUsecase.DeletePost: %w", err)
	}
	if !auth.Allowed(identity.Role, auth.ActionDeletePost) {
		uc.logger.Warn("delete post denied by role table",
			zap.String("user_id", identity.UserID), zap.String("role", identity.Role))
		return ErrForbidden
	}
	if err := uc.authorizeOwnership(identity, post); err != nil {
		return err
	}

	if err := uc.posts.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPostNotFound
		}
		uc.logger.Error("failed to delete post from repository", zap.Error(err), zap.String("post_id", id))
		return fmt.Errorf("PostUsecase.DeletePost: %w", err)
	}

	// the post record is authoritative; blob cleanup is best effort
	uc.deleteImages(ctx, post.Images)
	uc.invalidateCache(ctx, id)

	if uc.publisher != nil {
		if errPub := uc.publisher.PublishPostDeleted(ctx, id); errPub != nil {
			uc.logger.Warn("failed to publish post.deleted event", zap.Error(errPub), zap.String("post_id", id))
		}
	}
	return nil
}

func (uc *PostUsecase) authorizeOwnership(identity *entity.Identity, post *entity.Post) error {
	if auth.IsAdmin(identity.Role) || post.UserID == identity.UserID {
		return nil
	}
	uc.logger.Warn("ownership check failed",
		zap.String("post_id", post.ID),
		zap.String("owner_id", post.UserID),
		zap.String("user_id", identity.UserID))
	return ErrForbidden
}

// uploadImages stores every file in order. If one upload fails the ones
// already stored are removed so no orphaned objects are left behind.
func (uc *PostUsecase) uploadImages(ctx context.Context, files []ImageUpload) ([]entity.ImageRef, error) {
	images := make([]entity.ImageRef, 0, len(files))
	for _, f := range files {
		ref, err := uc.images.Upload(ctx, f.FileName, f.Data)
		if err != nil {
			uc.logger.Error("image upload failed", zap.String("file", f.FileName), zap.Error(err))
			uc.deleteImages(ctx, images)
			return nil, fmt.Errorf("uploading image %q: %w", f.FileName, err)
		}
		images = append(images, ref)
	}
	return images, nil
}

// deleteImages issues all deletions concurrently and waits for every one
// to finish. Failures are logged and never fail the caller.
func (uc *PostUsecase) deleteImages(ctx context.Context, images []entity.ImageRef) {
	if len(images) == 0 {
		return
	}
	var wg sync.WaitGroup
	for _, img := range images {
		wg.Add(1)
		go func(ref entity.ImageRef) {
			defer wg.Done()
			if err := uc.images.Delete(ctx, ref.ID); err != nil {
				uc.logger.Warn("failed to delete image from storage",
					zap.String("image_id", ref.ID), zap.Error(err))
			}
		}(img)
	}
	wg.Wait()
}

func (uc *PostUsecase) invalidateCache(ctx context.Context, postID string) {
	if uc.cacheRepo == nil {
		return
	}
	key := postCacheKey(postID)
	if err := uc.cacheRepo.Delete(ctx, key); err != nil {
		uc.logger.Warn("failed to invalidate post cache", zap.String("key", key), zap.Error(err))
	}
}
