package http

import (
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/rentora/posts-service/internal/entity"
	"github.com/rentora/posts-service/internal/middleware"
	"github.com/rentora/posts-service/internal/platform/metrics"
	"github.com/rentora/posts-service/internal/usecase"
)

const maxMultipartMemory = 32 << 20 // 32 MiB

// PostService is what the handlers need from the post usecase.
type PostService interface {
	CreatePost(ctx context.Context, identity *entity.Identity, input usecase.CreatePostInput, files []usecase.ImageUpload) (*entity.Post, error)
	ListPosts(ctx context.Context, input usecase.ListPostsInput) (*usecase.ListPostsOutput, error)
	GetPostByID(ctx context.Context, id string) (*entity.PostDetail, error)
	UpdatePost(ctx context.Context, identity *entity.Identity, id string, input usecase.UpdatePostInput, newFiles []usecase.ImageUpload) (*entity.Post, error)
	DeletePost(ctx context.Context, identity *entity.Identity, id string) error
}

type PostHandler struct {
	service PostService
	metrics *metrics.MetricsManager
	logger  *zap.Logger
}

func NewPostHandler(service PostService, mm *metrics.MetricsManager, logger *zap.Logger) *PostHandler {
	return &PostHandler{service: service, metrics: mm, logger: logger}
}

func (h *PostHandler) HandleCreatePost(w http.ResponseWriter, r *http.Request) {
	defer h.observe("create_post", time.Now())

	identity := middleware.IdentityFromContext(r.Context())
	if identity == nil {
		respondMessage(w, http.StatusUnauthorized, "authentication required")
		return
	}

	input, files, ferrs, err := parseCreateForm(r)
	if err != nil {
		h.logger.Error("failed to parse multipart form", zap.Error(err))
		respondMessage(w, http.StatusBadRequest, "request body must be multipart/form-data")
		return
	}
	if len(ferrs) > 0 {
		respondJSON(w, http.StatusBadRequest, errorBody{Message: "invalid post payload", Errors: ferrs})
		return
	}

	post, err := h.service.CreatePost(r.Context(), identity, input, files)
	if err != nil {
		h.fail(w, "create_post", err)
		return
	}

	if h.metrics != nil {
		h.metrics.PostsCreatedTotal.Inc()
	}
	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "post created successfully",
		"post":    post,
	})
}

func (h *PostHandler) HandleListPosts(w http.ResponseWriter, r *http.Request) {
	defer h.observe("list_posts", time.Now())

	q := r.URL.Query()
	input := usecase.ListPostsInput{
		Title:      q.Get("title"),
		Location:   q.Get("location"),
		CategoryID: q.Get("categoryId"),
	}
	if page, err := strconv.Atoi(q.Get("page")); err == nil {
		input.Page = page
	}
	if limit, err := strconv.Atoi(q.Get("limit")); err == nil {
		input.PageSize = limit
	}

	out, err := h.service.ListPosts(r.Context(), input)
	if err != nil {
		h.fail(w, "list_posts", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"page":       out.Page,
		"totalPages": out.TotalPages,
		"totalPosts": out.TotalPosts,
		"posts":      out.Posts,
	})
}

func (h *PostHandler) HandleGetPostByID(w http.ResponseWriter, r *http.Request) {
	defer h.observe("get_post", time.Now())

	id := chi.URLParam(r, "id")
	detail, err := h.service.GetPostByID(r.Context(), id)
	if err != nil {
		h.fail(w, "get_post", err)
		return
	}
	respondJSON(w, http.StatusOK, detail)
}

func (h *PostHandler) HandleUpdatePost(w http.ResponseWriter, r *http.Request) {
	defer h.observe("update_post", time.Now())

	identity := middleware.IdentityFromContext(r.Context())
	if identity == nil {
		respondMessage(w, http.StatusUnauthorized, "authentication required")
		return
	}

	id := chi.URLParam(r, "id")
	input, files, ferrs, err := parseUpdateForm(r)
	if err != nil {
		h.logger.Error("failed to parse multipart form", zap.Error(err))
		respondMessage(w, http.StatusBadRequest, "request body must be multipart/form-data")
		return
	}
	if len(ferrs) > 0 {
		respondJSON(w, http.StatusBadRequest, errorBody{Message: "invalid post payload", Errors: ferrs})
		return
	}

	post, err := h.service.UpdatePost(r.Context(), identity, id, input, files)
	if err != nil {
		h.fail(w, "update_post", err)
		return
	}

	if h.metrics != nil {
		h.metrics.PostUpdatesTotal.Inc()
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "post updated successfully",
		"post":    post,
	})
}

func (h *PostHandler) HandleDeletePost(w http.ResponseWriter, r *http.Request) {
	defer h.observe("delete_post", time.Now())

	identity := middleware.IdentityFromContext(r.Context())
	if identity == nil {
		respondMessage(w, http.StatusUnauthorized, "authentication required")
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.service.DeletePost(r.Context(), identity, id); err != nil {
		h.fail(w, "delete_post", err)
		return
	}

	if h.metrics != nil {
		h.metrics.PostDeletesTotal.Inc()
	}
	respondMessage(w, http.StatusOK, "post and its images deleted successfully")
}

func (h *PostHandler) fail(w http.ResponseWriter, route string, err error) {
	status, body := statusForError(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", zap.String("route", route), zap.Error(err))
	}
	if h.metrics != nil {
		h.metrics.APIErrorsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
	}
	respondJSON(w, status, body)
}

func (h *PostHandler) observe(route string, start time.Time) {
	if h.metrics != nil {
		h.metrics.APILatency.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

func parseCreateForm(r *http.Request) (usecase.CreatePostInput, []usecase.ImageUpload, []usecase.FieldError, error) {
	var input usecase.CreatePostInput
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		return input, nil, nil, err
	}

	var ferrs []usecase.FieldError
	input.Title = r.FormValue("title")
	input.Description = r.FormValue("description")
	input.Location = r.FormValue("location")
	input.CategoryID = r.FormValue("categoryId")
	input.ServiceBookingID = r.FormValue("servicesBookingId")
	input.Price, ferrs = parseRequiredNumber(r.FormValue("price"), "price", ferrs)
	input.Area, ferrs = parseRequiredNumber(r.FormValue("area"), "area", ferrs)

	files, err := readImageFiles(r)
	if err != nil {
		return input, nil, nil, err
	}
	return input, files, ferrs, nil
}

func parseUpdateForm(r *http.Request) (usecase.UpdatePostInput, []usecase.ImageUpload, []usecase.FieldError, error) {
	var input usecase.UpdatePostInput
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		return input, nil, nil, err
	}

	// only fields actually present in the form are updated; a submitted
	// zero is a real value, not an omission
	var ferrs []usecase.FieldError
	if v, ok := formValue(r, "title"); ok {
		input.Title = &v
	}
	if v, ok := formValue(r, "description"); ok {
		input.Description = &v
	}
	if v, ok := formValue(r, "location"); ok {
		input.Location = &v
	}
	if v, ok := formValue(r, "categoryId"); ok {
		input.CategoryID = &v
	}
	if v, ok := formValue(r, "servicesBookingId"); ok {
		input.ServiceBookingID = &v
	}
	if v, ok := formValue(r, "price"); ok {
		var price float64
		price, ferrs = parseNumber(v, "price", ferrs)
		input.Price = &price
	}
	if v, ok := formValue(r, "area"); ok {
		var area float64
		area, ferrs = parseNumber(v, "area", ferrs)
		input.Area = &area
	}

	files, err := readImageFiles(r)
	if err != nil {
		return input, nil, nil, err
	}
	return input, files, ferrs, nil
}

func formValue(r *http.Request, key string) (string, bool) {
	if r.MultipartForm == nil {
		return "", false
	}
	values, ok := r.MultipartForm.Value[key]
	if !ok || len(values) == 0 {
		return "", false
	}
	return values[0], true
}

// parseRequiredNumber is the create-path variant: an absent field is an
// error, not an implicit zero.
func parseRequiredNumber(raw, field string, ferrs []usecase.FieldError) (float64, []usecase.FieldError) {
	if raw == "" {
		return 0, append(ferrs, usecase.FieldError{Field: field, Message: field + " is required"})
	}
	return parseNumber(raw, field, ferrs)
}

func parseNumber(raw, field string, ferrs []usecase.FieldError) (float64, []usecase.FieldError) {
	if raw == "" {
		return 0, ferrs
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, append(ferrs, usecase.FieldError{Field: field, Message: field + " must be a number"})
	}
	return value, ferrs
}

func readImageFiles(r *http.Request) ([]usecase.ImageUpload, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	headers := r.MultipartForm.File["images"]
	files := make([]usecase.ImageUpload, 0, len(headers))
	for _, fh := range headers {
		data, err := readMultipartFile(fh)
		if err != nil {
			return nil, err
		}
		files = append(files, usecase.ImageUpload{FileName: fh.Filename, Data: data})
	}
	return files, nil
}

func readMultipartFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
