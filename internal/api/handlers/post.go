package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/posthub/posthub/internal/api/middleware"
	"github.com/posthub/posthub/internal/api/respond"
	"github.com/posthub/posthub/internal/service"
)

const maxUploadSize = 32 << 20 // 32 MB across all parts

type PostHandler struct {
	postService *service.PostService
}

func NewPostHandler(postService *service.PostService) *PostHandler {
	return &PostHandler{postService: postService}
}

func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	posts, err := h.postService.List(r.Context())
	if err != nil {
		serviceError(w, r, err)
		return
	}

	resp := make([]PostResponse, 0, len(posts))
	for _, post := range posts {
		resp = append(resp, newPostResponse(post))
	}
	respond.JSON(w, http.StatusOK, resp)
}

func (h *PostHandler) Get(w http.ResponseWriter, r *http.Request) {
	postID, err := uuid.Parse(chi.URLParam(r, "postID"))
	if err != nil {
		respond.Error(w, r, http.StatusBadRequest, "Bad Request", "Invalid post id")
		return
	}

	post, err := h.postService.Get(r.Context(), postID)
	if err != nil {
		serviceError(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, newPostResponse(post))
}

func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		respond.Error(w, r, http.StatusUnauthorized, "Unauthorized", "User is not authenticated")
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "Bad Request", "Invalid multipart form")
		return
	}

	title := r.FormValue("title")
	text := r.FormValue("text")
	if title == "" || text == "" {
		respond.Error(w, r, http.StatusBadRequest, "Bad Request", "Title and text are required")
		return
	}

	uploads, closeUploads, err := formUploads(r, "images")
	if err != nil {
		respond.Error(w, r, http.StatusBadRequest, "Bad Request", "Unreadable image upload")
		return
	}
	defer closeUploads()

	post, err := h.postService.Create(r.Context(), userID, service.CreatePostInput{
		Title:  title,
		Text:   text,
		Images: uploads,
	})
	if err != nil {
		serviceError(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, newPostResponse(post))
}

func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		respond.Error(w, r, http.StatusUnauthorized, "Unauthorized", "User is not authenticated")
		return
	}

	postID, err := uuid.Parse(chi.URLParam(r, "postID"))
	if err != nil {
		respond.Error(w, r, http.StatusBadRequest, "Bad Request", "Invalid post id")
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "Bad Request", "Invalid multipart form")
		return
	}

	input := service.UpdatePostInput{}
	if values, ok := r.MultipartForm.Value["title"]; ok && len(values) > 0 {
		input.Title = &values[0]
	}
	if values, ok := r.MultipartForm.Value["text"]; ok && len(values) > 0 {
		input.Text = &values[0]
	}

	for _, raw := range r.MultipartForm.Value["delete_images"] {
		imageID, err := uuid.Parse(raw)
		if err != nil {
			respond.Error(w, r, http.StatusBadRequest, "Bad Request", "Invalid image id in delete_images")
			return
		}
		input.RemoveImageIDs = append(input.RemoveImageIDs, imageID)
	}

	uploads, closeUploads, err := formUploads(r, "images")
	if err != nil {
		respond.Error(w, r, http.StatusBadRequest, "Bad Request", "Unreadable image upload")
		return
	}
	defer closeUploads()
	input.AddImages = uploads

	post, err := h.postService.Update(r.Context(), userID, postID, input)
	if err != nil {
		serviceError(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, newPostResponse(post))
}

func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		respond.Error(w, r, http.StatusUnauthorized, "Unauthorized", "User is not authenticated")
		return
	}

	postID, err := uuid.Parse(chi.URLParam(r, "postID"))
	if err != nil {
		respond.Error(w, r, http.StatusBadRequest, "Bad Request", "Invalid post id")
		return
	}

	if err := h.postService.Delete(r.Context(), userID, postID); err != nil {
		serviceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *PostHandler) Like(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		respond.Error(w, r, http.StatusUnauthorized, "Unauthorized", "User is not authenticated")
		return
	}

	postID, err := uuid.Parse(chi.URLParam(r, "postID"))
	if err != nil {
		respond.Error(w, r, http.StatusBadRequest, "Bad Request", "Invalid post id")
		return
	}

	if err := h.postService.Like(r.Context(), userID, postID); err != nil {
		serviceError(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *PostHandler) Unlike(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		respond.Error(w, r, http.StatusUnauthorized, "Unauthorized", "User is not authenticated")
		return
	}

	postID, err := uuid.Parse(chi.URLParam(r, "postID"))
	if err != nil {
		respond.Error(w, r, http.StatusBadRequest, "Bad Request", "Invalid post id")
		return
	}

	if err := h.postService.Unlike(r.Context(), userID, postID); err != nil {
		serviceError(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, map[string]bool{"success": true})
}

// formUploads opens every file under the given multipart field. The returned
// closer must be called after the service has consumed the readers.
func formUploads(r *http.Request, field string) ([]service.Upload, func(), error) {
	if r.MultipartForm == nil {
		return nil, func() {}, nil
	}

	var uploads []service.Upload
	var closers []func() error

	closeAll := func() {
		for _, c := range closers {
			c()
		}
	}

	for _, fh := range r.MultipartForm.File[field] {
		f, err := fh.Open()
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		closers = append(closers, f.Close)
		uploads = append(uploads, service.Upload{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
			Data:        f,
		})
	}

	return uploads, closeAll, nil
}
