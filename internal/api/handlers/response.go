package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/posthub/posthub/internal/api/respond"
	"github.com/posthub/posthub/internal/domain"
	"github.com/posthub/posthub/internal/service"
)

type UserResponse struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type AuthorResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type PostImageResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type PostResponse struct {
	ID         string              `json:"id"`
	Author     AuthorResponse      `json:"author"`
	Title      string              `json:"title"`
	Text       string              `json:"text"`
	LikesCount int                 `json:"likesCount"`
	Images     []PostImageResponse `json:"images"`
	CreatedAt  time.Time           `json:"createdAt"`
	UpdatedAt  time.Time           `json:"updatedAt"`
}

func newUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID.String(),
		Username:  user.Username,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	}
}

func newPostResponse(post *domain.Post) PostResponse {
	resp := PostResponse{
		ID:         post.ID.String(),
		Title:      post.Title,
		Text:       post.Text,
		LikesCount: post.LikesCount,
		Images:     []PostImageResponse{},
		CreatedAt:  post.CreatedAt,
		UpdatedAt:  post.UpdatedAt,
	}
	if post.Author != nil {
		resp.Author = AuthorResponse{
			ID:       post.Author.ID.String(),
			Username: post.Author.Username,
		}
	}
	for _, img := range post.Images {
		resp.Images = append(resp.Images, PostImageResponse{
			ID:  img.ID.String(),
			URL: "/media/" + img.PayloadRef,
		})
	}
	return resp
}

// serviceError maps the service failure taxonomy onto the boundary envelope.
// Anything unclassified becomes an opaque 500.
func serviceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrUserExists):
		respond.Error(w, r, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		respond.Error(w, r, http.StatusUnauthorized, "Unauthorized", "Invalid email or password")
	case errors.Is(err, service.ErrInvalidToken):
		respond.Error(w, r, http.StatusBadRequest, "Bad Request", "Invalid or expired token")
	case errors.Is(err, service.ErrWrongPassword):
		respond.Error(w, r, http.StatusBadRequest, "Bad Request", err.Error())
	case errors.Is(err, service.ErrUserNotFound):
		respond.Error(w, r, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, service.ErrPostNotFound):
		respond.Error(w, r, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, service.ErrForbidden):
		respond.Error(w, r, http.StatusForbidden, "Forbidden", "You do not have permission to modify this post")
	default:
		log.Printf("ERROR [handlers] unexpected error: %v", err)
		respond.Error(w, r, http.StatusInternalServerError, "Internal Server Error", "internal server error")
	}
}
