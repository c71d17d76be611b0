package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/posthub/posthub/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
}

// RevocationRepository is the append-only registry of revoked refresh token
// identifiers.
type RevocationRepository interface {
	Add(ctx context.Context, rec *domain.RevokedToken) error
	Contains(ctx context.Context, jti uuid.UUID) (bool, error)
}

// PostUpdate describes a partial revision of a post. Nil text fields are left
// untouched. All parts are applied in a single transaction.
type PostUpdate struct {
	Title          *string
	Text           *string
	AddImages      []domain.PostImage
	RemoveImageIDs []uuid.UUID
}

// LikeResult reports the outcome of a like/unlike call. Changed is false when
// the membership was already in the requested state.
type LikeResult struct {
	Changed    bool
	LikesCount int
}

type PostRepository interface {
	Create(ctx context.Context, post *domain.Post) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Post, error)
	List(ctx context.Context) ([]*domain.Post, error)
	// Update applies upd atomically and returns the revised post along with
	// the payload references of any removed images.
	Update(ctx context.Context, postID uuid.UUID, upd PostUpdate) (*domain.Post, []string, error)
	// Delete removes the post with its images and likes and returns the
	// payload references of the deleted images.
	Delete(ctx context.Context, postID uuid.UUID) ([]string, error)
	Like(ctx context.Context, postID, userID uuid.UUID) (LikeResult, error)
	Unlike(ctx context.Context, postID, userID uuid.UUID) (LikeResult, error)
	CountLikes(ctx context.Context, postID uuid.UUID) (int64, error)
}

type Repositories struct {
	User       UserRepository
	Revocation RevocationRepository
	Post       PostRepository
}
