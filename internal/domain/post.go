package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Post struct {
	ID         uuid.UUID   `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	AuthorID   uuid.UUID   `json:"authorId" gorm:"type:uuid;index;not null"`
	Author     *User       `json:"author,omitempty" gorm:"foreignKey:AuthorID"`
	Title      string      `json:"title" gorm:"not null"`
	Text       string      `json:"text" gorm:"type:text;not null"`
	LikesCount int         `json:"likesCount" gorm:"not null;default:0"`
	Images     []PostImage `json:"images" gorm:"foreignKey:PostID"`
	CreatedAt  time.Time   `json:"createdAt"`
	UpdatedAt  time.Time   `json:"updatedAt"`
}

type PostImage struct {
	ID         uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	PostID     uuid.UUID      `json:"postId" gorm:"type:uuid;index;not null"`
	PayloadRef string         `json:"-" gorm:"not null"`
	Meta       datatypes.JSON `json:"meta,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
}

// PostLike records that a user currently likes a post. The composite unique
// index makes concurrent duplicate likes collapse into a single membership.
type PostLike struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	PostID    uuid.UUID `json:"postId" gorm:"type:uuid;not null;uniqueIndex:idx_post_like_member"`
	UserID    uuid.UUID `json:"userId" gorm:"type:uuid;not null;uniqueIndex:idx_post_like_member"`
	CreatedAt time.Time `json:"createdAt"`
}

// ImageMeta is the shape stored in PostImage.Meta.
type ImageMeta struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}
