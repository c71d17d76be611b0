package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/posthub/posthub/internal/domain"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserBuilder creates test users with a builder pattern
type UserBuilder struct {
	username string
	email    string
	password string
}

// NewUserBuilder creates a new UserBuilder with default values
func NewUserBuilder() *UserBuilder {
	suffix := uuid.New().String()[:8]
	return &UserBuilder{
		username: fmt.Sprintf("testuser_%s", suffix),
		email:    fmt.Sprintf("testuser_%s@example.com", suffix),
		password: "testpassword123",
	}
}

func (b *UserBuilder) WithUsername(username string) *UserBuilder {
	b.username = username
	return b
}

func (b *UserBuilder) WithEmail(email string) *UserBuilder {
	b.email = email
	return b
}

func (b *UserBuilder) WithPassword(password string) *UserBuilder {
	b.password = password
	return b
}

// Build creates the user in the database and returns the user with the raw password
func (b *UserBuilder) Build(t *testing.T, db *gorm.DB) (*domain.User, string) {
	t.Helper()

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(b.password), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &domain.User{
		ID:           uuid.New(),
		Username:     b.username,
		Email:        b.email,
		PasswordHash: string(hashedPassword),
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user, b.password
}

// TokenPairResponse matches the API auth response
type TokenPairResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// BuildAndAuthenticate creates a user in the database, logs in through the
// API and returns the user with their token pair
func (b *UserBuilder) BuildAndAuthenticate(t *testing.T, ts *TestServer) (*domain.User, *TokenPairResponse) {
	t.Helper()

	user, password := b.Build(t, ts.DB.DB)

	reqBody := map[string]string{
		"email":    user.Email,
		"password": password,
	}
	body, _ := json.Marshal(reqBody)

	resp, err := http.Post(ts.APIURL("/auth/login"), "application/json", bytes.NewBuffer(body))
	if err != nil {
		t.Fatalf("failed to login user: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status code: %d", resp.StatusCode)
	}

	var tokens TokenPairResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokens); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	return user, &tokens
}

// PostBuilder creates test posts with a builder pattern
type PostBuilder struct {
	author  *domain.User
	title   string
	text    string
	refs    []string
	likedBy []uuid.UUID
}

// NewPostBuilder creates a new PostBuilder with default values
func NewPostBuilder(author *domain.User) *PostBuilder {
	return &PostBuilder{
		author: author,
		title:  "Test post",
		text:   "Test post body",
	}
}

func (b *PostBuilder) WithTitle(title string) *PostBuilder {
	b.title = title
	return b
}

func (b *PostBuilder) WithText(text string) *PostBuilder {
	b.text = text
	return b
}

// WithImageRef attaches an image row pointing at the given payload reference
func (b *PostBuilder) WithImageRef(ref string) *PostBuilder {
	b.refs = append(b.refs, ref)
	return b
}

// LikedBy records an existing like membership for the given user
func (b *PostBuilder) LikedBy(userID uuid.UUID) *PostBuilder {
	b.likedBy = append(b.likedBy, userID)
	return b
}

// Build creates the post with its images and likes in the database
func (b *PostBuilder) Build(t *testing.T, db *gorm.DB) *domain.Post {
	t.Helper()

	post := &domain.Post{
		ID:         uuid.New(),
		AuthorID:   b.author.ID,
		Title:      b.title,
		Text:       b.text,
		LikesCount: len(b.likedBy),
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	for _, ref := range b.refs {
		post.Images = append(post.Images, domain.PostImage{
			ID:         uuid.New(),
			PayloadRef: ref,
		})
	}

	if err := db.Create(post).Error; err != nil {
		t.Fatalf("failed to create post: %v", err)
	}

	for _, userID := range b.likedBy {
		like := &domain.PostLike{PostID: post.ID, UserID: userID}
		if err := db.Create(like).Error; err != nil {
			t.Fatalf("failed to create like: %v", err)
		}
	}

	return post
}
