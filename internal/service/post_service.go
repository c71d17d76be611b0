package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"

	"github.com/google/uuid"
	"github.com/posthub/posthub/internal/domain"
	"github.com/posthub/posthub/internal/media"
	"github.com/posthub/posthub/internal/repository"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrPostNotFound = errors.New("post not found")
	ErrForbidden    = errors.New("not the owner of this post")
)

// EngagementNotifier receives the committed likes count after every
// membership transition. Implemented by the realtime hub.
type EngagementNotifier interface {
	EngagementChanged(postID uuid.UUID, likesCount int)
}

// Upload is an incoming image payload. The bytes are opaque to the service.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Data        io.Reader
}

type PostService struct {
	postRepo repository.PostRepository
	payloads media.Store
	guard    OwnershipGuard
	notifier EngagementNotifier
}

func NewPostService(postRepo repository.PostRepository, payloads media.Store, notifier EngagementNotifier) *PostService {
	return &PostService{
		postRepo: postRepo,
		payloads: payloads,
		notifier: notifier,
	}
}

type CreatePostInput struct {
	Title  string
	Text   string
	Images []Upload
}

type UpdatePostInput struct {
	Title          *string
	Text           *string
	AddImages      []Upload
	RemoveImageIDs []uuid.UUID
}

// Create stores the image payloads first and then writes the post with its
// images in one transaction. If the write fails, the stored payloads are
// removed so no orphan files are left behind.
func (s *PostService) Create(ctx context.Context, ownerID uuid.UUID, input CreatePostInput) (*domain.Post, error) {
	images, err := s.storeUploads(input.Images)
	if err != nil {
		return nil, err
	}

	post := &domain.Post{
		ID:       uuid.New(),
		AuthorID: ownerID,
		Title:    input.Title,
		Text:     input.Text,
		Images:   images,
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		s.deletePayloads(images)
		return nil, err
	}

	return s.Get(ctx, post.ID)
}

func (s *PostService) Get(ctx context.Context, postID uuid.UUID) (*domain.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return post, nil
}

func (s *PostService) List(ctx context.Context) ([]*domain.Post, error) {
	return s.postRepo.List(ctx)
}

// Update revises an owned post. Text fields, image removals and image
// additions are applied as one atomic unit; payload files of removed images
// are only deleted after the transaction commits.
func (s *PostService) Update(ctx context.Context, requesterID, postID uuid.UUID, input UpdatePostInput) (*domain.Post, error) {
	post, err := s.Get(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !s.guard.CanModify(requesterID, post.AuthorID) {
		return nil, ErrForbidden
	}

	newImages, err := s.storeUploads(input.AddImages)
	if err != nil {
		return nil, err
	}

	updated, removedRefs, err := s.postRepo.Update(ctx, postID, repository.PostUpdate{
		Title:          input.Title,
		Text:           input.Text,
		AddImages:      newImages,
		RemoveImageIDs: input.RemoveImageIDs,
	})
	if err != nil {
		s.deletePayloads(newImages)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	s.deleteRefs(removedRefs)
	return updated, nil
}

// Delete removes an owned post together with its images and likes, then
// releases the image payloads.
func (s *PostService) Delete(ctx context.Context, requesterID, postID uuid.UUID) error {
	post, err := s.Get(ctx, postID)
	if err != nil {
		return err
	}
	if !s.guard.CanModify(requesterID, post.AuthorID) {
		return ErrForbidden
	}

	removedRefs, err := s.postRepo.Delete(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPostNotFound
		}
		return err
	}

	s.deleteRefs(removedRefs)
	return nil
}

// Like adds the requester to the post's like set. Liking a post twice is a
// no-op, not an error.
func (s *PostService) Like(ctx context.Context, requesterID, postID uuid.UUID) error {
	res, err := s.postRepo.Like(ctx, postID, requesterID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPostNotFound
		}
		return err
	}

	if res.Changed && s.notifier != nil {
		s.notifier.EngagementChanged(postID, res.LikesCount)
	}
	return nil
}

func (s *PostService) Unlike(ctx context.Context, requesterID, postID uuid.UUID) error {
	res, err := s.postRepo.Unlike(ctx, postID, requesterID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPostNotFound
		}
		return err
	}

	if res.Changed && s.notifier != nil {
		s.notifier.EngagementChanged(postID, res.LikesCount)
	}
	return nil
}

func (s *PostService) storeUploads(uploads []Upload) ([]domain.PostImage, error) {
	var images []domain.PostImage
	for _, up := range uploads {
		ref, err := s.payloads.Save(up.Data, up.Filename)
		if err != nil {
			s.deletePayloads(images)
			return nil, err
		}

		meta, _ := json.Marshal(domain.ImageMeta{
			Filename:    up.Filename,
			ContentType: up.ContentType,
			Size:        up.Size,
		})

		images = append(images, domain.PostImage{
			ID:         uuid.New(),
			PayloadRef: ref,
			Meta:       datatypes.JSON(meta),
		})
	}
	return images, nil
}

func (s *PostService) deletePayloads(images []domain.PostImage) {
	for _, img := range images {
		if err := s.payloads.Delete(img.PayloadRef); err != nil {
			log.Printf("ERROR [post_service] failed to delete payload %s: %v", img.PayloadRef, err)
		}
	}
}

func (s *PostService) deleteRefs(refs []string) {
	for _, ref := range refs {
		if err := s.payloads.Delete(ref); err != nil {
			log.Printf("ERROR [post_service] failed to delete payload %s: %v", ref, err)
		}
	}
}
