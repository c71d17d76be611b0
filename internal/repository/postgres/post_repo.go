package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/posthub/posthub/internal/domain"
	"github.com/posthub/posthub/internal/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) *postRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *domain.Post) error {
	// gorm inserts the post and its images inside one transaction.
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *postRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Post, error) {
	var post domain.Post
	err := r.db.WithContext(ctx).
		Preload("Images").
		Preload("Author").
		First(&post, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) List(ctx context.Context) ([]*domain.Post, error) {
	var posts []*domain.Post
	err := r.db.WithContext(ctx).
		Preload("Images").
		Preload("Author").
		Order("created_at DESC").
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// Update revises the post's text fields and image set as one atomic unit. The
// post row is locked for the duration so concurrent revisions serialize.
// Remove ids that do not belong to this post are ignored.
func (r *postRepository) Update(ctx context.Context, postID uuid.UUID, upd repository.PostUpdate) (*domain.Post, []string, error) {
	var removedRefs []string

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post domain.Post
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&post, "id = ?", postID).Error; err != nil {
			return err
		}

		updates := map[string]interface{}{}
		if upd.Title != nil {
			updates["title"] = *upd.Title
		}
		if upd.Text != nil {
			updates["text"] = *upd.Text
		}
		if len(updates) > 0 {
			if err := tx.Model(&post).Updates(updates).Error; err != nil {
				return err
			}
		}

		if len(upd.RemoveImageIDs) > 0 {
			var images []domain.PostImage
			if err := tx.Where("post_id = ? AND id IN ?", postID, upd.RemoveImageIDs).
				Find(&images).Error; err != nil {
				return err
			}
			for _, img := range images {
				removedRefs = append(removedRefs, img.PayloadRef)
			}
			if len(images) > 0 {
				if err := tx.Where("post_id = ? AND id IN ?", postID, upd.RemoveImageIDs).
					Delete(&domain.PostImage{}).Error; err != nil {
					return err
				}
			}
		}

		for i := range upd.AddImages {
			upd.AddImages[i].PostID = postID
		}
		if len(upd.AddImages) > 0 {
			if err := tx.Create(&upd.AddImages).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	post, err := r.GetByID(ctx, postID)
	if err != nil {
		return nil, nil, err
	}
	return post, removedRefs, nil
}

// Delete removes the post together with its likes and images.
func (r *postRepository) Delete(ctx context.Context, postID uuid.UUID) ([]string, error) {
	var removedRefs []string

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post domain.Post
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&post, "id = ?", postID).Error; err != nil {
			return err
		}

		var images []domain.PostImage
		if err := tx.Where("post_id = ?", postID).Find(&images).Error; err != nil {
			return err
		}
		for _, img := range images {
			removedRefs = append(removedRefs, img.PayloadRef)
		}

		if err := tx.Where("post_id = ?", postID).Delete(&domain.PostLike{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", postID).Delete(&domain.PostImage{}).Error; err != nil {
			return err
		}
		return tx.Delete(&post).Error
	})
	if err != nil {
		return nil, err
	}
	return removedRefs, nil
}

// Like inserts the membership and bumps the counter in the same transaction.
// The insert is conflict-tolerant, so a like that is already present leaves
// both the set and the counter untouched.
func (r *postRepository) Like(ctx context.Context, postID, userID uuid.UUID) (repository.LikeResult, error) {
	var result repository.LikeResult

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post domain.Post
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&post, "id = ?", postID).Error; err != nil {
			return err
		}

		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "post_id"}, {Name: "user_id"}},
			DoNothing: true,
		}).Create(&domain.PostLike{PostID: postID, UserID: userID})
		if res.Error != nil {
			return res.Error
		}

		result.Changed = res.RowsAffected == 1
		result.LikesCount = post.LikesCount
		if result.Changed {
			result.LikesCount++
			return tx.Model(&post).
				UpdateColumn("likes_count", gorm.Expr("likes_count + 1")).Error
		}
		return nil
	})
	if err != nil {
		return repository.LikeResult{}, err
	}
	return result, nil
}

// Unlike removes the membership if present. The counter only moves on an
// actual removal, so it can never go negative.
func (r *postRepository) Unlike(ctx context.Context, postID, userID uuid.UUID) (repository.LikeResult, error) {
	var result repository.LikeResult

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post domain.Post
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&post, "id = ?", postID).Error; err != nil {
			return err
		}

		res := tx.Where("post_id = ? AND user_id = ?", postID, userID).
			Delete(&domain.PostLike{})
		if res.Error != nil {
			return res.Error
		}

		result.Changed = res.RowsAffected == 1
		result.LikesCount = post.LikesCount
		if result.Changed {
			result.LikesCount--
			return tx.Model(&post).
				UpdateColumn("likes_count", gorm.Expr("likes_count - 1")).Error
		}
		return nil
	})
	if err != nil {
		return repository.LikeResult{}, err
	}
	return result, nil
}

func (r *postRepository) CountLikes(ctx context.Context, postID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.PostLike{}).
		Where("post_id = ?", postID).
		Count(&count).Error
	return count, err
}
