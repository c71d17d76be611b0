package service_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/posthub/posthub/internal/domain"
	"github.com/posthub/posthub/internal/media"
	"github.com/posthub/posthub/internal/repository/postgres"
	"github.com/posthub/posthub/internal/service"
	"github.com/posthub/posthub/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type postFixture struct {
	db      *testutil.TestDB
	service *service.PostService
	media   *media.FileStore
}

func newPostFixture(t *testing.T) *postFixture {
	t.Helper()
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	store := testutil.NewMediaStore(t)
	return &postFixture{
		db:      testDB,
		service: service.NewPostService(repos.Post, store, nil),
		media:   store,
	}
}

func upload(name, body string) service.Upload {
	return service.Upload{
		Filename:    name,
		ContentType: "image/png",
		Size:        int64(len(body)),
		Data:        bytes.NewReader([]byte(body)),
	}
}

type brokenReader struct{}

func (brokenReader) Read([]byte) (int, error) {
	return 0, errors.New("payload unreadable")
}

func payloadExists(t *testing.T, store *media.FileStore, ref string) bool {
	t.Helper()
	_, err := os.Stat(store.Path(ref))
	return err == nil
}

func TestPostService_Create(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()

	owner, _ := testutil.NewUserBuilder().Build(t, f.db.DB)

	post, err := f.service.Create(ctx, owner.ID, service.CreatePostInput{
		Title:  "T",
		Text:   "B",
		Images: []service.Upload{upload("one.png", "payload-1"), upload("two.png", "payload-2")},
	})
	require.NoError(t, err)

	assert.Equal(t, owner.ID, post.AuthorID)
	assert.Equal(t, "T", post.Title)
	assert.Equal(t, "B", post.Text)
	assert.Equal(t, 0, post.LikesCount)
	require.Len(t, post.Images, 2)
	for _, img := range post.Images {
		assert.True(t, payloadExists(t, f.media, img.PayloadRef))
	}
}

func TestPostService_Create_UnreadablePayload(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()

	owner, _ := testutil.NewUserBuilder().Build(t, f.db.DB)

	_, err := f.service.Create(ctx, owner.ID, service.CreatePostInput{
		Title: "T",
		Text:  "B",
		Images: []service.Upload{
			upload("ok.png", "payload-1"),
			{Filename: "broken.png", ContentType: "image/png", Data: brokenReader{}},
		},
	})
	require.Error(t, err)

	// No partial post is left behind.
	var posts int64
	require.NoError(t, f.db.DB.Model(&domain.Post{}).Count(&posts).Error)
	assert.Zero(t, posts)

	var images int64
	require.NoError(t, f.db.DB.Model(&domain.PostImage{}).Count(&images).Error)
	assert.Zero(t, images)
}

func TestPostService_Update_ImageSetRevision(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()

	owner, _ := testutil.NewUserBuilder().Build(t, f.db.DB)

	post, err := f.service.Create(ctx, owner.ID, service.CreatePostInput{
		Title:  "T",
		Text:   "B",
		Images: []service.Upload{upload("one.png", "payload-1"), upload("two.png", "payload-2")},
	})
	require.NoError(t, err)
	require.Len(t, post.Images, 2)

	removed := post.Images[0]
	kept := post.Images[1]

	updated, err := f.service.Update(ctx, owner.ID, post.ID, service.UpdatePostInput{
		AddImages:      []service.Upload{upload("three.png", "payload-3")},
		RemoveImageIDs: []uuid.UUID{removed.ID},
	})
	require.NoError(t, err)

	// One original plus one new, text fields untouched.
	require.Len(t, updated.Images, 2)
	assert.Equal(t, "T", updated.Title)
	assert.Equal(t, "B", updated.Text)

	ids := map[uuid.UUID]bool{}
	for _, img := range updated.Images {
		ids[img.ID] = true
	}
	assert.True(t, ids[kept.ID])
	assert.False(t, ids[removed.ID])

	assert.False(t, payloadExists(t, f.media, removed.PayloadRef))
	assert.True(t, payloadExists(t, f.media, kept.PayloadRef))
}

func TestPostService_Update_TextPatch(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()

	owner, _ := testutil.NewUserBuilder().Build(t, f.db.DB)
	post := testutil.NewPostBuilder(owner).WithTitle("old").WithText("body").Build(t, f.db.DB)

	newTitle := "new"
	updated, err := f.service.Update(ctx, owner.ID, post.ID, service.UpdatePostInput{
		Title: &newTitle,
	})
	require.NoError(t, err)
	assert.Equal(t, "new", updated.Title)
	assert.Equal(t, "body", updated.Text)
}

func TestPostService_Update_UnknownRemoveIDsIgnored(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()

	owner, _ := testutil.NewUserBuilder().Build(t, f.db.DB)
	post := testutil.NewPostBuilder(owner).Build(t, f.db.DB)

	updated, err := f.service.Update(ctx, owner.ID, post.ID, service.UpdatePostInput{
		RemoveImageIDs: []uuid.UUID{uuid.New(), uuid.New()},
	})
	require.NoError(t, err)
	assert.Empty(t, updated.Images)
}

func TestPostService_Update_Forbidden(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()

	owner, _ := testutil.NewUserBuilder().Build(t, f.db.DB)
	stranger, _ := testutil.NewUserBuilder().Build(t, f.db.DB)
	post := testutil.NewPostBuilder(owner).Build(t, f.db.DB)

	title := "hijacked"
	_, err := f.service.Update(ctx, stranger.ID, post.ID, service.UpdatePostInput{Title: &title})
	assert.ErrorIs(t, err, service.ErrForbidden)

	got, err := f.service.Get(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, post.Title, got.Title)
}

func TestPostService_Delete(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()

	owner, _ := testutil.NewUserBuilder().Build(t, f.db.DB)
	liker, _ := testutil.NewUserBuilder().Build(t, f.db.DB)

	post, err := f.service.Create(ctx, owner.ID, service.CreatePostInput{
		Title:  "T",
		Text:   "B",
		Images: []service.Upload{upload("one.png", "payload-1")},
	})
	require.NoError(t, err)
	require.NoError(t, f.service.Like(ctx, liker.ID, post.ID))

	ref := post.Images[0].PayloadRef

	require.NoError(t, f.service.Delete(ctx, owner.ID, post.ID))

	_, err = f.service.Get(ctx, post.ID)
	assert.ErrorIs(t, err, service.ErrPostNotFound)

	// Images and like memberships are gone with the post.
	var images, likes int64
	require.NoError(t, f.db.DB.Model(&domain.PostImage{}).Where("post_id = ?", post.ID).Count(&images).Error)
	require.NoError(t, f.db.DB.Model(&domain.PostLike{}).Where("post_id = ?", post.ID).Count(&likes).Error)
	assert.Zero(t, images)
	assert.Zero(t, likes)

	assert.False(t, payloadExists(t, f.media, ref))
}

func TestPostService_Delete_Forbidden(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()

	owner, _ := testutil.NewUserBuilder().Build(t, f.db.DB)
	stranger, _ := testutil.NewUserBuilder().Build(t, f.db.DB)

	post, err := f.service.Create(ctx, owner.ID, service.CreatePostInput{
		Title:  "T",
		Text:   "B",
		Images: []service.Upload{upload("one.png", "payload-1")},
	})
	require.NoError(t, err)
	require.NoError(t, f.service.Like(ctx, stranger.ID, post.ID))

	assert.ErrorIs(t, f.service.Delete(ctx, stranger.ID, post.ID), service.ErrForbidden)

	// Post survives with images and likes intact.
	got, err := f.service.Get(ctx, post.ID)
	require.NoError(t, err)
	assert.Len(t, got.Images, 1)
	assert.Equal(t, 1, got.LikesCount)
}

func TestPostService_Like_Idempotent(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()

	owner, _ := testutil.NewUserBuilder().Build(t, f.db.DB)
	liker, _ := testutil.NewUserBuilder().Build(t, f.db.DB)
	post := testutil.NewPostBuilder(owner).Build(t, f.db.DB)

	for i := 0; i < 5; i++ {
		require.NoError(t, f.service.Like(ctx, liker.ID, post.ID))
	}

	got, err := f.service.Get(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.LikesCount)

	var likes int64
	require.NoError(t, f.db.DB.Model(&domain.PostLike{}).Where("post_id = ?", post.ID).Count(&likes).Error)
	assert.EqualValues(t, 1, likes)
}

func TestPostService_LikeUnlike_RestoresBaseline(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()

	owner, _ := testutil.NewUserBuilder().Build(t, f.db.DB)
	liker, _ := testutil.NewUserBuilder().Build(t, f.db.DB)
	other, _ := testutil.NewUserBuilder().Build(t, f.db.DB)
	post := testutil.NewPostBuilder(owner).LikedBy(other.ID).Build(t, f.db.DB)

	for i := 0; i < 3; i++ {
		require.NoError(t, f.service.Like(ctx, liker.ID, post.ID))
		require.NoError(t, f.service.Unlike(ctx, liker.ID, post.ID))
	}

	got, err := f.service.Get(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.LikesCount)
}

func TestPostService_Unlike_AbsentIsNoop(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()

	owner, _ := testutil.NewUserBuilder().Build(t, f.db.DB)
	user, _ := testutil.NewUserBuilder().Build(t, f.db.DB)
	post := testutil.NewPostBuilder(owner).Build(t, f.db.DB)

	// Removing an absent membership never drives the count negative.
	for i := 0; i < 3; i++ {
		require.NoError(t, f.service.Unlike(ctx, user.ID, post.ID))
	}

	got, err := f.service.Get(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.LikesCount)
}

func TestPostService_Like_PostGone(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().Build(t, f.db.DB)

	assert.ErrorIs(t, f.service.Like(ctx, user.ID, uuid.New()), service.ErrPostNotFound)
	assert.ErrorIs(t, f.service.Unlike(ctx, user.ID, uuid.New()), service.ErrPostNotFound)
}

func TestPostService_Like_ConcurrentSameUser(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()

	owner, _ := testutil.NewUserBuilder().Build(t, f.db.DB)
	liker, _ := testutil.NewUserBuilder().Build(t, f.db.DB)
	post := testutil.NewPostBuilder(owner).Build(t, f.db.DB)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, f.service.Like(ctx, liker.ID, post.ID))
		}()
	}
	wg.Wait()

	got, err := f.service.Get(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.LikesCount)
}

func TestPostService_CountMatchesMembership(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()

	owner, _ := testutil.NewUserBuilder().Build(t, f.db.DB)
	post := testutil.NewPostBuilder(owner).Build(t, f.db.DB)

	var users []uuid.UUID
	for i := 0; i < 6; i++ {
		u, _ := testutil.NewUserBuilder().Build(t, f.db.DB)
		users = append(users, u.ID)
	}

	// Everyone likes concurrently, then half unlike concurrently.
	var wg sync.WaitGroup
	for _, id := range users {
		wg.Add(1)
		go func(id uuid.UUID) {
			defer wg.Done()
			assert.NoError(t, f.service.Like(ctx, id, post.ID))
		}(id)
	}
	wg.Wait()

	for _, id := range users[:3] {
		wg.Add(1)
		go func(id uuid.UUID) {
			defer wg.Done()
			assert.NoError(t, f.service.Unlike(ctx, id, post.ID))
		}(id)
	}
	wg.Wait()

	got, err := f.service.Get(ctx, post.ID)
	require.NoError(t, err)

	var likes int64
	require.NoError(t, f.db.DB.Model(&domain.PostLike{}).Where("post_id = ?", post.ID).Count(&likes).Error)
	assert.EqualValues(t, likes, got.LikesCount)
	assert.Equal(t, 3, got.LikesCount)
}
