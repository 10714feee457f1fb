package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vidstream/internal/domain"
	"vidstream/internal/repository"
)

// fakeVideoRepo is an in-memory VideoRepository covering what the
// service tests exercise.
type fakeVideoRepo struct {
	mu     sync.Mutex
	videos map[string]*domain.Video
}

func newFakeVideoRepo() *fakeVideoRepo {
	return &fakeVideoRepo{videos: map[string]*domain.Video{}}
}

func (f *fakeVideoRepo) Create(ctx context.Context, video *domain.Video) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if video.ID == "" {
		video.ID = uuid.New().String()
	}
	cp := *video
	f.videos[video.ID] = &cp
	return nil
}

func (f *fakeVideoRepo) GetByID(ctx context.Context, id string) (*domain.Video, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.videos[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *v
	return &cp, nil
}

func (f *fakeVideoRepo) List(ctx context.Context, filter domain.VideoFilter) ([]*domain.VideoWithOwner, int, error) {
	return []*domain.VideoWithOwner{}, 0, nil
}

func (f *fakeVideoRepo) update(id string, change func(*domain.Video)) (*domain.Video, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.videos[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	change(v)
	cp := *v
	return &cp, nil
}

func (f *fakeVideoRepo) UpdateFile(ctx context.Context, id string, file domain.FileRef) (*domain.Video, error) {
	return f.update(id, func(v *domain.Video) { v.VideoFile = file })
}

func (f *fakeVideoRepo) UpdateThumbnail(ctx context.Context, id string, thumbnail domain.FileRef) (*domain.Video, error) {
	return f.update(id, func(v *domain.Video) { v.Thumbnail = thumbnail })
}

func (f *fakeVideoRepo) UpdateTitle(ctx context.Context, id, title string) (*domain.Video, error) {
	return f.update(id, func(v *domain.Video) { v.Title = title })
}

func (f *fakeVideoRepo) UpdateDescription(ctx context.Context, id, description string) (*domain.Video, error) {
	return f.update(id, func(v *domain.Video) { v.Description = description })
}

func (f *fakeVideoRepo) TogglePublished(ctx context.Context, id string) (*domain.Video, error) {
	return f.update(id, func(v *domain.Video) { v.IsPublished = !v.IsPublished })
}

func (f *fakeVideoRepo) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.videos[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.videos, id)
	return nil
}

// fakeViewRepo counts recorded views in memory
type fakeViewRepo struct {
	mu    sync.Mutex
	views []*domain.View
}

func (f *fakeViewRepo) Create(ctx context.Context, view *domain.View) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.views = append(f.views, view)
	return nil
}

func (f *fakeViewRepo) ListWatchHistory(ctx context.Context, viewerID string, page, limit int) ([]*domain.VideoWithOwner, int, error) {
	return []*domain.VideoWithOwner{}, 0, nil
}

func (f *fakeViewRepo) ListVideoViewers(ctx context.Context, videoID string, page, limit int) ([]*domain.ViewerSummary, int, error) {
	return []*domain.ViewerSummary{}, 0, nil
}

func (f *fakeViewRepo) CountByVideo(ctx context.Context, videoID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, v := range f.views {
		if v.VideoID == videoID {
			count++
		}
	}
	return count, nil
}

// fakeDeduper marks viewer+video pairs in memory, optionally failing
type fakeDeduper struct {
	mu   sync.Mutex
	seen map[string]bool
	err  error
}

func newFakeDeduper() *fakeDeduper {
	return &fakeDeduper{seen: map[string]bool{}}
}

func (f *fakeDeduper) ShouldRecord(ctx context.Context, videoID, viewerID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	key := videoID + ":" + viewerID
	if f.seen[key] {
		return false, nil
	}
	f.seen[key] = true
	return true, nil
}

func newTestVideoService(t *testing.T) (VideoService, *fakeVideoRepo, *fakeViewRepo, *fakeDeduper) {
	t.Helper()

	videos := newFakeVideoRepo()
	views := &fakeViewRepo{}
	deduper := newFakeDeduper()

	return NewVideoService(videos, views, newFakeMediaStore(), deduper), videos, views, deduper
}

func seedVideo(t *testing.T, repo *fakeVideoRepo, id, ownerID string) *domain.Video {
	t.Helper()

	video := &domain.Video{
		ID:          id,
		OwnerID:     ownerID,
		Title:       "title",
		Description: "desc",
		VideoFile:   domain.FileRef{URL: "s3://b/v", Key: "videos/v"},
		Thumbnail:   domain.FileRef{URL: "s3://b/t", Key: "thumbnails/t"},
		IsPublished: true,
	}
	require.NoError(t, repo.Create(context.Background(), video))

	return video
}

func TestGet_CountsViewOncePerWindow(t *testing.T) {
	svc, videos, _, _ := newTestVideoService(t)
	seedVideo(t, videos, "vid-1", "owner-1")

	first, err := svc.Get(context.Background(), "vid-1", "viewer-1")
	require.NoError(t, err)
	assert.Equal(t, 1, first.ViewCount)

	// A repeat view inside the window is not counted again
	second, err := svc.Get(context.Background(), "vid-1", "viewer-1")
	require.NoError(t, err)
	assert.Equal(t, 1, second.ViewCount)

	// A different viewer is a fresh view
	third, err := svc.Get(context.Background(), "vid-1", "viewer-2")
	require.NoError(t, err)
	assert.Equal(t, 2, third.ViewCount)
}

func TestGet_DedupFailureDoesNotBreakPlayback(t *testing.T) {
	svc, videos, _, deduper := newTestVideoService(t)
	seedVideo(t, videos, "vid-1", "owner-1")
	deduper.err = errors.New("redis down")

	response, err := svc.Get(context.Background(), "vid-1", "viewer-1")
	require.NoError(t, err)
	assert.Equal(t, 0, response.ViewCount)
	assert.NotEmpty(t, response.PlaybackURL)
}

func TestGet_NotFound(t *testing.T) {
	svc, _, _, _ := newTestVideoService(t)

	_, err := svc.Get(context.Background(), "vid-404", "viewer-1")
	require.Error(t, err)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
}

func TestPublish_RequiresTitleAndDescription(t *testing.T) {
	svc, _, _, _ := newTestVideoService(t)

	_, err := svc.Publish(context.Background(), "owner-1", "", "desc", 10,
		MediaUpload{Reader: strings.NewReader("v"), Filename: "v.mp4"},
		MediaUpload{Reader: strings.NewReader("t"), Filename: "t.jpg"})
	require.Error(t, err)
	assert.Equal(t, domain.KindInvalid, domain.KindOf(err))
}

func TestPublish_StoresMedia(t *testing.T) {
	svc, videos, _, _ := newTestVideoService(t)

	video, err := svc.Publish(context.Background(), "owner-1", "a title", "a desc", 42.5,
		MediaUpload{Reader: strings.NewReader("v"), Filename: "v.mp4", ContentType: "video/mp4"},
		MediaUpload{Reader: strings.NewReader("t"), Filename: "t.jpg", ContentType: "image/jpeg"})
	require.NoError(t, err)

	assert.NotEmpty(t, video.ID)
	assert.True(t, strings.HasPrefix(video.VideoFile.Key, "videos/"))
	assert.True(t, strings.HasPrefix(video.Thumbnail.Key, "thumbnails/"))
	assert.True(t, video.IsPublished)

	stored, err := videos.GetByID(context.Background(), video.ID)
	require.NoError(t, err)
	assert.Equal(t, 42.5, stored.Duration)
}
