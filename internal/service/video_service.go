package service

import (
	"context"
	"errors"
	"time"

	"vidstream/internal/domain"
	"vidstream/internal/dto"
	"vidstream/internal/repository"
)

const playbackURLExpiry = time.Hour

// viewDeduper decides whether a view should be counted
type viewDeduper interface {
	ShouldRecord(ctx context.Context, videoID, viewerID string) (bool, error)
}

// videoService implements VideoService
type videoService struct {
	videos   repository.VideoRepository
	views    repository.ViewRepository
	media    MediaStore
	recorder viewDeduper
}

// NewVideoService creates a new video service
func NewVideoService(
	videos repository.VideoRepository,
	views repository.ViewRepository,
	media MediaStore,
	recorder viewDeduper,
) VideoService {
	return &videoService{
		videos:   videos,
		views:    views,
		media:    media,
		recorder: recorder,
	}
}

// List retrieves published videos matching the filter
func (s *videoService) List(ctx context.Context, filter domain.VideoFilter) (*dto.VideoListResponse, error) {
	videos, total, err := s.videos.List(ctx, filter)
	if err != nil {
		return nil, domain.Wrap(domain.KindInternal, "failed to list videos", err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 {
		limit = 10
	}

	return &dto.VideoListResponse{
		Videos: videos,
		Total:  total,
		Page:   page,
		Limit:  limit,
	}, nil
}

// Publish uploads the video file and thumbnail and creates the video record
func (s *videoService) Publish(ctx context.Context, ownerID, title, description string, duration float64, video, thumbnail MediaUpload) (*domain.Video, error) {
	if title == "" || description == "" {
		return nil, domain.E(domain.KindInvalid, "title and description are both required")
	}

	videoRef, err := uploadMedia(ctx, s.media, "videos", video)
	if err != nil {
		return nil, err
	}

	thumbRef, err := uploadMedia(ctx, s.media, "thumbnails", thumbnail)
	if err != nil {
		// Avoid leaking the already uploaded video file
		_ = s.media.Delete(ctx, videoRef.Key)
		return nil, err
	}

	v := &domain.Video{
		OwnerID:     ownerID,
		Title:       title,
		Description: description,
		VideoFile:   videoRef,
		Thumbnail:   thumbRef,
		Duration:    duration,
		IsPublished: true,
	}

	if err := s.videos.Create(ctx, v); err != nil {
		_ = s.media.Delete(ctx, videoRef.Key)
		_ = s.media.Delete(ctx, thumbRef.Key)
		return nil, domain.Wrap(domain.KindInternal, "failed to create video", err)
	}

	return v, nil
}

// Get returns a video with its view count, recording a view for the
// watching user. Repeat views inside the dedup window are not counted.
func (s *videoService) Get(ctx context.Context, videoID, viewerID string) (*dto.VideoResponse, error) {
	video, err := s.videos.GetByID(ctx, videoID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.E(domain.KindNotFound, "video not found")
		}
		return nil, domain.Wrap(domain.KindInternal, "failed to load video", err)
	}

	fresh, err := s.recorder.ShouldRecord(ctx, videoID, viewerID)
	if err != nil {
		// View accounting must not break playback
		fresh = false
	}

	if fresh {
		// Best effort: a lost view record must not fail playback
		_ = s.views.Create(ctx, &domain.View{
			VideoID:  video.ID,
			OwnerID:  video.OwnerID,
			ViewerID: viewerID,
		})
	}

	count, err := s.views.CountByVideo(ctx, videoID)
	if err != nil {
		count = 0
	}

	// Clients fall back to the stored URL when presigning is unavailable
	playbackURL, err := s.media.PresignGet(ctx, video.VideoFile.Key, playbackURLExpiry)
	if err != nil {
		playbackURL = ""
	}

	return &dto.VideoResponse{Video: video, ViewCount: count, PlaybackURL: playbackURL}, nil
}

// Load fetches a video without recording a view
func (s *videoService) Load(ctx context.Context, videoID string) (*domain.Video, error) {
	video, err := s.videos.GetByID(ctx, videoID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.E(domain.KindNotFound, "video not found")
		}
		return nil, domain.Wrap(domain.KindInternal, "failed to load video", err)
	}

	return video, nil
}

// ReplaceFile uploads a new video file and deletes the old one
func (s *videoService) ReplaceFile(ctx context.Context, video *domain.Video, upload MediaUpload) (*domain.Video, error) {
	ref, err := uploadMedia(ctx, s.media, "videos", upload)
	if err != nil {
		return nil, err
	}

	if video.VideoFile.Key != "" {
		_ = s.media.Delete(ctx, video.VideoFile.Key)
	}

	updated, err := s.videos.UpdateFile(ctx, video.ID, ref)
	if err != nil {
		return nil, domain.Wrap(domain.KindInternal, "failed to update video file", err)
	}

	return updated, nil
}

// ReplaceThumbnail uploads a new thumbnail and deletes the old one
func (s *videoService) ReplaceThumbnail(ctx context.Context, video *domain.Video, upload MediaUpload) (*domain.Video, error) {
	ref, err := uploadMedia(ctx, s.media, "thumbnails", upload)
	if err != nil {
		return nil, err
	}

	if video.Thumbnail.Key != "" {
		_ = s.media.Delete(ctx, video.Thumbnail.Key)
	}

	updated, err := s.videos.UpdateThumbnail(ctx, video.ID, ref)
	if err != nil {
		return nil, domain.Wrap(domain.KindInternal, "failed to update thumbnail", err)
	}

	return updated, nil
}

// UpdateTitle changes a video's title
func (s *videoService) UpdateTitle(ctx context.Context, videoID, title string) (*domain.Video, error) {
	video, err := s.videos.UpdateTitle(ctx, videoID, title)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.E(domain.KindNotFound, "video not found")
		}
		return nil, domain.Wrap(domain.KindInternal, "failed to update title", err)
	}

	return video, nil
}

// UpdateDescription changes a video's description
func (s *videoService) UpdateDescription(ctx context.Context, videoID, description string) (*domain.Video, error) {
	video, err := s.videos.UpdateDescription(ctx, videoID, description)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.E(domain.KindNotFound, "video not found")
		}
		return nil, domain.Wrap(domain.KindInternal, "failed to update description", err)
	}

	return video, nil
}

// TogglePublish flips a video's publish status
func (s *videoService) TogglePublish(ctx context.Context, videoID string) (*domain.Video, error) {
	video, err := s.videos.TogglePublished(ctx, videoID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.E(domain.KindNotFound, "video not found")
		}
		return nil, domain.Wrap(domain.KindInternal, "failed to toggle publish status", err)
	}

	return video, nil
}

// Delete removes a video record and its media files
func (s *videoService) Delete(ctx context.Context, video *domain.Video) error {
	if err := s.videos.Delete(ctx, video.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.E(domain.KindNotFound, "video not found")
		}
		return domain.Wrap(domain.KindInternal, "failed to delete video", err)
	}

	if video.VideoFile.Key != "" {
		_ = s.media.Delete(ctx, video.VideoFile.Key)
	}
	if video.Thumbnail.Key != "" {
		_ = s.media.Delete(ctx, video.Thumbnail.Key)
	}

	return nil
}
