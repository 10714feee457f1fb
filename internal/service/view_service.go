package service

import (
	"context"

	"vidstream/internal/domain"
	"vidstream/internal/dto"
	"vidstream/internal/repository"
)

// viewService implements ViewService
type viewService struct {
	views repository.ViewRepository
}

// NewViewService creates a new view service
func NewViewService(views repository.ViewRepository) ViewService {
	return &viewService{views: views}
}

// WatchHistory lists videos the user has watched, most recent first
func (s *viewService) WatchHistory(ctx context.Context, viewerID string, page, limit int) (*dto.VideoListResponse, error) {
	videos, total, err := s.views.ListWatchHistory(ctx, viewerID, page, limit)
	if err != nil {
		return nil, domain.Wrap(domain.KindInternal, "failed to load watch history", err)
	}

	if page < 1 {
		page = 1
	}
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

// VideoViewers lists users who have watched the video
func (s *viewService) VideoViewers(ctx context.Context, videoID string, page, limit int) (*dto.ViewerListResponse, error) {
	viewers, total, err := s.views.ListVideoViewers(ctx, videoID, page, limit)
	if err != nil {
		return nil, domain.Wrap(domain.KindInternal, "failed to list viewers", err)
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	return &dto.ViewerListResponse{
		Viewers: viewers,
		Total:   total,
		Page:    page,
		Limit:   limit,
	}, nil
}
