package service

import (
	"context"
	"errors"

	"vidstream/internal/domain"
	"vidstream/internal/dto"
	"vidstream/internal/repository"
	"vidstream/internal/utils"
)

// subscriptionService implements SubscriptionService
type subscriptionService struct {
	subscriptions repository.SubscriptionRepository
	users         repository.UserRepository
}

// NewSubscriptionService creates a new subscription service
func NewSubscriptionService(
	subscriptions repository.SubscriptionRepository,
	users repository.UserRepository,
) SubscriptionService {
	return &subscriptionService{
		subscriptions: subscriptions,
		users:         users,
	}
}

// Toggle subscribes or unsubscribes the user from a channel
func (s *subscriptionService) Toggle(ctx context.Context, subscriberID, channelID string) (bool, error) {
	if subscriberID == channelID {
		return false, domain.E(domain.KindInvalid, "cannot subscribe to your own channel")
	}

	deleted, err := s.subscriptions.DeleteBySubscriberChannel(ctx, subscriberID, channelID)
	if err != nil {
		return false, domain.Wrap(domain.KindInternal, "failed to toggle subscription", err)
	}
	if deleted {
		return false, nil
	}

	if _, err := s.users.GetByID(ctx, channelID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, domain.E(domain.KindNotFound, "channel not found")
		}
		return false, domain.Wrap(domain.KindInternal, "failed to look up channel", err)
	}

	sub := &domain.Subscription{
		SubscriberID: subscriberID,
		ChannelID:    channelID,
	}
	if err := s.subscriptions.Create(ctx, sub); err != nil {
		// A concurrent toggle may have subscribed already; treat the
		// desired state as reached.
		if errors.Is(err, repository.ErrDuplicateSubscription) {
			return true, nil
		}
		return false, domain.Wrap(domain.KindInternal, "failed to create subscription", err)
	}

	return true, nil
}

// ListChannels lists channels the user is subscribed to
func (s *subscriptionService) ListChannels(ctx context.Context, subscriberID string, page, limit int) (*dto.ChannelListResponse, error) {
	channels, total, err := s.subscriptions.ListChannels(ctx, subscriberID, page, limit)
	if err != nil {
		return nil, domain.Wrap(domain.KindInternal, "failed to list subscribed channels", err)
	}

	return channelListResponse(channels, total, page, limit), nil
}

// ListSubscribers lists the channel's subscribers
func (s *subscriptionService) ListSubscribers(ctx context.Context, channelID string, page, limit int) (*dto.ChannelListResponse, error) {
	subscribers, total, err := s.subscriptions.ListSubscribers(ctx, channelID, page, limit)
	if err != nil {
		return nil, domain.Wrap(domain.KindInternal, "failed to list channel subscribers", err)
	}

	return channelListResponse(subscribers, total, page, limit), nil
}

// ChannelProfile returns a channel page with subscription aggregates
func (s *subscriptionService) ChannelProfile(ctx context.Context, username, viewerID string) (*domain.ChannelProfile, error) {
	profile, err := s.subscriptions.GetChannelProfile(ctx, utils.NormalizeIdentifier(username), viewerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.E(domain.KindNotFound, "channel does not exist")
		}
		return nil, domain.Wrap(domain.KindInternal, "failed to load channel profile", err)
	}

	return profile, nil
}

func channelListResponse(channels []*domain.ChannelSummary, total, page, limit int) *dto.ChannelListResponse {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	return &dto.ChannelListResponse{
		Channels: channels,
		Total:    total,
		Page:     page,
		Limit:    limit,
	}
}
