package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vidstream/internal/domain"
	"vidstream/internal/repository"
)

// fakeSubscriptionRepo is an in-memory SubscriptionRepository
type fakeSubscriptionRepo struct {
	mu   sync.Mutex
	subs map[[2]string]bool // [subscriber, channel]
}

func newFakeSubscriptionRepo() *fakeSubscriptionRepo {
	return &fakeSubscriptionRepo{subs: map[[2]string]bool{}}
}

func (f *fakeSubscriptionRepo) Create(ctx context.Context, sub *domain.Subscription) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := [2]string{sub.SubscriberID, sub.ChannelID}
	if f.subs[key] {
		return repository.ErrDuplicateSubscription
	}
	f.subs[key] = true
	return nil
}

func (f *fakeSubscriptionRepo) DeleteBySubscriberChannel(ctx context.Context, subscriberID, channelID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := [2]string{subscriberID, channelID}
	if !f.subs[key] {
		return false, nil
	}
	delete(f.subs, key)
	return true, nil
}

func (f *fakeSubscriptionRepo) ListChannels(ctx context.Context, subscriberID string, page, limit int) ([]*domain.ChannelSummary, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	channels := []*domain.ChannelSummary{}
	for key := range f.subs {
		if key[0] == subscriberID {
			channels = append(channels, &domain.ChannelSummary{ID: key[1]})
		}
	}
	return channels, len(channels), nil
}

func (f *fakeSubscriptionRepo) ListSubscribers(ctx context.Context, channelID string, page, limit int) ([]*domain.ChannelSummary, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	subscribers := []*domain.ChannelSummary{}
	for key := range f.subs {
		if key[1] == channelID {
			subscribers = append(subscribers, &domain.ChannelSummary{ID: key[0]})
		}
	}
	return subscribers, len(subscribers), nil
}

func (f *fakeSubscriptionRepo) GetChannelProfile(ctx context.Context, username, viewerID string) (*domain.ChannelProfile, error) {
	return nil, repository.ErrNotFound
}

func newTestSubscriptionService(t *testing.T) (SubscriptionService, *fakeUserRepo, *fakeSubscriptionRepo) {
	t.Helper()

	users := newFakeUserRepo()
	subs := newFakeSubscriptionRepo()

	return NewSubscriptionService(subs, users), users, subs
}

func TestToggle_SubscribeThenUnsubscribe(t *testing.T) {
	svc, users, _ := newTestSubscriptionService(t)
	subscriber := seedUser(t, users, "alice", "Correct123")
	channel := seedUser(t, users, "bob", "Correct123")

	subscribed, err := svc.Toggle(context.Background(), subscriber.ID, channel.ID)
	require.NoError(t, err)
	assert.True(t, subscribed)

	subscribed, err = svc.Toggle(context.Background(), subscriber.ID, channel.ID)
	require.NoError(t, err)
	assert.False(t, subscribed)

	// And back again
	subscribed, err = svc.Toggle(context.Background(), subscriber.ID, channel.ID)
	require.NoError(t, err)
	assert.True(t, subscribed)
}

func TestToggle_SelfSubscription(t *testing.T) {
	svc, users, _ := newTestSubscriptionService(t)
	user := seedUser(t, users, "alice", "Correct123")

	_, err := svc.Toggle(context.Background(), user.ID, user.ID)
	require.Error(t, err)
	assert.Equal(t, domain.KindInvalid, domain.KindOf(err))
}

func TestToggle_UnknownChannel(t *testing.T) {
	svc, users, _ := newTestSubscriptionService(t)
	subscriber := seedUser(t, users, "alice", "Correct123")

	_, err := svc.Toggle(context.Background(), subscriber.ID, "missing-channel")
	require.Error(t, err)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
}

func TestChannelProfile_NotFound(t *testing.T) {
	svc, _, _ := newTestSubscriptionService(t)

	_, err := svc.ChannelProfile(context.Background(), "ghost", "viewer-1")
	require.Error(t, err)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
}
