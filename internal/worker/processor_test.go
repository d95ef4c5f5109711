package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/addhory/eviction-tracker-next-app-sub000/internal/models"
	"github.com/addhory/eviction-tracker-next-app-sub000/internal/notify"
	"github.com/addhory/eviction-tracker-next-app-sub000/internal/queue"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Notification, error) {
	args := m.Called(ctx, id)
	if n := args.Get(0); n != nil {
		return n.(*models.Notification), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStore) MarkSent(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockStore) MarkFailed(ctx context.Context, id uuid.UUID, reason string, attempted bool) error {
	return m.Called(ctx, id, reason, attempted).Error(0)
}

type recordingSender struct {
	sent []notify.Message
	err  error
}

func (s *recordingSender) Send(_ context.Context, msg notify.Message) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, msg)
	return nil
}

func TestDeliverMarksSent(t *testing.T) {
	id := uuid.New()
	store := new(mockStore)
	store.On("GetByID", mock.Anything, id).Return(&models.Notification{
		ID: id, Recipient: "a@b.co", Subject: "Hi", BodyText: "text", DeliveryStatus: models.DeliveryQueued,
	}, nil)
	store.On("MarkSent", mock.Anything, id).Return(nil)

	sender := &recordingSender{}
	err := NewProcessor(store, sender).Deliver(context.Background(), queue.NotificationTask{NotificationID: id.String()})
	require.NoError(t, err)

	require.Len(t, sender.sent, 1)
	assert.Equal(t, "a@b.co", sender.sent[0].Recipient)
	store.AssertExpectations(t)
}

func TestDeliverRecordsFailure(t *testing.T) {
	id := uuid.New()
	store := new(mockStore)
	store.On("GetByID", mock.Anything, id).Return(&models.Notification{ID: id, DeliveryStatus: models.DeliveryQueued}, nil)
	store.On("MarkFailed", mock.Anything, id, "smtp down", true).Return(nil)

	err := NewProcessor(store, &recordingSender{err: errors.New("smtp down")}).
		Deliver(context.Background(), queue.NotificationTask{NotificationID: id.String()})
	require.Error(t, err)
	store.AssertExpectations(t)
	store.AssertNotCalled(t, "MarkSent", mock.Anything, id)
}

func TestDeliverSkipsAlreadySent(t *testing.T) {
	id := uuid.New()
	store := new(mockStore)
	store.On("GetByID", mock.Anything, id).Return(&models.Notification{ID: id, DeliveryStatus: models.DeliverySent}, nil)

	sender := &recordingSender{}
	require.NoError(t, NewProcessor(store, sender).Deliver(context.Background(), queue.NotificationTask{NotificationID: id.String()}))
	assert.Empty(t, sender.sent)
}

func TestDeliverRejectsBadID(t *testing.T) {
	err := NewProcessor(new(mockStore), &recordingSender{}).
		Deliver(context.Background(), queue.NotificationTask{NotificationID: "nope"})
	assert.Error(t, err)
}
