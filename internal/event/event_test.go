package event

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, e Event) error {
	return m.Called(ctx, e).Error(0)
}

func TestPublishAfterCommitSwallowsErrors(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	p := new(mockPublisher)
	p.On("Publish", mock.Anything, mock.MatchedBy(func(e Event) bool {
		return e.Type == ReservationConfirmed && e.ReservationID == 7
	})).Return(errors.New("broker down"))

	PublishAfterCommit(context.Background(), p, New(ReservationConfirmed, 7, nil))

	p.AssertExpectations(t)
	assert.Contains(t, buf.String(), "failed to publish event")
	assert.Contains(t, buf.String(), "broker down")
}

func TestNopPublisher(t *testing.T) {
	assert.NoError(t, NopPublisher{}.Publish(context.Background(), New(InvoiceCreated, 1, nil)))
}
