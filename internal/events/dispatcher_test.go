package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPublishReachesOnlyMatchingSubscribers(t *testing.T) {
	t.Parallel()

	d := NewInMemoryDispatcher()
	var verified, registered int

	d.Subscribe(EventEmailVerified, func(context.Context, Event) error {
		verified++
		return nil
	})
	d.Subscribe(EventUserRegistered, func(context.Context, Event) error {
		registered++
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventEmailVerified, SubjectID: 1})
	require.NoError(t, err)
	require.Equal(t, 1, verified)
	require.Equal(t, 0, registered)
}

func TestHandlerFailureDoesNotStopOthers(t *testing.T) {
	t.Parallel()

	d := NewInMemoryDispatcher()
	var called bool

	d.Subscribe(EventPasswordChanged, func(context.Context, Event) error {
		return errors.New("boom")
	})
	d.Subscribe(EventPasswordChanged, func(context.Context, Event) error {
		called = true
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), Event{Type: EventPasswordChanged}))
	require.True(t, called)
}

func TestPublishWithoutSubscribersIsNoop(t *testing.T) {
	t.Parallel()

	d := NewInMemoryDispatcher()
	require.NoError(t, d.Publish(context.Background(), Event{Type: EventVerificationCodeIssued}))
}
