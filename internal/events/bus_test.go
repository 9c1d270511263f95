package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishFansOut(t *testing.T) {
	t.Parallel()
	b := NewBus()
	a := b.Subscribe()
	c := b.Subscribe()
	defer b.Unsubscribe(a)
	defer b.Unsubscribe(c)

	b.Publish(Event{Type: TypeBalanceChanged, AccountID: "acc-1"})

	got := <-a
	assert.Equal(t, TypeBalanceChanged, got.Type)
	assert.Equal(t, "acc-1", got.AccountID)
	got = <-c
	assert.Equal(t, TypeBalanceChanged, got.Type)
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	t.Parallel()
	b := NewBus()
	ch := b.Subscribe()
	b.Unsubscribe(ch)

	_, open := <-ch
	assert.False(t, open)

	// double unsubscribe must not panic
	b.Unsubscribe(ch)
}

func TestPublishNeverBlocksOnSlowSubscriber(t *testing.T) {
	t.Parallel()
	b := NewBus()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	// overfill the buffer; extra events drop instead of blocking
	for i := 0; i < 250; i++ {
		b.Publish(Event{Type: TypeQuote})
	}
	require.Len(t, ch, cap(ch))
}

func TestPublishWithoutSubscribers(t *testing.T) {
	t.Parallel()
	b := NewBus()
	b.Publish(Event{Type: TypeProfileUpdated})
}
