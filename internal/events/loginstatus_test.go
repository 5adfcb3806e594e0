package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoginStatusBroadcast(t *testing.T) {
	b := NewLoginStatusBroadcaster(4)
	first := b.Subscribe()
	second := b.Subscribe()

	b.Publish(true)
	assert.True(t, <-first)
	assert.True(t, <-second)

	b.Unsubscribe(second)
	b.Publish(false)
	assert.False(t, <-first)

	_, open := <-second
	assert.False(t, open)
}

func TestLoginStatusDropsSlowConsumer(t *testing.T) {
	b := NewLoginStatusBroadcaster(1)
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.Publish(true)
	b.Publish(false) // buffer full, dropped

	assert.True(t, <-ch)
	select {
	case v := <-ch:
		t.Fatalf("unexpected value %v", v)
	default:
	}
}
