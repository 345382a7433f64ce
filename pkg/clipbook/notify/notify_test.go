package notify_test

import (
	"testing"
	"time"

	"github.com/jamesainslie/clipbook/pkg/clipbook/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, sub *notify.Subscriber) (notify.Event, bool) {
	t.Helper()
	select {
	case ev := <-sub.Events:
		return ev, true
	case <-time.After(50 * time.Millisecond):
		return notify.Event{}, false
	}
}

func TestNotifier(t *testing.T) {
	t.Run("delivers to matching prefix", func(t *testing.T) {
		n := notify.New()
		defer n.Close()

		sub := n.Subscribe("HTML/")
		require.NotNil(t, sub)
		assert.NotEmpty(t, sub.ID)

		n.Notify(notify.Event{Type: notify.EventAdded, FullName: "HTML/Bold"})

		ev, ok := receive(t, sub)
		require.True(t, ok)
		assert.Equal(t, notify.EventAdded, ev.Type)
		assert.Equal(t, "HTML/Bold", ev.FullName)
	})

	t.Run("filters other prefixes", func(t *testing.T) {
		n := notify.New()
		defer n.Close()

		sub := n.Subscribe("HTML/")
		n.Notify(notify.Event{Type: notify.EventAdded, FullName: "CSS/Color"})

		_, ok := receive(t, sub)
		assert.False(t, ok)
	})

	t.Run("renames match on the old name", func(t *testing.T) {
		n := notify.New()
		defer n.Close()

		sub := n.Subscribe("HTML/")
		n.Notify(notify.Event{Type: notify.EventRenamed, FullName: "Markup/", OldFullName: "HTML/"})

		ev, ok := receive(t, sub)
		require.True(t, ok)
		assert.Equal(t, "Markup/", ev.FullName)
	})

	t.Run("library-wide events reach everyone", func(t *testing.T) {
		n := notify.New()
		defer n.Close()

		sub := n.Subscribe("HTML/")
		n.Notify(notify.Event{Type: notify.EventReloaded, Count: 4})

		ev, ok := receive(t, sub)
		require.True(t, ok)
		assert.Equal(t, 4, ev.Count)
	})

	t.Run("full subscribers do not block", func(t *testing.T) {
		n := notify.New()
		defer n.Close()

		sub := n.Subscribe("")
		for range 150 {
			n.Notify(notify.Event{Type: notify.EventSaved})
		}
		assert.Len(t, sub.Events, 100)
	})

	t.Run("unsubscribe closes channel", func(t *testing.T) {
		n := notify.New()
		defer n.Close()

		sub := n.Subscribe("")
		assert.Equal(t, 1, n.SubscriberCount())

		n.Unsubscribe(sub.ID)
		assert.Zero(t, n.SubscriberCount())

		_, open := <-sub.Events
		assert.False(t, open)
	})

	t.Run("closed notifier refuses subscribers", func(t *testing.T) {
		n := notify.New()
		n.Close()
		assert.Nil(t, n.Subscribe(""))
		n.Notify(notify.Event{Type: notify.EventSaved})
	})

	t.Run("event names", func(t *testing.T) {
		assert.Equal(t, "moved", notify.EventMoved.String())
		assert.Equal(t, "text-changed", notify.EventTextChanged.String())
	})
}
