package websocket

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_AddConnection(t *testing.T) {
	r := NewRegistry()

	require.True(t, r.AddConnection("c1", "alice"))
	assert.False(t, r.AddConnection("c1", "bob"), "duplicate connection ids are rejected")

	p, ok := r.Get("c1")
	require.True(t, ok)
	assert.Equal(t, "alice", p.Principal)
	assert.Empty(t, p.WorkspaceID)
	assert.Empty(t, p.Chats)
	assert.Empty(t, p.VoiceChats)
}

func TestRegistry_SetWorkspace(t *testing.T) {
	r := NewRegistry()
	r.AddConnection("c1", "alice")

	previous, ok := r.SetWorkspace("c1", "w1")
	require.True(t, ok)
	assert.Empty(t, previous)

	previous, ok = r.SetWorkspace("c1", "w1")
	require.True(t, ok)
	assert.Empty(t, previous, "setting the same workspace is a no-op")

	previous, ok = r.SetWorkspace("c1", "w2")
	require.True(t, ok)
	assert.Equal(t, "w1", previous)
	assert.Empty(t, r.ActiveUsersInWorkspace("w1"))
	assert.Equal(t, []string{"alice"}, r.ActiveUsersInWorkspace("w2"))

	_, ok = r.SetWorkspace("missing", "w1")
	assert.False(t, ok)
}

func TestRegistry_JoinAndLeaveChatAreIdempotent(t *testing.T) {
	r := NewRegistry()
	r.AddConnection("c1", "alice")

	assert.True(t, r.JoinChat("c1", "chat"))
	assert.True(t, r.JoinChat("c1", "chat"))
	assert.Equal(t, []string{"c1"}, r.ConnectionsInChat("chat"))
	assert.True(t, r.InChat("c1", "chat"))

	assert.True(t, r.LeaveChat("c1", "chat"))
	assert.True(t, r.LeaveChat("c1", "chat"))
	assert.Empty(t, r.ConnectionsInChat("chat"))
	assert.False(t, r.InChat("c1", "chat"))

	assert.False(t, r.JoinChat("missing", "chat"))
}

func TestRegistry_ActiveUsersAreDistinctPrincipals(t *testing.T) {
	r := NewRegistry()
	r.AddConnection("c1", "alice")
	r.AddConnection("c2", "alice")
	r.AddConnection("c3", "bob")
	for _, id := range []string{"c1", "c2", "c3"} {
		r.SetWorkspace(id, "w1")
		r.JoinChat(id, "chat")
	}

	assert.Equal(t, []string{"alice", "bob"}, r.ActiveUsersInWorkspace("w1"))
	assert.Equal(t, []string{"alice", "bob"}, r.ActiveUsersInChat("chat"))
	assert.Equal(t, []string{"c1", "c2", "c3"}, r.ConnectionsInChat("chat"))
	assert.Equal(t, []string{"c1", "c2"}, r.ConnectionsOf("alice"))
}

func TestRegistry_LeaveOnOneConnectionKeepsPrincipalInChat(t *testing.T) {
	r := NewRegistry()
	r.AddConnection("c1", "alice")
	r.AddConnection("c2", "alice")
	r.JoinChat("c1", "chat")
	r.JoinChat("c2", "chat")

	r.LeaveChat("c1", "chat")

	assert.Equal(t, []string{"alice"}, r.ActiveUsersInChat("chat"))
	assert.Equal(t, []string{"c2"}, r.ConnectionsInChat("chat"))
}

func TestRegistry_RemoveConnection(t *testing.T) {
	r := NewRegistry()
	r.AddConnection("c1", "alice")
	r.AddConnection("c2", "bob")
	r.SetWorkspace("c1", "w1")
	r.SetWorkspace("c2", "w1")
	r.JoinChat("c1", "chat-b")
	r.JoinChat("c1", "chat-a")
	r.JoinChat("c2", "chat-a")
	r.JoinVoice("c1", "chat-a")

	last, ok := r.RemoveConnection("c1")
	require.True(t, ok)
	assert.Equal(t, "alice", last.Principal)
	assert.Equal(t, "w1", last.WorkspaceID)
	assert.Equal(t, []string{"chat-a", "chat-b"}, last.Chats)
	assert.Equal(t, []string{"chat-a"}, last.VoiceChats)

	assert.Equal(t, []string{"bob"}, r.ActiveUsersInWorkspace("w1"))
	assert.Equal(t, []string{"bob"}, r.ActiveUsersInChat("chat-a"))
	assert.Empty(t, r.ActiveUsersInChat("chat-b"))
	assert.Empty(t, r.ActiveUsersInVoice("chat-a"))
	assert.Empty(t, r.ConnectionsOf("alice"))
	assert.Equal(t, 1, r.Len())

	_, ok = r.RemoveConnection("c1")
	assert.False(t, ok)
}

func TestRegistry_ConcurrentMutations(t *testing.T) {
	r := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("c%d", i)
			r.AddConnection(id, fmt.Sprintf("user-%d", i%5))
			r.SetWorkspace(id, "w1")
			r.JoinChat(id, "chat")
			r.ActiveUsersInChat("chat")
			if i%2 == 0 {
				r.RemoveConnection(id)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 25, r.Len())
	assert.Len(t, r.ConnectionsInChat("chat"), 25)
	assert.Len(t, r.ActiveUsersInWorkspace("w1"), 5)
}
