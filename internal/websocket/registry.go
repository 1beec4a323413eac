package websocket

import (
	"sort"
	"sync"
	"time"

	"github.com/samber/lo"
)

// Presence is a copy of one connection's registry entry.
type Presence struct {
	ConnectionID string
	Principal    string
	WorkspaceID  string
	Chats        []string
	VoiceChats   []string
	LastActive   time.Time
}

type presenceEntry struct {
	principal  string
	workspace  string
	chats      map[string]struct{}
	voice      map[string]struct{}
	lastActive time.Time
}

type connSet map[string]struct{}

// Registry is the in-memory table of live connections and the rooms they joined.
// Every method takes the lock for its whole duration, so each call is atomic.
// Multi-step sequences that span store I/O are not atomic; callers re-read state after I/O.
type Registry struct {
	mu          sync.RWMutex
	entries     map[string]*presenceEntry
	byPrincipal map[string]connSet
	byWorkspace map[string]connSet
	byChat      map[string]connSet
	byVoice     map[string]connSet
	now         func() time.Time
}

func NewRegistry() *Registry {
	return &Registry{
		entries:     make(map[string]*presenceEntry),
		byPrincipal: make(map[string]connSet),
		byWorkspace: make(map[string]connSet),
		byChat:      make(map[string]connSet),
		byVoice:     make(map[string]connSet),
		now:         time.Now,
	}
}

func addToIndex(index map[string]connSet, key, connectionID string) {
	set, ok := index[key]
	if !ok {
		set = make(connSet)
		index[key] = set
	}
	set[connectionID] = struct{}{}
}

func removeFromIndex(index map[string]connSet, key, connectionID string) {
	set, ok := index[key]
	if !ok {
		return
	}
	delete(set, connectionID)
	if len(set) == 0 {
		delete(index, key)
	}
}

// AddConnection registers a connection with no workspace and no rooms.
// It returns false if the id is already registered.
func (r *Registry) AddConnection(connectionID, principal string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[connectionID]; exists {
		return false
	}
	r.entries[connectionID] = &presenceEntry{
		principal:  principal,
		chats:      make(map[string]struct{}),
		voice:      make(map[string]struct{}),
		lastActive: r.now(),
	}
	addToIndex(r.byPrincipal, principal, connectionID)
	return true
}

// SetWorkspace moves the connection into workspaceID and returns the workspace it left ("" if none).
func (r *Registry) SetWorkspace(connectionID, workspaceID string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[connectionID]
	if !ok {
		return "", false
	}
	previous := e.workspace
	if previous == workspaceID {
		return "", true
	}
	if previous != "" {
		removeFromIndex(r.byWorkspace, previous, connectionID)
	}
	e.workspace = workspaceID
	addToIndex(r.byWorkspace, workspaceID, connectionID)
	return previous, true
}

func (r *Registry) JoinChat(connectionID, chatID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[connectionID]
	if !ok {
		return false
	}
	e.chats[chatID] = struct{}{}
	addToIndex(r.byChat, chatID, connectionID)
	return true
}

func (r *Registry) LeaveChat(connectionID, chatID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[connectionID]
	if !ok {
		return false
	}
	delete(e.chats, chatID)
	removeFromIndex(r.byChat, chatID, connectionID)
	return true
}

func (r *Registry) JoinVoice(connectionID, chatID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[connectionID]
	if !ok {
		return false
	}
	e.voice[chatID] = struct{}{}
	addToIndex(r.byVoice, chatID, connectionID)
	return true
}

func (r *Registry) LeaveVoice(connectionID, chatID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[connectionID]
	if !ok {
		return false
	}
	delete(e.voice, chatID)
	removeFromIndex(r.byVoice, chatID, connectionID)
	return true
}

// RemoveConnection drops the entry and returns its last state so leave notices can be sent.
func (r *Registry) RemoveConnection(connectionID string) (Presence, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[connectionID]
	if !ok {
		return Presence{}, false
	}
	snapshot := e.snapshot(connectionID)

	for chatID := range e.chats {
		removeFromIndex(r.byChat, chatID, connectionID)
	}
	for chatID := range e.voice {
		removeFromIndex(r.byVoice, chatID, connectionID)
	}
	if e.workspace != "" {
		removeFromIndex(r.byWorkspace, e.workspace, connectionID)
	}
	removeFromIndex(r.byPrincipal, e.principal, connectionID)
	delete(r.entries, connectionID)

	return snapshot, true
}

func (r *Registry) Touch(connectionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.entries[connectionID]; ok {
		e.lastActive = r.now()
	}
}

func (r *Registry) Get(connectionID string) (Presence, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[connectionID]
	if !ok {
		return Presence{}, false
	}
	return e.snapshot(connectionID), true
}

func (r *Registry) InChat(connectionID, chatID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[connectionID]
	if !ok {
		return false
	}
	_, joined := e.chats[chatID]
	return joined
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// ActiveUsersInWorkspace returns the distinct principals with a connection in the workspace.
func (r *Registry) ActiveUsersInWorkspace(workspaceID string) []string {
	return r.principals(r.byWorkspace, workspaceID)
}

// ActiveUsersInChat returns the distinct principals with a connection in the chat room.
func (r *Registry) ActiveUsersInChat(chatID string) []string {
	return r.principals(r.byChat, chatID)
}

func (r *Registry) ActiveUsersInVoice(chatID string) []string {
	return r.principals(r.byVoice, chatID)
}

func (r *Registry) ConnectionsInWorkspace(workspaceID string) []string {
	return r.connections(r.byWorkspace, workspaceID)
}

func (r *Registry) ConnectionsInChat(chatID string) []string {
	return r.connections(r.byChat, chatID)
}

func (r *Registry) ConnectionsInVoice(chatID string) []string {
	return r.connections(r.byVoice, chatID)
}

func (r *Registry) ConnectionsOf(principal string) []string {
	return r.connections(r.byPrincipal, principal)
}

func (r *Registry) connections(index map[string]connSet, key string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := lo.Keys(index[key])
	sort.Strings(ids)
	return ids
}

func (r *Registry) principals(index map[string]connSet, key string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := lo.Uniq(lo.Map(lo.Keys(index[key]), func(connectionID string, _ int) string {
		return r.entries[connectionID].principal
	}))
	sort.Strings(users)
	return users
}

func (e *presenceEntry) snapshot(connectionID string) Presence {
	chats := lo.Keys(e.chats)
	sort.Strings(chats)
	voice := lo.Keys(e.voice)
	sort.Strings(voice)
	return Presence{
		ConnectionID: connectionID,
		Principal:    e.principal,
		WorkspaceID:  e.workspace,
		Chats:        chats,
		VoiceChats:   voice,
		LastActive:   e.lastActive,
	}
}
