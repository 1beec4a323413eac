package websocket

import "github.com/samber/lo"

// Rooms fans events out to every connection of a room through an Emitter.
type Rooms struct {
	registry *Registry
	emitter  Emitter
}

func NewRooms(registry *Registry, emitter Emitter) *Rooms {
	return &Rooms{registry: registry, emitter: emitter}
}

func (r *Rooms) ToConnection(connectionID, event string, payload interface{}) {
	r.emitter.Emit(connectionID, event, payload)
}

// ToChat sends to every connection that joined the chat room except the excluded ones.
func (r *Rooms) ToChat(chatID, event string, payload interface{}, exclude ...string) {
	r.fanOut(r.registry.ConnectionsInChat(chatID), event, payload, exclude)
}

func (r *Rooms) ToWorkspace(workspaceID, event string, payload interface{}, exclude ...string) {
	r.fanOut(r.registry.ConnectionsInWorkspace(workspaceID), event, payload, exclude)
}

func (r *Rooms) ToVoice(chatID, event string, payload interface{}, exclude ...string) {
	r.fanOut(r.registry.ConnectionsInVoice(chatID), event, payload, exclude)
}

// ToUser reaches every device of a principal.
func (r *Rooms) ToUser(principal, event string, payload interface{}) {
	r.fanOut(r.registry.ConnectionsOf(principal), event, payload, nil)
}

// ToWorkspaceUsers sends to the workspace connections whose principal is in users.
func (r *Rooms) ToWorkspaceUsers(workspaceID string, users []string, event string, payload interface{}) {
	for _, connectionID := range r.registry.ConnectionsInWorkspace(workspaceID) {
		presence, ok := r.registry.Get(connectionID)
		if !ok {
			continue
		}
		if lo.Contains(users, presence.Principal) {
			r.emitter.Emit(connectionID, event, payload)
		}
	}
}

func (r *Rooms) fanOut(connections []string, event string, payload interface{}, exclude []string) {
	for _, connectionID := range connections {
		if lo.Contains(exclude, connectionID) {
			continue
		}
		r.emitter.Emit(connectionID, event, payload)
	}
}
