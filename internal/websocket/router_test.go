package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"collab-workspace-be/internal/dto"
	"collab-workspace-be/internal/entity"
	"collab-workspace-be/internal/pkg/encryption"
	"collab-workspace-be/internal/pkg/logger"
	"collab-workspace-be/internal/repository/memory"
	"collab-workspace-be/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type emitted struct {
	connectionID string
	event        string
	payload      interface{}
}

type recordingEmitter struct {
	mu     sync.Mutex
	frames []emitted
}

func (e *recordingEmitter) Emit(connectionID string, event string, payload interface{}) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.frames = append(e.frames, emitted{connectionID: connectionID, event: event, payload: payload})
}

func (e *recordingEmitter) to(connectionID string) []emitted {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []emitted
	for _, f := range e.frames {
		if f.connectionID == connectionID {
			out = append(out, f)
		}
	}
	return out
}

func (e *recordingEmitter) events(connectionID string) []string {
	var names []string
	for _, f := range e.to(connectionID) {
		names = append(names, f.event)
	}
	return names
}

func (e *recordingEmitter) last(connectionID, event string) (interface{}, bool) {
	frames := e.to(connectionID)
	for i := len(frames) - 1; i >= 0; i-- {
		if frames[i].event == event {
			return frames[i].payload, true
		}
	}
	return nil, false
}

func (e *recordingEmitter) reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.frames = nil
}

type stubLimiter struct {
	allow bool
}

func (l *stubLimiter) Allow(ctx context.Context, principal string) bool { return l.allow }

type routerFixture struct {
	router      *Router
	registry    *Registry
	emitter     *recordingEmitter
	store       *memory.Store
	chats       service.IChatService
	workspaceId uuid.UUID
	alice       uuid.UUID
	bob         uuid.UUID
	carol       uuid.UUID
	chatId      uuid.UUID
}

// newRouterFixture seeds a workspace with alice, bob and carol and a chat between alice and bob.
func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()
	ctx := context.Background()

	key, err := encryption.GenerateKey()
	require.NoError(t, err)
	codec, err := encryption.NewCodec(key)
	require.NoError(t, err)

	store := memory.NewStore()
	factory := store.NewRepositoryFactory()
	nop := logger.NewNopLogger()
	chats := service.NewChatService(factory, codec, service.NewNotificationPublisher(nil, nop), nop, 24*time.Hour)

	f := &routerFixture{
		registry:    NewRegistry(),
		emitter:     &recordingEmitter{},
		store:       store,
		chats:       chats,
		workspaceId: uuid.New(),
		alice:       uuid.New(),
		bob:         uuid.New(),
		carol:       uuid.New(),
	}
	f.router = NewRouter(
		f.registry,
		f.emitter,
		chats,
		service.NewAccessService(factory, time.Minute),
		service.NewWorkspaceMemberService(factory),
		&stubLimiter{allow: true},
		nop,
	)

	uow := factory.NewUnitOfWork(ctx)
	for _, userId := range []uuid.UUID{f.alice, f.bob, f.carol} {
		id := userId
		require.NoError(t, uow.WorkspaceMemberRepository().Create(ctx, &entity.WorkspaceMember{
			WorkspaceId:    f.workspaceId,
			UserId:         &id,
			Email:          id.String() + "@example.com",
			Role:           "member",
			InviteAccepted: true,
		}))
	}

	name := "design"
	chat, err := chats.CreateChat(ctx, f.alice, &dto.CreateChatRequest{
		WorkspaceId:  f.workspaceId,
		Participants: []uuid.UUID{f.bob},
		Name:         &name,
	})
	require.NoError(t, err)
	f.chatId = chat.Id
	return f
}

func (f *routerFixture) connect(connectionID string, principal uuid.UUID) {
	f.router.HandleConnect(connectionID, principal.String())
}

func (f *routerFixture) send(connectionID, event string, data interface{}) {
	raw, _ := json.Marshal(data)
	frame, _ := json.Marshal(Frame{Event: event, Data: raw})
	f.router.HandleFrame(context.Background(), connectionID, frame)
}

// enter connects, joins the workspace and the fixture chat, then clears the recording.
func (f *routerFixture) enter(connectionID string, principal uuid.UUID, joinChat bool) {
	f.connect(connectionID, principal)
	f.send(connectionID, EventJoinWorkspace, f.workspaceId.String())
	if joinChat {
		f.send(connectionID, EventJoinChat, f.chatId.String())
	}
}

func (f *routerFixture) storedMessages(t *testing.T) []*entity.Message {
	t.Helper()
	ctx := context.Background()
	messages, err := f.store.NewRepositoryFactory().NewUnitOfWork(ctx).MessageRepository().FindByChat(ctx, f.chatId)
	require.NoError(t, err)
	return messages
}

func errorMessage(t *testing.T, payload interface{}) string {
	t.Helper()
	e, ok := payload.(dto.ErrorPayload)
	require.True(t, ok)
	return e.Message
}

func TestRouter_JoinWorkspace(t *testing.T) {
	f := newRouterFixture(t)
	f.connect("a1", f.alice)
	f.connect("b1", f.bob)

	f.send("a1", EventJoinWorkspace, f.workspaceId.String())
	f.send("b1", EventJoinWorkspace, map[string]string{"workspaceId": f.workspaceId.String()})

	joined, ok := f.emitter.last("b1", EventWorkspaceJoined)
	require.True(t, ok)
	assert.ElementsMatch(t, []string{f.alice.String(), f.bob.String()}, joined.(dto.WorkspaceJoinedPayload).ActiveUsers)

	active, ok := f.emitter.last("a1", EventActiveUsers)
	require.True(t, ok)
	assert.Len(t, active.(dto.ActiveUsersPayload).Users, 2)
}

func TestRouter_JoinWorkspaceRejectsNonMember(t *testing.T) {
	f := newRouterFixture(t)
	stranger := uuid.New()
	f.connect("s1", stranger)

	f.send("s1", EventJoinWorkspace, f.workspaceId.String())

	assert.Equal(t, []string{EventError}, f.emitter.events("s1"))
	payload, _ := f.emitter.last("s1", EventError)
	assert.Equal(t, "You are not a member of this workspace", errorMessage(t, payload))
	assert.Empty(t, f.registry.ActiveUsersInWorkspace(f.workspaceId.String()))
}

func TestRouter_JoinChatRejectsNonParticipant(t *testing.T) {
	f := newRouterFixture(t)
	f.enter("c1", f.carol, false)
	f.emitter.reset()

	f.send("c1", EventJoinChat, f.chatId.String())

	assert.Equal(t, []string{EventError}, f.emitter.events("c1"))
	assert.False(t, f.registry.InChat("c1", f.chatId.String()))
}

func TestRouter_JoinChatNotifiesOthers(t *testing.T) {
	f := newRouterFixture(t)
	f.enter("a1", f.alice, true)
	f.connect("b1", f.bob)
	f.emitter.reset()

	f.send("b1", EventJoinChat, f.chatId.String())

	assert.Equal(t, []string{EventChatJoined}, f.emitter.events("b1"))
	notice, ok := f.emitter.last("a1", EventUserJoinedChat)
	require.True(t, ok)
	assert.Equal(t, dto.ChatMemberPayload{ChatId: f.chatId.String(), UserId: f.bob.String()}, notice)
}

func TestRouter_SendMessage(t *testing.T) {
	f := newRouterFixture(t)
	f.enter("a1", f.alice, true)
	f.enter("b1", f.bob, true)
	f.enter("c1", f.carol, false)
	f.emitter.reset()

	f.send("a1", EventSendMessage, map[string]interface{}{
		"chatId":  f.chatId.String(),
		"content": "hello",
		"tempId":  "tmp-1",
	})

	stored := f.storedMessages(t)
	require.Len(t, stored, 1)
	assert.True(t, encryption.IsEncrypted(stored[0].Content))
	assert.NotContains(t, stored[0].Content, "hello")

	broadcast, ok := f.emitter.last("b1", EventNewMessage)
	require.True(t, ok)
	assert.Equal(t, "hello", broadcast.(*dto.MessageResponse).Content)

	ack, ok := f.emitter.last("a1", EventMessageSent)
	require.True(t, ok)
	assert.Equal(t, "tmp-1", ack.(dto.MessageSentPayload).TempId)
	assert.Equal(t, stored[0].Id, ack.(dto.MessageSentPayload).Message.Id)
	assert.NotContains(t, f.emitter.events("b1"), EventMessageSent)

	updated, ok := f.emitter.last("b1", EventChatUpdated)
	require.True(t, ok)
	assert.True(t, updated.(dto.ChatUpdatedPayload).LastMessage.Unread)
	senderView, ok := f.emitter.last("a1", EventChatUpdated)
	require.True(t, ok)
	assert.False(t, senderView.(dto.ChatUpdatedPayload).LastMessage.Unread)

	assert.Empty(t, f.emitter.events("c1"), "workspace members outside the chat see nothing")
}

func TestRouter_SendMessageByNonParticipant(t *testing.T) {
	f := newRouterFixture(t)
	f.enter("a1", f.alice, true)
	f.enter("c1", f.carol, false)
	f.emitter.reset()

	f.send("c1", EventSendMessage, map[string]interface{}{
		"chatId":  f.chatId.String(),
		"content": "let me in",
	})

	assert.Equal(t, []string{EventError}, f.emitter.events("c1"))
	assert.Empty(t, f.emitter.events("a1"))
	assert.Empty(t, f.storedMessages(t))
}

func TestRouter_UpdateAndDeleteMessage(t *testing.T) {
	f := newRouterFixture(t)
	f.enter("a1", f.alice, true)
	f.enter("b1", f.bob, true)
	f.send("a1", EventSendMessage, map[string]interface{}{"chatId": f.chatId.String(), "content": "first"})
	messageId := f.storedMessages(t)[0].Id.String()
	f.emitter.reset()

	f.send("b1", EventUpdateMessage, map[string]interface{}{"messageId": messageId, "content": "hijack"})
	assert.Equal(t, []string{EventError}, f.emitter.events("b1"))
	assert.Empty(t, f.emitter.events("a1"))

	f.emitter.reset()
	f.send("a1", EventUpdateMessage, map[string]interface{}{"messageId": messageId, "content": "edited"})
	updated, ok := f.emitter.last("b1", EventMessageUpdated)
	require.True(t, ok)
	assert.Equal(t, "edited", updated.(*dto.MessageResponse).Content)
	assert.True(t, updated.(*dto.MessageResponse).IsEdited)
	assert.Contains(t, f.emitter.events("a1"), EventMessageUpdatedSuccess)

	f.emitter.reset()
	f.send("a1", EventDeleteMessage, map[string]interface{}{"messageId": messageId, "soft": true})
	notice, ok := f.emitter.last("b1", EventMessageDeleted)
	require.True(t, ok)
	assert.True(t, notice.(*dto.DeleteMessageResponse).Soft)
	assert.Contains(t, f.emitter.events("a1"), EventMessageDeletedSuccess)
	require.Len(t, f.storedMessages(t), 1)
	assert.True(t, f.storedMessages(t)[0].IsDeleted)

	f.emitter.reset()
	f.send("a1", EventDeleteMessage, map[string]interface{}{"messageId": messageId})
	notice, ok = f.emitter.last("b1", EventMessageDeleted)
	require.True(t, ok)
	assert.False(t, notice.(*dto.DeleteMessageResponse).Soft)
	assert.Empty(t, f.storedMessages(t))
}

func TestRouter_MarkRead(t *testing.T) {
	f := newRouterFixture(t)
	f.enter("a1", f.alice, true)
	f.enter("b1", f.bob, true)
	f.send("a1", EventSendMessage, map[string]interface{}{"chatId": f.chatId.String(), "content": "unread"})
	f.emitter.reset()

	f.send("b1", EventMarkRead, f.chatId.String())

	ack, ok := f.emitter.last("b1", EventMessagesRead)
	require.True(t, ok)
	assert.Equal(t, int64(1), ack.(dto.MessagesReadPayload).Modified)
	assert.Contains(t, f.emitter.events("a1"), EventMessagesRead)

	f.emitter.reset()
	f.send("b1", EventMarkRead, f.chatId.String())
	ack, _ = f.emitter.last("b1", EventMessagesRead)
	assert.Equal(t, int64(0), ack.(dto.MessagesReadPayload).Modified)
	assert.Empty(t, f.emitter.events("a1"), "no broadcast when nothing changed")
}

func TestRouter_Typing(t *testing.T) {
	f := newRouterFixture(t)
	f.enter("a1", f.alice, false)
	f.enter("b1", f.bob, true)
	f.emitter.reset()

	f.send("a1", EventTypingStart, map[string]string{"chatId": f.chatId.String()})
	assert.Equal(t, []string{EventError}, f.emitter.events("a1"))
	assert.Empty(t, f.emitter.events("b1"))

	f.send("a1", EventJoinChat, f.chatId.String())
	f.emitter.reset()

	f.send("a1", EventTypingStart, map[string]string{"chatId": f.chatId.String()})
	f.send("a1", EventTypingStop, map[string]string{"chatId": f.chatId.String()})
	assert.Equal(t, []string{EventUserTyping, EventUserStoppedTyping}, f.emitter.events("b1"))
	assert.Empty(t, f.emitter.events("a1"), "typing is not echoed to the sender")
}

func TestRouter_LeaveChatOnOneOfTwoConnections(t *testing.T) {
	f := newRouterFixture(t)
	f.enter("a1", f.alice, true)
	f.enter("a2", f.alice, true)
	f.enter("b1", f.bob, true)
	f.emitter.reset()

	f.send("a1", EventLeaveChat, f.chatId.String())

	assert.Equal(t, []string{EventChatLeft}, f.emitter.events("a1"))
	assert.Contains(t, f.emitter.events("b1"), EventUserLeftChat)
	assert.Contains(t, f.registry.ActiveUsersInChat(f.chatId.String()), f.alice.String())
}

func TestRouter_UpdatePosition(t *testing.T) {
	f := newRouterFixture(t)
	f.enter("a1", f.alice, false)
	f.enter("b1", f.bob, false)
	f.emitter.reset()

	f.send("a1", EventUpdatePosition, map[string]interface{}{
		"workspaceId": f.workspaceId.String(),
		"position":    map[string]float64{"x": 10, "y": 20},
	})

	moved, ok := f.emitter.last("b1", EventUserPosition)
	require.True(t, ok)
	assert.Equal(t, dto.Position{X: 10, Y: 20}, moved.(dto.UserPositionPayload).Position)
	assert.Empty(t, f.emitter.events("a1"))

	ctx := context.Background()
	member, err := f.store.NewRepositoryFactory().NewUnitOfWork(ctx).WorkspaceMemberRepository().FindByWorkspaceAndUser(ctx, f.workspaceId, f.alice)
	require.NoError(t, err)
	require.NotNil(t, member.CurrentPosition)
	assert.Equal(t, entity.Position{X: 10, Y: 20}, *member.CurrentPosition)
}

func TestRouter_VoiceRooms(t *testing.T) {
	f := newRouterFixture(t)
	f.connect("a1", f.alice)
	f.connect("b1", f.bob)
	f.send("b1", EventJoinVoiceChat, f.chatId.String())
	f.emitter.reset()

	f.send("a1", EventJoinVoiceChat, f.chatId.String())
	assert.Equal(t, []string{EventUserJoinedVoice}, f.emitter.events("b1"))
	assert.Equal(t, []string{EventUserJoinedVoice}, f.emitter.events("a1"))

	f.emitter.reset()
	f.send("a1", EventLeaveVoiceChat, f.chatId.String())
	assert.Equal(t, []string{EventUserLeftVoice}, f.emitter.events("b1"))
	assert.Empty(t, f.emitter.events("a1"))
}

func TestRouter_Disconnect(t *testing.T) {
	f := newRouterFixture(t)
	f.enter("a1", f.alice, true)
	f.enter("b1", f.bob, true)
	f.send("a1", EventJoinVoiceChat, f.chatId.String())
	f.emitter.reset()

	f.router.HandleDisconnect(context.Background(), "a1")

	events := f.emitter.events("b1")
	assert.Contains(t, events, EventUserLeftChat)
	assert.Contains(t, events, EventUserDisconnected)
	active, ok := f.emitter.last("b1", EventActiveUsers)
	require.True(t, ok)
	assert.Equal(t, []string{f.bob.String()}, active.(dto.ActiveUsersPayload).Users)

	assert.NotContains(t, f.registry.ActiveUsersInChat(f.chatId.String()), f.alice.String())
	assert.NotContains(t, f.registry.ActiveUsersInWorkspace(f.workspaceId.String()), f.alice.String())
	assert.Empty(t, f.emitter.events("a1"))

	f.send("a1", EventJoinChat, f.chatId.String())
	assert.Empty(t, f.emitter.events("a1"), "frames after disconnect are ignored")
}

func TestRouter_DropsUnknownFrames(t *testing.T) {
	f := newRouterFixture(t)
	f.connect("a1", f.alice)

	f.router.HandleFrame(context.Background(), "a1", []byte("garbage"))
	f.send("a1", "self-destruct", map[string]string{})

	assert.Empty(t, f.emitter.events("a1"))
	_, ok := f.registry.Get("a1")
	assert.True(t, ok, "connection survives malformed input")
}

func TestRouter_ValidationErrorGoesToSender(t *testing.T) {
	f := newRouterFixture(t)
	f.connect("a1", f.alice)

	f.send("a1", EventSendMessage, map[string]string{"content": "no chat"})

	payload, ok := f.emitter.last("a1", EventError)
	require.True(t, ok)
	assert.Equal(t, EventSendMessage, payload.(dto.ErrorPayload).Event)
	assert.Contains(t, payload.(dto.ErrorPayload).Message, "chatId")
}

func TestRouter_RateLimited(t *testing.T) {
	f := newRouterFixture(t)
	f.router.limiter = &stubLimiter{allow: false}
	f.connect("a1", f.alice)

	f.send("a1", EventJoinWorkspace, f.workspaceId.String())

	payload, ok := f.emitter.last("a1", EventError)
	require.True(t, ok)
	assert.Equal(t, "Too many events, slow down", errorMessage(t, payload))
	assert.Empty(t, f.registry.ActiveUsersInWorkspace(f.workspaceId.String()))
}
