package message

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/banterhq/banter/domain/model"
	"github.com/banterhq/banter/infrastructure/logger"
	"github.com/banterhq/banter/infrastructure/metrics"
	pgrepo "github.com/banterhq/banter/infrastructure/persistence/repository"
	"github.com/banterhq/banter/infrastructure/ws"
)

type fakeMessageRepo struct {
	messages map[string]*model.Message
	order    []string
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{messages: make(map[string]*model.Message)}
}

func (f *fakeMessageRepo) Create(_ context.Context, m *model.Message) error {
	f.messages[m.ID] = m
	f.order = append(f.order, m.ID)
	return nil
}

func (f *fakeMessageRepo) GetByID(_ context.Context, id string) (*model.Message, error) {
	m, ok := f.messages[id]
	if !ok {
		return nil, pgrepo.ErrMessageNotFound
	}
	return m, nil
}

func (f *fakeMessageRepo) GetByChat(_ context.Context, chatID string) ([]*model.Message, error) {
	var out []*model.Message
	for i := len(f.order) - 1; i >= 0; i-- {
		if m, ok := f.messages[f.order[i]]; ok && m.ChatID == chatID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMessageRepo) GetLatestInChat(_ context.Context, chatID string) (*model.Message, error) {
	for i := len(f.order) - 1; i >= 0; i-- {
		if m, ok := f.messages[f.order[i]]; ok && m.ChatID == chatID {
			return m, nil
		}
	}
	return nil, pgrepo.ErrMessageNotFound
}

func (f *fakeMessageRepo) Delete(_ context.Context, id string) error {
	delete(f.messages, id)
	return nil
}

func (f *fakeMessageRepo) DeleteByChat(_ context.Context, chatID string) error {
	for id, m := range f.messages {
		if m.ChatID == chatID {
			delete(f.messages, id)
		}
	}
	return nil
}

type fakeChatRepo struct {
	chats map[string]*model.Chat
}

func newFakeChatRepo(chats ...*model.Chat) *fakeChatRepo {
	f := &fakeChatRepo{chats: make(map[string]*model.Chat)}
	for _, c := range chats {
		f.chats[c.ID] = c
	}
	return f
}

func (f *fakeChatRepo) Create(_ context.Context, c *model.Chat) error {
	f.chats[c.ID] = c
	return nil
}

func (f *fakeChatRepo) GetByID(_ context.Context, id string) (*model.Chat, error) {
	c, ok := f.chats[id]
	if !ok {
		return nil, pgrepo.ErrChatNotFound
	}
	return c, nil
}

func (f *fakeChatRepo) GetByParticipant(_ context.Context, userID string) ([]*model.Chat, error) {
	var out []*model.Chat
	for _, c := range f.chats {
		if c.IsParticipant(userID) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeChatRepo) FindOneOnOne(_ context.Context, firstUserID, secondUserID string) (*model.Chat, error) {
	for _, c := range f.chats {
		if !c.IsGroupChat && c.IsParticipant(firstUserID) && c.IsParticipant(secondUserID) {
			return c, nil
		}
	}
	return nil, pgrepo.ErrChatNotFound
}

func (f *fakeChatRepo) Update(_ context.Context, c *model.Chat) error {
	f.chats[c.ID] = c
	return nil
}

func (f *fakeChatRepo) SetLastMessage(_ context.Context, chatID string, messageID *string) error {
	c, ok := f.chats[chatID]
	if !ok {
		return pgrepo.ErrChatNotFound
	}
	c.LastMessageID = messageID
	return nil
}

func (f *fakeChatRepo) AddParticipant(_ context.Context, chatID, userID string) error {
	c, ok := f.chats[chatID]
	if !ok {
		return pgrepo.ErrChatNotFound
	}
	c.Participants = append(c.Participants, model.User{ID: userID})
	return nil
}

func (f *fakeChatRepo) RemoveParticipant(_ context.Context, chatID, userID string) error {
	c, ok := f.chats[chatID]
	if !ok {
		return pgrepo.ErrChatNotFound
	}
	kept := c.Participants[:0]
	for _, p := range c.Participants {
		if p.ID != userID {
			kept = append(kept, p)
		}
	}
	c.Participants = kept
	return nil
}

func (f *fakeChatRepo) Delete(_ context.Context, id string) error {
	delete(f.chats, id)
	return nil
}

func testEmitter() *ws.Emitter {
	log := &logger.Logger{Log: zap.NewNop()}
	return ws.NewEmitter(ws.NewRegistry(), log, metrics.New())
}

func directChat(id, a, b string) *model.Chat {
	return &model.Chat{
		ID:           id,
		Name:         "One on one chat",
		AdminID:      a,
		Participants: []model.User{{ID: a}, {ID: b}},
	}
}

func newTestUseCase(chats *fakeChatRepo, messages *fakeMessageRepo) MessageUseCase {
	return NewMessageUseCase(messages, chats, testEmitter(), &logger.Logger{Log: zap.NewNop()})
}

func TestSendMessagePersistsAndUpdatesLastMessage(t *testing.T) {
	chats := newFakeChatRepo(directChat("chat-1", "alice", "bob"))
	messages := newFakeMessageRepo()
	uc := newTestUseCase(chats, messages)

	msg, err := uc.SendMessage(context.Background(), "alice", "chat-1", "hey bob", nil)
	require.NoError(t, err)
	assert.Equal(t, "alice", msg.SenderID)
	assert.Equal(t, "chat-1", msg.ChatID)

	chat, _ := chats.GetByID(context.Background(), "chat-1")
	require.NotNil(t, chat.LastMessageID)
	assert.Equal(t, msg.ID, *chat.LastMessageID)
}

func TestSendMessageRequiresContentOrAttachments(t *testing.T) {
	chats := newFakeChatRepo(directChat("chat-1", "alice", "bob"))
	uc := newTestUseCase(chats, newFakeMessageRepo())

	_, err := uc.SendMessage(context.Background(), "alice", "chat-1", "", nil)
	assert.ErrorIs(t, err, ErrEmptyMessage)

	// Attachments alone are enough.
	_, err = uc.SendMessage(context.Background(), "alice", "chat-1", "",
		[]model.Attachment{{URL: "http://localhost/files/cat.png"}})
	assert.NoError(t, err)
}

func TestSendMessageRejectsNonParticipant(t *testing.T) {
	chats := newFakeChatRepo(directChat("chat-1", "alice", "bob"))
	uc := newTestUseCase(chats, newFakeMessageRepo())

	_, err := uc.SendMessage(context.Background(), "mallory", "chat-1", "hi", nil)
	assert.ErrorIs(t, err, ErrNotParticipant)
}

func TestSendMessageUnknownChat(t *testing.T) {
	uc := newTestUseCase(newFakeChatRepo(), newFakeMessageRepo())

	_, err := uc.SendMessage(context.Background(), "alice", "chat-404", "hi", nil)
	assert.ErrorIs(t, err, ErrChatNotFound)
}

func TestGetMessagesNewestFirst(t *testing.T) {
	chats := newFakeChatRepo(directChat("chat-1", "alice", "bob"))
	messages := newFakeMessageRepo()
	uc := newTestUseCase(chats, messages)

	first, err := uc.SendMessage(context.Background(), "alice", "chat-1", "first", nil)
	require.NoError(t, err)
	second, err := uc.SendMessage(context.Background(), "bob", "chat-1", "second", nil)
	require.NoError(t, err)

	got, err := uc.GetMessages(context.Background(), "alice", "chat-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, second.ID, got[0].ID)
	assert.Equal(t, first.ID, got[1].ID)
}

func TestDeleteMessageOnlyBySender(t *testing.T) {
	chats := newFakeChatRepo(directChat("chat-1", "alice", "bob"))
	messages := newFakeMessageRepo()
	uc := newTestUseCase(chats, messages)

	msg, err := uc.SendMessage(context.Background(), "alice", "chat-1", "mine", nil)
	require.NoError(t, err)

	err = uc.DeleteMessage(context.Background(), "bob", "chat-1", msg.ID)
	assert.ErrorIs(t, err, ErrNotSender)

	err = uc.DeleteMessage(context.Background(), "alice", "chat-1", msg.ID)
	assert.NoError(t, err)

	_, err = messages.GetByID(context.Background(), msg.ID)
	assert.Error(t, err)
}

func TestDeleteMessageRepairsLastMessage(t *testing.T) {
	chats := newFakeChatRepo(directChat("chat-1", "alice", "bob"))
	messages := newFakeMessageRepo()
	uc := newTestUseCase(chats, messages)

	older, err := uc.SendMessage(context.Background(), "alice", "chat-1", "older", nil)
	require.NoError(t, err)
	newer, err := uc.SendMessage(context.Background(), "alice", "chat-1", "newer", nil)
	require.NoError(t, err)

	require.NoError(t, uc.DeleteMessage(context.Background(), "alice", "chat-1", newer.ID))

	chat, _ := chats.GetByID(context.Background(), "chat-1")
	require.NotNil(t, chat.LastMessageID)
	assert.Equal(t, older.ID, *chat.LastMessageID)

	// Deleting the only remaining message clears the reference.
	require.NoError(t, uc.DeleteMessage(context.Background(), "alice", "chat-1", older.ID))
	chat, _ = chats.GetByID(context.Background(), "chat-1")
	assert.Nil(t, chat.LastMessageID)
}

func TestDeleteMessageFromWrongChat(t *testing.T) {
	chats := newFakeChatRepo(
		directChat("chat-1", "alice", "bob"),
		directChat("chat-2", "alice", "carol"),
	)
	messages := newFakeMessageRepo()
	uc := newTestUseCase(chats, messages)

	msg, err := uc.SendMessage(context.Background(), "alice", "chat-1", "hello", nil)
	require.NoError(t, err)

	err = uc.DeleteMessage(context.Background(), "alice", "chat-2", msg.ID)
	assert.ErrorIs(t, err, ErrMessageNotFound)
}
