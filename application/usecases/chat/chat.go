package chat

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/banterhq/banter/domain/model"
	"github.com/banterhq/banter/domain/repository"
	"github.com/banterhq/banter/infrastructure/logger"
	pgrepo "github.com/banterhq/banter/infrastructure/persistence/repository"
	"github.com/banterhq/banter/infrastructure/ws"
)

var (
	ErrChatNotFound          = errors.New("chat does not exist")
	ErrReceiverNotFound      = errors.New("receiver does not exist")
	ErrSelfChat              = errors.New("you cannot chat with yourself")
	ErrNotAdmin              = errors.New("you are not an admin of this group")
	ErrNotParticipant        = errors.New("you are not a part of this chat")
	ErrAlreadyParticipant    = errors.New("participant already in the group chat")
	ErrParticipantNotInChat  = errors.New("participant does not exist in the group chat")
	ErrCreatorInParticipants = errors.New("participants should not contain the group creator")
	ErrTooFewParticipants    = errors.New("a group chat needs at least 3 distinct members")
)

const oneOnOneChatName = "One on one chat"

type ChatUseCase interface {
	GetAllChats(ctx context.Context, userID string) ([]*model.Chat, error)
	SearchAvailableUsers(ctx context.Context, userID string) ([]*model.User, error)
	CreateOrGetOneOnOneChat(ctx context.Context, userID, receiverID string) (*model.Chat, bool, error)
	CreateGroupChat(ctx context.Context, userID, name string, participantIDs []string) (*model.Chat, error)
	GetGroupChatDetails(ctx context.Context, chatID string) (*model.Chat, error)
	RenameGroupChat(ctx context.Context, userID, chatID, name string) (*model.Chat, error)
	DeleteGroupChat(ctx context.Context, userID, chatID string) error
	DeleteOneOnOneChat(ctx context.Context, userID, chatID string) error
	LeaveGroupChat(ctx context.Context, userID, chatID string) (*model.Chat, error)
	AddParticipant(ctx context.Context, userID, chatID, participantID string) (*model.Chat, error)
	RemoveParticipant(ctx context.Context, userID, chatID, participantID string) (*model.Chat, error)
	GetByID(ctx context.Context, chatID string) (*model.Chat, error)
}

type chatUseCase struct {
	chats    repository.ChatRepository
	users    repository.UserRepository
	messages repository.MessageRepository
	emitter  *ws.Emitter
	logger   *logger.Logger
}

func NewChatUseCase(
	chats repository.ChatRepository,
	users repository.UserRepository,
	messages repository.MessageRepository,
	emitter *ws.Emitter,
	logger *logger.Logger,
) ChatUseCase {
	return &chatUseCase{
		chats:    chats,
		users:    users,
		messages: messages,
		emitter:  emitter,
		logger:   logger,
	}
}

func (uc *chatUseCase) GetAllChats(ctx context.Context, userID string) ([]*model.Chat, error) {
	chats, err := uc.chats.GetByParticipant(ctx, userID)
	if err != nil {
		uc.logger.Error("failed to list chats", zap.Error(err), zap.String("userID", userID))
		return nil, fmt.Errorf("failed to list chats: %w", err)
	}
	return chats, nil
}

func (uc *chatUseCase) SearchAvailableUsers(ctx context.Context, userID string) ([]*model.User, error) {
	users, err := uc.users.SearchExcluding(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}
	return users, nil
}

// CreateOrGetOneOnOneChat returns the existing direct chat between the two
// users, or creates one. The second return reports whether a chat was
// created; only then is a newChat event pushed to the receiver's
// identity-room.
func (uc *chatUseCase) CreateOrGetOneOnOneChat(ctx context.Context, userID, receiverID string) (*model.Chat, bool, error) {
	if userID == receiverID {
		return nil, false, ErrSelfChat
	}

	if _, err := uc.users.GetByID(ctx, receiverID); err != nil {
		if errors.Is(err, pgrepo.ErrUserNotFound) {
			return nil, false, ErrReceiverNotFound
		}
		return nil, false, fmt.Errorf("failed to get receiver: %w", err)
	}

	existing, err := uc.chats.FindOneOnOne(ctx, userID, receiverID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, pgrepo.ErrChatNotFound) {
		return nil, false, fmt.Errorf("failed to look up direct chat: %w", err)
	}

	chat := &model.Chat{
		ID:          uuid.NewString(),
		Name:        oneOnOneChatName,
		IsGroupChat: false,
		AdminID:     userID,
		Participants: []model.User{
			{ID: userID},
			{ID: receiverID},
		},
	}

	if err := uc.chats.Create(ctx, chat); err != nil {
		uc.logger.Error("failed to create direct chat", zap.Error(err), zap.String("userID", userID))
		return nil, false, fmt.Errorf("failed to create chat: %w", err)
	}

	created, err := uc.chats.GetByID(ctx, chat.ID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to reload chat: %w", err)
	}

	uc.notifyParticipants(created, userID, ws.NewChatEvent)

	uc.logger.Info("direct chat created",
		zap.String("chatID", created.ID),
		zap.String("userID", userID),
		zap.String("receiverID", receiverID),
	)
	return created, true, nil
}

func (uc *chatUseCase) CreateGroupChat(ctx context.Context, userID, name string, participantIDs []string) (*model.Chat, error) {
	members := map[string]struct{}{userID: {}}
	for _, id := range participantIDs {
		if id == userID {
			return nil, ErrCreatorInParticipants
		}
		members[id] = struct{}{}
	}

	if len(members) < 3 {
		return nil, ErrTooFewParticipants
	}

	participants := make([]model.User, 0, len(members))
	for id := range members {
		participants = append(participants, model.User{ID: id})
	}

	chat := &model.Chat{
		ID:           uuid.NewString(),
		Name:         name,
		IsGroupChat:  true,
		AdminID:      userID,
		Participants: participants,
	}

	if err := uc.chats.Create(ctx, chat); err != nil {
		uc.logger.Error("failed to create group chat", zap.Error(err), zap.String("userID", userID))
		return nil, fmt.Errorf("failed to create group chat: %w", err)
	}

	created, err := uc.chats.GetByID(ctx, chat.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload chat: %w", err)
	}

	uc.notifyParticipants(created, userID, ws.NewChatEvent)

	uc.logger.Info("group chat created", zap.String("chatID", created.ID), zap.String("adminID", userID))
	return created, nil
}

func (uc *chatUseCase) GetGroupChatDetails(ctx context.Context, chatID string) (*model.Chat, error) {
	chat, err := uc.getChat(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if !chat.IsGroupChat {
		return nil, ErrChatNotFound
	}
	return chat, nil
}

// RenameGroupChat updates the group name and pushes updateGroupName to every
// participant's identity-room, the renamer included.
func (uc *chatUseCase) RenameGroupChat(ctx context.Context, userID, chatID, name string) (*model.Chat, error) {
	chat, err := uc.getGroupChatAsAdmin(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}

	chat.Name = name
	if err := uc.chats.Update(ctx, chat); err != nil {
		uc.logger.Error("failed to rename group chat", zap.Error(err), zap.String("chatID", chatID))
		return nil, fmt.Errorf("failed to rename group chat: %w", err)
	}

	updated, err := uc.chats.GetByID(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload chat: %w", err)
	}

	for _, id := range updated.ParticipantIDs() {
		uc.emitter.Emit(id, ws.UpdateGroupNameEvent, updated)
	}

	return updated, nil
}

func (uc *chatUseCase) DeleteGroupChat(ctx context.Context, userID, chatID string) error {
	chat, err := uc.getGroupChatAsAdmin(ctx, userID, chatID)
	if err != nil {
		return err
	}

	if err := uc.deleteChatCascade(ctx, chat); err != nil {
		return err
	}

	uc.notifyParticipants(chat, userID, ws.LeaveChatEvent)

	uc.logger.Info("group chat deleted", zap.String("chatID", chatID), zap.String("adminID", userID))
	return nil
}

func (uc *chatUseCase) DeleteOneOnOneChat(ctx context.Context, userID, chatID string) error {
	chat, err := uc.getChat(ctx, chatID)
	if err != nil {
		return err
	}
	if !chat.IsParticipant(userID) {
		return ErrNotParticipant
	}

	if err := uc.deleteChatCascade(ctx, chat); err != nil {
		return err
	}

	uc.notifyParticipants(chat, userID, ws.LeaveChatEvent)

	uc.logger.Info("direct chat deleted", zap.String("chatID", chatID), zap.String("userID", userID))
	return nil
}

func (uc *chatUseCase) LeaveGroupChat(ctx context.Context, userID, chatID string) (*model.Chat, error) {
	chat, err := uc.getChat(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if !chat.IsGroupChat {
		return nil, ErrChatNotFound
	}
	if !chat.IsParticipant(userID) {
		return nil, ErrNotParticipant
	}

	if err := uc.chats.RemoveParticipant(ctx, chatID, userID); err != nil {
		return nil, fmt.Errorf("failed to leave group chat: %w", err)
	}

	updated, err := uc.chats.GetByID(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload chat: %w", err)
	}

	uc.logger.Info("participant left group", zap.String("chatID", chatID), zap.String("userID", userID))
	return updated, nil
}

func (uc *chatUseCase) AddParticipant(ctx context.Context, userID, chatID, participantID string) (*model.Chat, error) {
	chat, err := uc.getGroupChatAsAdmin(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}
	if chat.IsParticipant(participantID) {
		return nil, ErrAlreadyParticipant
	}

	if err := uc.chats.AddParticipant(ctx, chatID, participantID); err != nil {
		return nil, fmt.Errorf("failed to add participant: %w", err)
	}

	updated, err := uc.chats.GetByID(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload chat: %w", err)
	}

	uc.emitter.Emit(participantID, ws.NewChatEvent, updated)

	uc.logger.Info("participant added",
		zap.String("chatID", chatID),
		zap.String("participantID", participantID),
	)
	return updated, nil
}

func (uc *chatUseCase) RemoveParticipant(ctx context.Context, userID, chatID, participantID string) (*model.Chat, error) {
	chat, err := uc.getGroupChatAsAdmin(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}
	if !chat.IsParticipant(participantID) {
		return nil, ErrParticipantNotInChat
	}

	if err := uc.chats.RemoveParticipant(ctx, chatID, participantID); err != nil {
		return nil, fmt.Errorf("failed to remove participant: %w", err)
	}

	updated, err := uc.chats.GetByID(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload chat: %w", err)
	}

	uc.emitter.Emit(participantID, ws.LeaveChatEvent, updated)

	uc.logger.Info("participant removed",
		zap.String("chatID", chatID),
		zap.String("participantID", participantID),
	)
	return updated, nil
}

func (uc *chatUseCase) GetByID(ctx context.Context, chatID string) (*model.Chat, error) {
	return uc.getChat(ctx, chatID)
}

func (uc *chatUseCase) getChat(ctx context.Context, chatID string) (*model.Chat, error) {
	chat, err := uc.chats.GetByID(ctx, chatID)
	if errors.Is(err, pgrepo.ErrChatNotFound) {
		return nil, ErrChatNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get chat: %w", err)
	}
	return chat, nil
}

func (uc *chatUseCase) getGroupChatAsAdmin(ctx context.Context, userID, chatID string) (*model.Chat, error) {
	chat, err := uc.getChat(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if !chat.IsGroupChat {
		return nil, ErrChatNotFound
	}
	if chat.AdminID != userID {
		return nil, ErrNotAdmin
	}
	return chat, nil
}

// deleteChatCascade removes the chat's messages before the chat itself; the
// last-message reference goes first so the messages can be deleted.
func (uc *chatUseCase) deleteChatCascade(ctx context.Context, chat *model.Chat) error {
	if err := uc.chats.SetLastMessage(ctx, chat.ID, nil); err != nil {
		return fmt.Errorf("failed to clear last message: %w", err)
	}
	if err := uc.messages.DeleteByChat(ctx, chat.ID); err != nil {
		return fmt.Errorf("failed to delete chat messages: %w", err)
	}
	if err := uc.chats.Delete(ctx, chat.ID); err != nil {
		return fmt.Errorf("failed to delete chat: %w", err)
	}
	return nil
}

// notifyParticipants pushes an event about the chat to every participant's
// identity-room except the acting user's own.
func (uc *chatUseCase) notifyParticipants(chat *model.Chat, actorID string, event string) {
	for _, id := range chat.OtherParticipantIDs(actorID) {
		uc.emitter.Emit(id, event, chat)
	}
}
