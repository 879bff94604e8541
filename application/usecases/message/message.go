package message

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
	ErrChatNotFound    = errors.New("chat does not exist")
	ErrMessageNotFound = errors.New("message does not exist")
	ErrNotParticipant  = errors.New("you are not a part of this chat")
	ErrNotSender       = errors.New("you are not authorised to delete this message")
	ErrEmptyMessage    = errors.New("message content or attachments are required")
)

type MessageUseCase interface {
	GetMessages(ctx context.Context, userID, chatID string) ([]*model.Message, error)
	SendMessage(ctx context.Context, userID, chatID, content string, attachments []model.Attachment) (*model.Message, error)
	DeleteMessage(ctx context.Context, userID, chatID, messageID string) error
}

type messageUseCase struct {
	messages repository.MessageRepository
	chats    repository.ChatRepository
	emitter  *ws.Emitter
	logger   *logger.Logger
}

func NewMessageUseCase(
	messages repository.MessageRepository,
	chats repository.ChatRepository,
	emitter *ws.Emitter,
	logger *logger.Logger,
) MessageUseCase {
	return &messageUseCase{
		messages: messages,
		chats:    chats,
		emitter:  emitter,
		logger:   logger,
	}
}

func (uc *messageUseCase) GetMessages(ctx context.Context, userID, chatID string) ([]*model.Message, error) {
	if _, err := uc.getChatAsParticipant(ctx, userID, chatID); err != nil {
		return nil, err
	}

	messages, err := uc.messages.GetByChat(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return messages, nil
}

// SendMessage persists the message, records it as the chat's last message and
// pushes messageReceived to every other participant's identity-room.
func (uc *messageUseCase) SendMessage(ctx context.Context, userID, chatID, content string, attachments []model.Attachment) (*model.Message, error) {
	if content == "" && len(attachments) == 0 {
		return nil, ErrEmptyMessage
	}

	chat, err := uc.getChatAsParticipant(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}

	message := &model.Message{
		ID:          uuid.NewString(),
		ChatID:      chatID,
		SenderID:    userID,
		Content:     content,
		Attachments: attachments,
	}

	if err := uc.messages.Create(ctx, message); err != nil {
		uc.logger.Error("failed to create message", zap.Error(err), zap.String("chatID", chatID))
		return nil, fmt.Errorf("failed to create message: %w", err)
	}

	if err := uc.chats.SetLastMessage(ctx, chatID, &message.ID); err != nil {
		return nil, fmt.Errorf("failed to update last message: %w", err)
	}

	created, err := uc.messages.GetByID(ctx, message.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload message: %w", err)
	}

	for _, id := range chat.OtherParticipantIDs(userID) {
		uc.emitter.Emit(id, ws.MessageReceivedEvent, created)
	}

	uc.logger.Info("message sent",
		zap.String("messageID", created.ID),
		zap.String("chatID", chatID),
		zap.String("senderID", userID),
	)
	return created, nil
}

// DeleteMessage removes a message its author sent. When the deleted message
// was the chat's latest, the reference is repaired to the next most recent
// one. Every other participant gets a messageDeleted event.
func (uc *messageUseCase) DeleteMessage(ctx context.Context, userID, chatID, messageID string) error {
	chat, err := uc.getChatAsParticipant(ctx, userID, chatID)
	if err != nil {
		return err
	}

	message, err := uc.messages.GetByID(ctx, messageID)
	if errors.Is(err, pgrepo.ErrMessageNotFound) {
		return ErrMessageNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to get message: %w", err)
	}
	if message.ChatID != chatID {
		return ErrMessageNotFound
	}
	if message.SenderID != userID {
		return ErrNotSender
	}

	if err := uc.messages.Delete(ctx, messageID); err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}

	if chat.LastMessageID != nil && *chat.LastMessageID == messageID {
		if err := uc.repairLastMessage(ctx, chatID); err != nil {
			return err
		}
	}

	for _, id := range chat.OtherParticipantIDs(userID) {
		uc.emitter.Emit(id, ws.MessageDeletedEvent, message)
	}

	uc.logger.Info("message deleted",
		zap.String("messageID", messageID),
		zap.String("chatID", chatID),
	)
	return nil
}

func (uc *messageUseCase) getChatAsParticipant(ctx context.Context, userID, chatID string) (*model.Chat, error) {
	chat, err := uc.chats.GetByID(ctx, chatID)
	if errors.Is(err, pgrepo.ErrChatNotFound) {
		return nil, ErrChatNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get chat: %w", err)
	}
	if !chat.IsParticipant(userID) {
		return nil, ErrNotParticipant
	}
	return chat, nil
}

func (uc *messageUseCase) repairLastMessage(ctx context.Context, chatID string) error {
	latest, err := uc.messages.GetLatestInChat(ctx, chatID)
	if errors.Is(err, pgrepo.ErrMessageNotFound) {
		return uc.chats.SetLastMessage(ctx, chatID, nil)
	}
	if err != nil {
		return fmt.Errorf("failed to find latest message: %w", err)
	}
	return uc.chats.SetLastMessage(ctx, chatID, &latest.ID)
}
