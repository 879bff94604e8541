package repository

import (
	"context"

	"github.com/banterhq/banter/domain/model"
)

type ChatRepository interface {
	Create(ctx context.Context, chat *model.Chat) error
	GetByID(ctx context.Context, id string) (*model.Chat, error)
	GetByParticipant(ctx context.Context, userID string) ([]*model.Chat, error)
	FindOneOnOne(ctx context.Context, firstUserID, secondUserID string) (*model.Chat, error)
	Update(ctx context.Context, chat *model.Chat) error
	SetLastMessage(ctx context.Context, chatID string, messageID *string) error
	AddParticipant(ctx context.Context, chatID, userID string) error
	RemoveParticipant(ctx context.Context, chatID, userID string) error
	Delete(ctx context.Context, id string) error
}
