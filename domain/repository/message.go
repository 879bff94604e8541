package repository

import (
	"context"

	"github.com/banterhq/banter/domain/model"
)

type MessageRepository interface {
	Create(ctx context.Context, message *model.Message) error
	GetByID(ctx context.Context, id string) (*model.Message, error)
	GetByChat(ctx context.Context, chatID string) ([]*model.Message, error)
	GetLatestInChat(ctx context.Context, chatID string) (*model.Message, error)
	Delete(ctx context.Context, id string) error
	DeleteByChat(ctx context.Context, chatID string) error
}
