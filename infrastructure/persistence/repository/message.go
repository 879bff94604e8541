package repository

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/banterhq/banter/domain/model"
	"github.com/banterhq/banter/domain/repository"
)

type messageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) repository.MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(ctx context.Context, message *model.Message) error {
	if err := r.db.WithContext(ctx).Create(message).Error; err != nil {
		return errors.Wrap(err, "failed to create message")
	}
	return nil
}

func (r *messageRepository) GetByID(ctx context.Context, id string) (*model.Message, error) {
	var message model.Message
	err := r.db.WithContext(ctx).
		Preload("Sender").
		First(&message, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMessageNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get message by id")
	}
	return &message, nil
}

func (r *messageRepository) GetByChat(ctx context.Context, chatID string) ([]*model.Message, error) {
	var messages []*model.Message
	err := r.db.WithContext(ctx).
		Preload("Sender").
		Where("chat_id = ?", chatID).
		Order("created_at desc").
		Find(&messages).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list messages by chat")
	}
	return messages, nil
}

func (r *messageRepository) GetLatestInChat(ctx context.Context, chatID string) (*model.Message, error) {
	var message model.Message
	err := r.db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Order("created_at desc").
		First(&message).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMessageNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get latest message")
	}
	return &message, nil
}

func (r *messageRepository) Delete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Delete(&model.Message{}, "id = ?", id).Error; err != nil {
		return errors.Wrap(err, "failed to delete message")
	}
	return nil
}

func (r *messageRepository) DeleteByChat(ctx context.Context, chatID string) error {
	if err := r.db.WithContext(ctx).Delete(&model.Message{}, "chat_id = ?", chatID).Error; err != nil {
		return errors.Wrap(err, "failed to delete chat messages")
	}
	return nil
}
