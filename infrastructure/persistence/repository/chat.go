package repository

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/banterhq/banter/domain/model"
	"github.com/banterhq/banter/domain/repository"
)

type chatRepository struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) repository.ChatRepository {
	return &chatRepository{db: db}
}

func (r *chatRepository) Create(ctx context.Context, chat *model.Chat) error {
	if err := r.db.WithContext(ctx).Create(chat).Error; err != nil {
		return errors.Wrap(err, "failed to create chat")
	}
	return nil
}

func (r *chatRepository) GetByID(ctx context.Context, id string) (*model.Chat, error) {
	var chat model.Chat
	err := r.db.WithContext(ctx).
		Preload("Participants").
		Preload("LastMessage").
		Preload("LastMessage.Sender").
		First(&chat, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrChatNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get chat by id")
	}
	return &chat, nil
}

func (r *chatRepository) GetByParticipant(ctx context.Context, userID string) ([]*model.Chat, error) {
	var chats []*model.Chat
	err := r.db.WithContext(ctx).
		Preload("Participants").
		Preload("LastMessage").
		Preload("LastMessage.Sender").
		Joins("JOIN chat_participants cp ON cp.chat_id = chats.id").
		Where("cp.user_id = ?", userID).
		Order("chats.updated_at desc").
		Find(&chats).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list chats by participant")
	}
	return chats, nil
}

func (r *chatRepository) FindOneOnOne(ctx context.Context, firstUserID, secondUserID string) (*model.Chat, error) {
	var chat model.Chat
	err := r.db.WithContext(ctx).
		Preload("Participants").
		Preload("LastMessage").
		Preload("LastMessage.Sender").
		Where("is_group_chat = ?", false).
		Where("id IN (?)", r.db.
			Table("chat_participants").
			Select("chat_id").
			Where("user_id IN ?", []string{firstUserID, secondUserID}).
			Group("chat_id").
			Having("COUNT(DISTINCT user_id) = 2"),
		).
		First(&chat).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrChatNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to find one-on-one chat")
	}
	return &chat, nil
}

func (r *chatRepository) Update(ctx context.Context, chat *model.Chat) error {
	if err := r.db.WithContext(ctx).Omit("Participants").Save(chat).Error; err != nil {
		return errors.Wrap(err, "failed to update chat")
	}
	return nil
}

func (r *chatRepository) SetLastMessage(ctx context.Context, chatID string, messageID *string) error {
	err := r.db.WithContext(ctx).
		Model(&model.Chat{}).
		Where("id = ?", chatID).
		Update("last_message_id", messageID).Error
	if err != nil {
		return errors.Wrap(err, "failed to set last message")
	}
	return nil
}

func (r *chatRepository) AddParticipant(ctx context.Context, chatID, userID string) error {
	err := r.db.WithContext(ctx).
		Model(&model.Chat{ID: chatID}).
		Association("Participants").
		Append(&model.User{ID: userID})
	if err != nil {
		return errors.Wrap(err, "failed to add participant")
	}
	return nil
}

func (r *chatRepository) RemoveParticipant(ctx context.Context, chatID, userID string) error {
	err := r.db.WithContext(ctx).
		Model(&model.Chat{ID: chatID}).
		Association("Participants").
		Delete(&model.User{ID: userID})
	if err != nil {
		return errors.Wrap(err, "failed to remove participant")
	}
	return nil
}

func (r *chatRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		chat := model.Chat{ID: id}
		if err := tx.Model(&chat).Association("Participants").Clear(); err != nil {
			return errors.Wrap(err, "failed to clear participants")
		}
		if err := tx.Delete(&chat).Error; err != nil {
			return errors.Wrap(err, "failed to delete chat")
		}
		return nil
	})
}
