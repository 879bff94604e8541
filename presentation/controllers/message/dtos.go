package message

import "github.com/banterhq/banter/domain/model"

type SendMessageRequest struct {
	Content     string             `json:"content" binding:"max=2000"`
	Attachments []model.Attachment `json:"attachments" binding:"max=5,dive"`
}

type MessageResponse struct {
	Message *model.Message `json:"message"`
}

type MessagesResponse struct {
	Messages []*model.Message `json:"messages"`
	Count    int              `json:"count"`
	ChatID   string           `json:"chat_id"`
}

type MessageDeletedResponse struct {
	Success   bool   `json:"success"`
	MessageID string `json:"message_id"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
