package chat

import "github.com/banterhq/banter/domain/model"

type CreateGroupChatRequest struct {
	Name         string   `json:"name" binding:"required,min=1,max=100"`
	Participants []string `json:"participants" binding:"required,gte=2,dive,uuid"`
}

type RenameGroupChatRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
}

type ChatResponse struct {
	Chat *model.Chat `json:"chat"`
}

type ChatsResponse struct {
	Chats []*model.Chat `json:"chats"`
	Count int           `json:"count"`
}

type UsersResponse struct {
	Users []*model.User `json:"users"`
	Count int           `json:"count"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
