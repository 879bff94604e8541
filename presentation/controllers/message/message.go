package message

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	messageUseCase "github.com/banterhq/banter/application/usecases/message"
	"github.com/banterhq/banter/presentation/middlewares"
)

type MessageController interface {
	GetMessages(ctx *gin.Context)
	SendMessage(ctx *gin.Context)
	DeleteMessage(ctx *gin.Context)
}

type messageController struct {
	usecase messageUseCase.MessageUseCase
}

func NewMessageController(usecase messageUseCase.MessageUseCase) MessageController {
	return &messageController{usecase: usecase}
}

func (c *messageController) GetMessages(ctx *gin.Context) {
	chatID := ctx.Param("chatId")
	if chatID == "" {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "chat ID is required",
		})
		return
	}

	user, exists := middlewares.CurrentUser(ctx)
	if !exists {
		unauthorized(ctx)
		return
	}

	messages, err := c.usecase.GetMessages(ctx.Request.Context(), user.ID, chatID)
	if err != nil {
		writeMessageError(ctx, err, "fetch_failed")
		return
	}

	ctx.JSON(http.StatusOK, MessagesResponse{
		Messages: messages,
		Count:    len(messages),
		ChatID:   chatID,
	})
}

func (c *messageController) SendMessage(ctx *gin.Context) {
	chatID := ctx.Param("chatId")
	if chatID == "" {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "chat ID is required",
		})
		return
	}

	var req SendMessageRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: middlewares.TranslateValidationError(err),
		})
		return
	}

	user, exists := middlewares.CurrentUser(ctx)
	if !exists {
		unauthorized(ctx)
		return
	}

	msg, err := c.usecase.SendMessage(ctx.Request.Context(), user.ID, chatID, req.Content, req.Attachments)
	if err != nil {
		writeMessageError(ctx, err, "send_failed")
		return
	}

	ctx.JSON(http.StatusCreated, MessageResponse{Message: msg})
}

func (c *messageController) DeleteMessage(ctx *gin.Context) {
	chatID := ctx.Param("chatId")
	messageID := ctx.Param("messageId")
	if chatID == "" || messageID == "" {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "chat ID and message ID are required",
		})
		return
	}

	user, exists := middlewares.CurrentUser(ctx)
	if !exists {
		unauthorized(ctx)
		return
	}

	if err := c.usecase.DeleteMessage(ctx.Request.Context(), user.ID, chatID, messageID); err != nil {
		writeMessageError(ctx, err, "delete_failed")
		return
	}

	ctx.JSON(http.StatusOK, MessageDeletedResponse{
		Success:   true,
		MessageID: messageID,
	})
}

func writeMessageError(ctx *gin.Context, err error, fallbackCode string) {
	status := http.StatusInternalServerError
	errorCode := fallbackCode

	switch {
	case errors.Is(err, messageUseCase.ErrChatNotFound),
		errors.Is(err, messageUseCase.ErrMessageNotFound):
		status = http.StatusNotFound
		errorCode = "not_found"
	case errors.Is(err, messageUseCase.ErrNotParticipant),
		errors.Is(err, messageUseCase.ErrNotSender):
		status = http.StatusForbidden
		errorCode = "forbidden"
	case errors.Is(err, messageUseCase.ErrEmptyMessage):
		status = http.StatusBadRequest
		errorCode = "invalid_request"
	}

	ctx.JSON(status, ErrorResponse{
		Error:   errorCode,
		Message: err.Error(),
	})
}

func unauthorized(ctx *gin.Context) {
	ctx.JSON(http.StatusUnauthorized, ErrorResponse{
		Error:   "unauthorized",
		Message: "user not found in context",
	})
}
