package chat

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	chatUseCase "github.com/banterhq/banter/application/usecases/chat"
	"github.com/banterhq/banter/presentation/middlewares"
)

type ChatController interface {
	GetAllChats(ctx *gin.Context)
	SearchAvailableUsers(ctx *gin.Context)
	CreateOrGetOneOnOneChat(ctx *gin.Context)
	CreateGroupChat(ctx *gin.Context)
	GetGroupChatDetails(ctx *gin.Context)
	RenameGroupChat(ctx *gin.Context)
	DeleteGroupChat(ctx *gin.Context)
	DeleteOneOnOneChat(ctx *gin.Context)
	LeaveGroupChat(ctx *gin.Context)
	AddParticipant(ctx *gin.Context)
	RemoveParticipant(ctx *gin.Context)
}

type chatController struct {
	usecase chatUseCase.ChatUseCase
}

func NewChatController(usecase chatUseCase.ChatUseCase) ChatController {
	return &chatController{usecase: usecase}
}

func (c *chatController) GetAllChats(ctx *gin.Context) {
	user, exists := middlewares.CurrentUser(ctx)
	if !exists {
		unauthorized(ctx)
		return
	}

	chats, err := c.usecase.GetAllChats(ctx.Request.Context(), user.ID)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "fetch_failed",
			Message: err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusOK, ChatsResponse{Chats: chats, Count: len(chats)})
}

func (c *chatController) SearchAvailableUsers(ctx *gin.Context) {
	user, exists := middlewares.CurrentUser(ctx)
	if !exists {
		unauthorized(ctx)
		return
	}

	users, err := c.usecase.SearchAvailableUsers(ctx.Request.Context(), user.ID)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "fetch_failed",
			Message: err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusOK, UsersResponse{Users: users, Count: len(users)})
}

func (c *chatController) CreateOrGetOneOnOneChat(ctx *gin.Context) {
	receiverID := ctx.Param("receiverId")
	if receiverID == "" {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "receiver ID is required",
		})
		return
	}

	user, exists := middlewares.CurrentUser(ctx)
	if !exists {
		unauthorized(ctx)
		return
	}

	chat, created, err := c.usecase.CreateOrGetOneOnOneChat(ctx.Request.Context(), user.ID, receiverID)
	if err != nil {
		writeChatError(ctx, err, "create_failed")
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	ctx.JSON(status, ChatResponse{Chat: chat})
}

func (c *chatController) CreateGroupChat(ctx *gin.Context) {
	var req CreateGroupChatRequest
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

	chat, err := c.usecase.CreateGroupChat(ctx.Request.Context(), user.ID, req.Name, req.Participants)
	if err != nil {
		writeChatError(ctx, err, "create_failed")
		return
	}

	ctx.JSON(http.StatusCreated, ChatResponse{Chat: chat})
}

func (c *chatController) GetGroupChatDetails(ctx *gin.Context) {
	chatID := ctx.Param("chatId")
	if chatID == "" {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "chat ID is required",
		})
		return
	}

	chat, err := c.usecase.GetGroupChatDetails(ctx.Request.Context(), chatID)
	if err != nil {
		writeChatError(ctx, err, "fetch_failed")
		return
	}

	ctx.JSON(http.StatusOK, ChatResponse{Chat: chat})
}

func (c *chatController) RenameGroupChat(ctx *gin.Context) {
	chatID := ctx.Param("chatId")
	if chatID == "" {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "chat ID is required",
		})
		return
	}

	var req RenameGroupChatRequest
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

	chat, err := c.usecase.RenameGroupChat(ctx.Request.Context(), user.ID, chatID, req.Name)
	if err != nil {
		writeChatError(ctx, err, "rename_failed")
		return
	}

	ctx.JSON(http.StatusOK, ChatResponse{Chat: chat})
}

func (c *chatController) DeleteGroupChat(ctx *gin.Context) {
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

	if err := c.usecase.DeleteGroupChat(ctx.Request.Context(), user.ID, chatID); err != nil {
		writeChatError(ctx, err, "delete_failed")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true})
}

func (c *chatController) DeleteOneOnOneChat(ctx *gin.Context) {
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

	if err := c.usecase.DeleteOneOnOneChat(ctx.Request.Context(), user.ID, chatID); err != nil {
		writeChatError(ctx, err, "delete_failed")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true})
}

func (c *chatController) LeaveGroupChat(ctx *gin.Context) {
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

	chat, err := c.usecase.LeaveGroupChat(ctx.Request.Context(), user.ID, chatID)
	if err != nil {
		writeChatError(ctx, err, "leave_failed")
		return
	}

	ctx.JSON(http.StatusOK, ChatResponse{Chat: chat})
}

func (c *chatController) AddParticipant(ctx *gin.Context) {
	chatID := ctx.Param("chatId")
	participantID := ctx.Param("participantId")
	if chatID == "" || participantID == "" {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "chat ID and participant ID are required",
		})
		return
	}

	user, exists := middlewares.CurrentUser(ctx)
	if !exists {
		unauthorized(ctx)
		return
	}

	chat, err := c.usecase.AddParticipant(ctx.Request.Context(), user.ID, chatID, participantID)
	if err != nil {
		writeChatError(ctx, err, "add_failed")
		return
	}

	ctx.JSON(http.StatusOK, ChatResponse{Chat: chat})
}

func (c *chatController) RemoveParticipant(ctx *gin.Context) {
	chatID := ctx.Param("chatId")
	participantID := ctx.Param("participantId")
	if chatID == "" || participantID == "" {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "chat ID and participant ID are required",
		})
		return
	}

	user, exists := middlewares.CurrentUser(ctx)
	if !exists {
		unauthorized(ctx)
		return
	}

	chat, err := c.usecase.RemoveParticipant(ctx.Request.Context(), user.ID, chatID, participantID)
	if err != nil {
		writeChatError(ctx, err, "remove_failed")
		return
	}

	ctx.JSON(http.StatusOK, ChatResponse{Chat: chat})
}

func writeChatError(ctx *gin.Context, err error, fallbackCode string) {
	status := http.StatusInternalServerError
	errorCode := fallbackCode

	switch {
	case errors.Is(err, chatUseCase.ErrChatNotFound),
		errors.Is(err, chatUseCase.ErrReceiverNotFound):
		status = http.StatusNotFound
		errorCode = "not_found"
	case errors.Is(err, chatUseCase.ErrNotAdmin),
		errors.Is(err, chatUseCase.ErrNotParticipant):
		status = http.StatusForbidden
		errorCode = "forbidden"
	case errors.Is(err, chatUseCase.ErrAlreadyParticipant):
		status = http.StatusConflict
		errorCode = "already_participant"
	case errors.Is(err, chatUseCase.ErrSelfChat),
		errors.Is(err, chatUseCase.ErrCreatorInParticipants),
		errors.Is(err, chatUseCase.ErrTooFewParticipants),
		errors.Is(err, chatUseCase.ErrParticipantNotInChat):
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
