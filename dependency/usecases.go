package dependency

import (
	authUseCase "github.com/banterhq/banter/application/usecases/auth"
	chatUseCase "github.com/banterhq/banter/application/usecases/chat"
	messageUseCase "github.com/banterhq/banter/application/usecases/message"
	"github.com/banterhq/banter/infrastructure/cache"
)

func (c *Container) initUseCases() {
	c.AuthUC = authUseCase.NewAuthUseCase(c.UserRepo, c.Tokens, cache.GetRedis(), c.Logger)
	c.ChatUC = chatUseCase.NewChatUseCase(c.ChatRepo, c.UserRepo, c.MessageRepo, c.WSEmitter, c.Logger)
	c.MessageUC = messageUseCase.NewMessageUseCase(c.MessageRepo, c.ChatRepo, c.WSEmitter, c.Logger)

	c.Logger.Info("Use cases initialized successfully")
}
