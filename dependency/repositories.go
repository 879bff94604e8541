package dependency

import (
	"github.com/banterhq/banter/infrastructure/persistence/database"
	"github.com/banterhq/banter/infrastructure/persistence/repository"
)

func (c *Container) initRepositories() {
	db := database.GetDb()

	c.UserRepo = repository.NewUserRepository(db)
	c.ChatRepo = repository.NewChatRepository(db)
	c.MessageRepo = repository.NewMessageRepository(db)

	c.Logger.Info("Repositories initialized successfully")
}
