package dependency

import (
	"github.com/banterhq/banter/infrastructure/metrics"
	"github.com/banterhq/banter/infrastructure/persistence/database"
	"github.com/banterhq/banter/infrastructure/token"
)

func (c *Container) initInfrastructure() error {
	c.Metrics = metrics.New()

	c.Tokens = token.NewManager(c.Config)

	if err := database.InitDb(c.Config); err != nil {
		return err
	}

	c.Logger.Info("Infrastructure initialized successfully")

	return nil
}
