package dependency

import (
	"github.com/banterhq/banter/infrastructure/ws"
)

func (c *Container) initWebSocket() {
	c.WSRegistry = ws.NewRegistry()
	c.WSEmitter = ws.NewEmitter(c.WSRegistry, c.Logger, c.Metrics)
	c.WSRouter = ws.NewRouter(c.WSRegistry, c.WSEmitter, c.Logger, c.Metrics)

	c.Logger.Info("WebSocket components initialized successfully")
}
