package dependency

import (
	"fmt"

	authUseCase "github.com/banterhq/banter/application/usecases/auth"
	chatUseCase "github.com/banterhq/banter/application/usecases/chat"
	messageUseCase "github.com/banterhq/banter/application/usecases/message"
	"github.com/banterhq/banter/domain/repository"
	"github.com/banterhq/banter/infrastructure/cache"
	"github.com/banterhq/banter/infrastructure/config"
	"github.com/banterhq/banter/infrastructure/logger"
	"github.com/banterhq/banter/infrastructure/metrics"
	"github.com/banterhq/banter/infrastructure/token"
	"github.com/banterhq/banter/infrastructure/ws"
	authCtrl "github.com/banterhq/banter/presentation/controllers/auth"
	chatCtrl "github.com/banterhq/banter/presentation/controllers/chat"
	messageCtrl "github.com/banterhq/banter/presentation/controllers/message"
	wsCtrl "github.com/banterhq/banter/presentation/controllers/websocket"
)

type Container struct {
	Config *config.Config
	Logger *logger.Logger

	Metrics *metrics.Metrics
	Tokens  *token.Manager

	UserRepo    repository.UserRepository
	ChatRepo    repository.ChatRepository
	MessageRepo repository.MessageRepository

	WSRegistry *ws.Registry
	WSEmitter  *ws.Emitter
	WSRouter   *ws.Router

	AuthUC    authUseCase.AuthUseCase
	ChatUC    chatUseCase.ChatUseCase
	MessageUC messageUseCase.MessageUseCase

	AuthController      authCtrl.AuthController
	ChatController      chatCtrl.ChatController
	MessageController   messageCtrl.MessageController
	WebsocketController wsCtrl.WebSocketController
}

func NewContainer() (*Container, error) {
	c := &Container{}

	c.Config = config.GetConfig()

	loggerInstance, err := logger.NewLogger(c.Config)
	if err != nil {
		return nil, fmt.Errorf("error initializing logger: %w", err)
	}
	c.Logger = loggerInstance

	c.Logger.Info("Initializing Banter API dependencies")

	if err := cache.InitRedis(c.Config); err != nil {
		return nil, fmt.Errorf("error initializing cache: %w", err)
	}

	if err := c.initInfrastructure(); err != nil {
		return nil, fmt.Errorf("error initializing infrastructure: %w", err)
	}

	c.initRepositories()

	c.initWebSocket()

	c.initUseCases()

	c.initControllers()

	c.Logger.Info("All dependencies initialized successfully")

	return c, nil
}
