package lambda

import (
	"context"
	"sync"

	"github.com/aws/aws-lambda-go/events"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/sirupsen/logrus"

	"pkgindex-web/internal/config"
	"pkgindex-web/pkg/server"
)

// Runtime builds the container once per Lambda execution environment and
// serves API Gateway proxy events through its router on warm invocations.
type Runtime struct {
	load func() (*config.Config, error)

	once      sync.Once
	mu        sync.Mutex
	container *server.Container
	proxy     *ginadapter.GinLambda
	initErr   error
}

// NewRuntime creates a runtime that loads its configuration with load.
func NewRuntime(load func() (*config.Config, error)) *Runtime {
	if load == nil {
		load = config.GetOptimizedConfig
	}
	return &Runtime{load: load}
}

func (rt *Runtime) init() error {
	rt.once.Do(func() {
		cfg, err := rt.load()
		if err != nil {
			rt.initErr = err
			return
		}

		container, err := server.NewContainer(cfg)
		if err != nil {
			rt.initErr = err
			return
		}

		rt.mu.Lock()
		rt.container = container
		rt.proxy = ginadapter.New(container.Router)
		rt.mu.Unlock()

		sc := config.GetServerlessConfig()
		container.Logger.WithFields(logrus.Fields{
			"deployment_mode": config.GetDeploymentMode(),
			"function":        sc.FunctionName,
			"stage":           sc.Stage,
			"url_prefix":      cfg.URLPrefix,
		}).Info("Lambda runtime initialized")
	})
	return rt.initErr
}

// Handle is the Lambda entrypoint.
func (rt *Runtime) Handle(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	if err := rt.init(); err != nil {
		return events.APIGatewayProxyResponse{}, err
	}

	rt.mu.Lock()
	proxy := rt.proxy
	rt.mu.Unlock()

	return proxy.ProxyWithContext(ctx, event)
}

// Cleanup closes the container when the execution environment shuts down.
func (rt *Runtime) Cleanup() error {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	if rt.container == nil {
		return nil
	}
	err := rt.container.Close()
	rt.container = nil
	return err
}
