package container

import (
	"context"
	"net/http"

	"github.com/USSTM/wms-backend/internal/api"
	"github.com/USSTM/wms-backend/internal/auth"
	"github.com/USSTM/wms-backend/internal/config"
	"github.com/USSTM/wms-backend/internal/logging"
	"github.com/USSTM/wms-backend/internal/metrics"
	"github.com/USSTM/wms-backend/internal/queue"
	"github.com/USSTM/wms-backend/internal/rbac"
	"github.com/USSTM/wms-backend/internal/repository"
	"github.com/USSTM/wms-backend/internal/scheduler"
	"github.com/USSTM/wms-backend/internal/stock"
)

type Container struct {
	Config        *config.Config
	Store         *Store
	Queue         *queue.TaskQueue
	Repository    *repository.Repository
	Metrics       *metrics.Metrics
	Authorizer    *rbac.Authorizer
	Authenticator *auth.Authenticator
	Reloader      *scheduler.Reloader
	Server        *api.Server
	Handler       http.Handler
}

func New(cfg *config.Config) (*Container, error) {
	ctx := context.Background()
	c := &Container{Config: cfg}

	store, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	c.Store = store

	// writes go straight to the store unless a worker persists them
	var persister repository.Persister = repository.StorePersister{Store: store}
	if cfg.Store.PersistAsync {
		taskQueue, err := queue.NewQueue(&cfg.Redis)
		if err != nil {
			c.Cleanup()
			return nil, err
		}
		c.Queue = taskQueue
		persister = queue.NewPersister(taskQueue)
	}

	c.Repository = repository.New(store, persister)
	if err := c.Repository.Load(ctx); err != nil {
		logging.Warn("Reference data loaded with errors", "error", err)
	}
	logging.Info("Reference data loaded", "counts", c.Repository.Counts())

	classifier := stock.NewClassifier(cfg.Organisation.MyPools)

	var decisions rbac.DecisionRecorder
	var reloads scheduler.ReloadRecorder
	if cfg.Metrics.Enabled {
		c.Metrics = metrics.New(c.Repository, classifier)
		decisions = c.Metrics
		reloads = c.Metrics
	}

	c.Authorizer = rbac.NewAuthorizer(c.Repository, decisions)
	c.Authenticator = auth.NewAuthenticator(c.Repository)

	if cfg.Store.RefreshCron != "" {
		reloader, err := scheduler.NewReloader(cfg.Store.RefreshCron, c.Repository, reloads)
		if err != nil {
			c.Cleanup()
			return nil, err
		}
		c.Reloader = reloader
	}

	c.Server = api.NewServer(
		c.Repository,
		c.Authorizer,
		classifier,
		stock.NewInbound(cfg.Inbound.ReceivingPoolID, cfg.Inbound.ReceivingAreaID),
	)

	opts := api.RouterOptions{
		Authenticator: c.Authenticator,
		CORS:          &cfg.CORS,
	}
	if c.Metrics != nil {
		opts.Metrics = c.Metrics.Handler()
	}
	c.Handler, err = api.NewRouter(c.Server, opts)
	if err != nil {
		c.Cleanup()
		return nil, err
	}

	return c, nil
}

func (c *Container) Cleanup() {
	if c.Reloader != nil {
		c.Reloader.Stop()
		logging.Info("Reloader stopped")
	}
	if c.Queue != nil {
		c.Queue.Close()
		logging.Info("Queue client closed")
	}
	if c.Store != nil {
		c.Store.Close()
	}
}
