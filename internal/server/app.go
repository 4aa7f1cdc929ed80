// Package server initializes and runs the main application server. It wires
// the user repository, tab store, realtime hub, and HTTP endpoint together
// and handles graceful shutdown on OS signals.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/avolkovs/tabshare/internal/common"
	"github.com/avolkovs/tabshare/internal/filex"
	"github.com/avolkovs/tabshare/internal/logging"
	"github.com/avolkovs/tabshare/internal/server/config"
	httpserver "github.com/avolkovs/tabshare/internal/server/http"
	"github.com/avolkovs/tabshare/internal/server/realtime"
	usersrepo "github.com/avolkovs/tabshare/internal/server/repositories/users"
	"github.com/avolkovs/tabshare/internal/server/services"
	"github.com/avolkovs/tabshare/internal/server/tabs"
)

// Demo account created at startup when config.SeedDemoUser is set.
const (
	demoUsername = "testuser"
	demoPassword = "password123"
	demoEmail    = "test@example.com"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	userService *services.UserService
	tabStore    *tabs.Store
	hub         *realtime.Hub
	httpServer  *httpserver.Server
}

func NewApp(cfg *config.Config) (*App, error) {

	slogger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(slogger)

	dataDir, err := filex.EnsureDir(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("data dir init error: %w", err)
	}
	uploadDir, err := filex.EnsureDir(cfg.UploadDir)
	if err != nil {
		return nil, fmt.Errorf("upload dir init error: %w", err)
	}

	repo := usersrepo.NewFileRepository(filepath.Join(dataDir, "users.json"), logger)
	userService := services.NewUserService(repo, cfg)
	tabStore := tabs.NewStore(uploadDir, logger)
	hub := realtime.NewHub(logger)
	httpServer := httpserver.NewServer(cfg, logger, userService, tabStore, hub)

	return &App{
		config:      cfg,
		logger:      logger,
		userService: userService,
		tabStore:    tabStore,
		hub:         hub,
		httpServer:  httpServer,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// seedDemoUser creates the demo account if it does not exist yet.
func (app *App) seedDemoUser(ctx context.Context) {
	if _, err := app.userService.GetByUsername(ctx, demoUsername); err == nil {
		app.logger.Info(ctx, "demo user already exists", "username", demoUsername)
		return
	} else if !errors.Is(err, common.ErrNotFound) {
		app.logger.Error(ctx, "demo user lookup failed", "error", err.Error())
		return
	}

	user, err := app.userService.Register(ctx, demoUsername, demoPassword, demoEmail)
	if err != nil {
		app.logger.Error(ctx, "demo user creation failed", "error", err.Error())
		return
	}
	app.logger.Info(ctx, "demo user created", "username", user.Username, "user_id", user.ID)
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	if app.config.SeedDemoUser {
		app.seedDemoUser(ctx)
	}

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.hub.Run(ctx)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.httpServer.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}()

	wg.Wait()
}
