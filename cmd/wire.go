package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/bnema/roomtodo/internal/adapters/rest"
	sessionstore "github.com/bnema/roomtodo/internal/adapters/session"
	"github.com/bnema/roomtodo/internal/adapters/ws"
	"github.com/bnema/roomtodo/internal/application"
	"github.com/bnema/roomtodo/internal/domain"
	"github.com/bnema/roomtodo/internal/ports"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	apiBaseURLKey     = "api.base_url"
	logDebugKey       = "log.debug"
	defaultAPIBaseURL = "http://127.0.0.1:8793/api"
)

type app struct {
	controller *application.Controller
	client     *rest.Client
	session    ports.SessionStore
	logger     *zap.Logger
	apiBaseURL string
}

func wireApp() (*app, error) {
	cfg := viper.New()
	cfg.SetEnvPrefix("ROOMTODO")
	cfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	cfg.AutomaticEnv()
	cfg.SetDefault(apiBaseURLKey, defaultAPIBaseURL)
	cfg.SetDefault(logDebugKey, false)

	store, err := sessionstore.NewStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("wire session store: %w", err)
	}

	logger, err := newLogger(cfg.GetBool(logDebugKey))
	if err != nil {
		return nil, fmt.Errorf("wire logger: %w", err)
	}

	baseURL := cfg.GetString(apiBaseURLKey)
	if baseURL == "" {
		return nil, errors.New("api base url is empty")
	}

	client := rest.NewClient(baseURL, http.DefaultClient)
	dialer := ws.NewDialer(baseURL, logger)

	return &app{
		controller: application.NewController(client, client, dialer, store, logger, ports.SystemClock{}),
		client:     client,
		session:    store,
		logger:     logger,
		apiBaseURL: baseURL,
	}, nil
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return cfg.Build()
}

// resolveRoom returns the room remembered by the session store, re-validated
// against the backend. A stored id that no longer resolves is cleared, the
// same way the original client dropped a dead room id from its address bar.
func (a *app) resolveRoom(ctx context.Context) (domain.Room, error) {
	id, err := a.session.CurrentRoom()
	if err != nil {
		return domain.Room{}, fmt.Errorf("read session room: %w", err)
	}
	if id == "" {
		return domain.Room{}, domain.ErrNoOpenRoom
	}

	room, err := a.client.GetRoom(ctx, id)
	if err != nil {
		if domain.IsFetchError(err) {
			if clearErr := a.session.Clear(); clearErr != nil {
				return domain.Room{}, fmt.Errorf("clear stale session room: %w", clearErr)
			}
			return domain.Room{}, fmt.Errorf("stored room %s no longer resolves: %w", id, domain.ErrNoOpenRoom)
		}
		return domain.Room{}, err
	}
	return room, nil
}
