// Package acs implements the auto-configuration server side of CWMP:
// one HTTP endpoint devices POST their sessions to, a device registry
// fed by Inform traffic, and a per-device task queue whose entries are
// turned into RPCs one per session.
package acs

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/nanoncore/nano-access/model"
)

// Config carries the ACS listener settings. Zero values fall back to
// the CWMP defaults.
type Config struct {
	// Addr is the listen address, ":7547" when empty.
	Addr string

	// Username and Password protect the CWMP endpoint with HTTP Basic
	// auth. Empty Username disables the check.
	Username string
	Password string

	// ConnReqUsername and ConnReqPassword answer the Digest challenge
	// of device connection request endpoints.
	ConnReqUsername string
	ConnReqPassword string

	// ConnReqTimeout bounds one connection request round trip.
	ConnReqTimeout time.Duration
}

// Server is the ACS. Construct with NewServer, run with Start.
type Server struct {
	config  Config
	echo    *echo.Echo
	devices DeviceStore
	tasks   TaskStore
	client  *http.Client
	logger  *zap.Logger
}

// NewServer wires the ACS routes over the given stores. A nil logger
// disables logging.
func NewServer(config Config, devices DeviceStore, tasks TaskStore, logger *zap.Logger) *Server {
	if config.Addr == "" {
		config.Addr = ":7547"
	}
	if config.ConnReqTimeout <= 0 {
		config.ConnReqTimeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		config:  config,
		devices: devices,
		tasks:   tasks,
		client:  &http.Client{Timeout: config.ConnReqTimeout},
		logger:  logger,
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	if config.Username != "" {
		e.Use(middleware.BasicAuth(s.checkCredentials))
	}
	e.POST("/*", s.handleCWMP)
	s.echo = e
	return s
}

func (s *Server) checkCredentials(username, password string, _ echo.Context) (bool, error) {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.config.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.config.Password)) == 1
	return userOK && passOK, nil
}

// Start serves the CWMP endpoint until Shutdown.
func (s *Server) Start() error {
	s.logger.Info("ACS listening", zap.String("addr", s.config.Addr))
	if err := s.echo.Start(s.config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the listener and drains in-flight sessions.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Devices returns the device registry.
func (s *Server) Devices() DeviceStore { return s.devices }

// Tasks returns the task queue.
func (s *Server) Tasks() TaskStore { return s.tasks }

// QueueTask enqueues a task for the device and nudges it with a
// connection request so it calls in before its next periodic Inform.
// The nudge is best effort, a failure only logs; the task waits in the
// queue either way.
func (s *Server) QueueTask(ctx context.Context, deviceKey string, task model.Task) model.Task {
	task.DeviceKey = deviceKey
	stored := s.tasks.Enqueue(task)

	device, ok := s.devices.Get(deviceKey)
	if !ok || device.ConnectionRequestURL == "" {
		return stored
	}
	if err := ConnectionRequest(ctx, s.client, device.ConnectionRequestURL, s.config.ConnReqUsername, s.config.ConnReqPassword); err != nil {
		s.logger.Warn("connection request failed",
			zap.String("device", deviceKey),
			zap.String("url", device.ConnectionRequestURL),
			zap.Error(err))
	}
	return stored
}
