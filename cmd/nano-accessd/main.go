// nano-accessd runs the CWMP auto-configuration server: devices POST
// their sessions to one endpoint, the daemon tracks them and hands out
// queued tasks. Provisioning and telemetry live in the library
// packages; this binary only serves the ACS side.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/nanoncore/nano-access/acs"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		listen          string
		username        string
		password        string
		connReqUsername string
		connReqPassword string
		connReqTimeout  time.Duration
		debug           bool
	)

	flags := pflag.NewFlagSet("nano-accessd", pflag.ContinueOnError)
	flags.StringVar(&listen, "listen", ":7547", "CWMP listen address")
	flags.StringVar(&username, "username", "", "Basic auth username devices must present (empty disables auth)")
	flags.StringVar(&password, "password", "", "Basic auth password devices must present")
	flags.StringVar(&connReqUsername, "connreq-username", "", "username for device connection request endpoints")
	flags.StringVar(&connReqPassword, "connreq-password", "", "password for device connection request endpoints")
	flags.DurationVar(&connReqTimeout, "connreq-timeout", 10*time.Second, "timeout for one connection request round trip")
	flags.BoolVar(&debug, "debug", false, "log at debug level in console format")
	if err := flags.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}

	logger, err := buildLogger(debug)
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	server := acs.NewServer(acs.Config{
		Addr:            listen,
		Username:        username,
		Password:        password,
		ConnReqUsername: connReqUsername,
		ConnReqPassword: connReqPassword,
		ConnReqTimeout:  connReqTimeout,
	}, acs.NewMemoryDeviceStore(), acs.NewMemoryTaskStore(), logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(ctx)
}

func buildLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
