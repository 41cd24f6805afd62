// Command pawsitive-mock serves an in-memory Pawsitive Drive API for local
// development.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pawsitive-drive/pawsitive/internal/config"
	"github.com/pawsitive-drive/pawsitive/internal/logging"
	"github.com/pawsitive-drive/pawsitive/internal/mockapi"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var addr, uploadBase, logLevel string
	var seed bool

	flagSet := pflag.NewFlagSet("pawsitive-mock", pflag.ContinueOnError)
	flagSet.StringVar(&addr, "addr", ":8080", "listen address")
	flagSet.StringVar(&uploadBase, "upload-base", "http://localhost:8080/uploads", "URL prefix returned for uploads")
	flagSet.BoolVar(&seed, "seed", true, "create demo accounts and pets")
	flagSet.StringVar(&logLevel, "log-level", "info", "log level")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	if err := logging.Setup(config.LoggingConfig{Level: logLevel}); err != nil {
		return err
	}
	if logLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	backend := mockapi.New()
	backend.SetUploadBase(uploadBase)
	if seed {
		backend.Seed()
		for _, a := range mockapi.DemoAccounts {
			log.WithFields(log.Fields{"email": a.Email, "role_id": a.RoleID}).Info("demo account")
		}
	}

	server := &http.Server{
		Addr:              addr,
		Handler:           backend.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", addr).Info("mock API listening")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	log.Info("shutting down mock API")
	return server.Shutdown(shutdownCtx)
}
