package cmd

import (
	"log/slog"

	"github.com/raphaelreyna/ez-httpd/pkg/cgi"
	"github.com/raphaelreyna/ez-httpd/pkg/config"
	"github.com/raphaelreyna/ez-httpd/pkg/router"
	"github.com/raphaelreyna/ez-httpd/pkg/server"
)

type httpServer struct {
	*server.Server
	root string
}

// newServer wires the router, script executor and connection server from a
// validated configuration.
func newServer(cfg *config.Config) (*httpServer, error) {
	logger := slog.Default()
	executor := &cgi.Executor{
		Timeout: cfg.ScriptTimeout.Std(),
		Logger:  logger,
	}
	r, err := router.New(cfg.DocumentRoot,
		router.WithScripts(executor),
		router.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}

	return &httpServer{
		Server: &server.Server{
			Handler:      r,
			ReadTimeout:  cfg.ReadTimeout.Std(),
			WriteTimeout: cfg.WriteTimeout.Std(),
			MaxBodyBytes: cfg.MaxBodyBytes,
			Logger:       logger,
		},
		root: r.Root(),
	}, nil
}
