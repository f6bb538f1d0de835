// Package server accepts TCP connections and answers exactly one request on
// each before closing it.
package server

import (
	"bufio"
	"context"
	"errors"
	"log/slog"
	"net"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/raphaelreyna/ez-httpd/pkg/log"
	"github.com/raphaelreyna/ez-httpd/pkg/message"
)

// Handler produces the response for a parsed request.
type Handler interface {
	Route(ctx context.Context, req *message.Request) *message.Response
}

// Server hands every accepted connection to Handler. The zero timeouts and
// body limit mean no deadline and DefaultMaxBodyBytes.
type Server struct {
	Handler Handler

	// ReadTimeout bounds reading the request. Zero means no deadline.
	ReadTimeout time.Duration
	// WriteTimeout bounds writing the response. Zero means no deadline.
	WriteTimeout time.Duration
	// MaxBodyBytes caps the accepted Content-Length. Zero selects
	// message.DefaultMaxBodyBytes.
	MaxBodyBytes int64

	Logger *slog.Logger
}

// ListenAndServe listens on the TCP address addr and calls Serve.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done, handling each on its
// own goroutine. Cancelling ctx closes the listener and returns nil;
// connections already accepted run to completion.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	logger := s.logger()
	logger.Info("Listening", slog.String("addr", ln.Addr().String()))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		<-ctx.Done()
		return ln.Close()
	})
	g.Go(func() error {
		connCtx := context.WithoutCancel(ctx)
		var delay time.Duration
		for {
			conn, err := ln.Accept()
			if err != nil {
				if ctx.Err() != nil {
					logger.Info("Shutting down")
					return nil
				}
				if errors.Is(err, net.ErrClosed) {
					return err
				}
				if delay == 0 {
					delay = 5 * time.Millisecond
				} else if delay *= 2; delay > time.Second {
					delay = time.Second
				}
				logger.Error("Accept failed", slog.Any("error", err), slog.Duration("retry", delay))
				time.Sleep(delay)
				continue
			}
			delay = 0
			go s.ServeConn(connCtx, conn)
		}
	})

	err := g.Wait()
	if errors.Is(err, net.ErrClosed) {
		return nil
	}
	return err
}

// ServeConn reads one request from conn, writes the response and closes the
// connection. A request that fails to parse gets no response at all; the
// connection is closed after logging the error.
func (s *Server) ServeConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	logger := s.logger().With(
		slog.String("conn", uuid.NewString()),
		slog.String("remote", conn.RemoteAddr().String()),
	)
	ctx = log.IntoContext(ctx, logger)
	logger.Debug("New connection")

	if s.ReadTimeout > 0 {
		if err := conn.SetReadDeadline(time.Now().Add(s.ReadTimeout)); err != nil {
			logger.Debug("Failed to set read deadline", slog.Any("error", err))
		}
	}
	req, err := message.ReadRequest(bufio.NewReader(conn), s.MaxBodyBytes)
	if err != nil {
		logger.Error("Failed to parse request", slog.Any("error", err))
		return
	}
	logger.Info("Request received", slog.String("method", req.Method), slog.String("path", req.Path))

	resp := s.Handler.Route(ctx, req)
	logger.Info("Response status", slog.Int("code", resp.Code))

	if s.WriteTimeout > 0 {
		if err := conn.SetWriteDeadline(time.Now().Add(s.WriteTimeout)); err != nil {
			logger.Debug("Failed to set write deadline", slog.Any("error", err))
		}
	}
	if _, err := resp.WriteTo(conn); err != nil {
		logger.Error("Failed to write response", slog.Any("error", err))
		return
	}
	if cw, ok := conn.(interface{ CloseWrite() error }); ok {
		if err := cw.CloseWrite(); err != nil && !errors.Is(err, net.ErrClosed) {
			logger.Debug("Failed to shutdown connection", slog.Any("error", err))
		}
	}
}

func (s *Server) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}
