// Package router turns a parsed request into a response: it confines the
// request path to the document root and serves a directory listing, a file,
// or the output of a CGI script.
package router

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/raphaelreyna/ez-httpd/pkg/cgi"
	"github.com/raphaelreyna/ez-httpd/pkg/log"
	"github.com/raphaelreyna/ez-httpd/pkg/message"
)

// ScriptSuffix marks request paths that are executed rather than served.
const ScriptSuffix = ".cgi"

// Scripts runs an executable and returns its standard output.
type Scripts interface {
	Run(ctx context.Context, path string) ([]byte, error)
}

// Router dispatches requests against a single document root. It holds no
// mutable state and is safe for concurrent use.
type Router struct {
	resolver *Resolver
	base     string
	scripts  Scripts
	logger   *slog.Logger
}

// Option configures a Router.
type Option func(*Router)

// WithScripts replaces the default script executor.
func WithScripts(s Scripts) Option {
	return func(r *Router) {
		r.scripts = s
	}
}

// WithLogger sets the logger used when the request context carries none.
// The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(r *Router) {
		r.logger = l
	}
}

// WithBase sets the directory request paths are resolved against. The
// default is the working directory, so a request for /public/index.html
// with document root "public" names public/index.html. Passing the document
// root itself maps / onto the root.
func WithBase(dir string) Option {
	return func(r *Router) {
		r.base = dir
	}
}

// New returns a Router serving root.
func New(root string, opts ...Option) (*Router, error) {
	r := &Router{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	res, err := NewResolver(root, r.base)
	if err != nil {
		return nil, err
	}
	r.resolver = res
	if r.scripts == nil {
		r.scripts = &cgi.Executor{Logger: r.logger}
	}
	return r, nil
}

// Root returns the canonical document root.
func (r *Router) Root() string {
	return r.resolver.Root()
}

// Route produces the response for req. It never fails: every error is
// mapped onto a status code.
func (r *Router) Route(ctx context.Context, req *message.Request) *message.Response {
	resp, err := r.route(ctx, req)
	if err == nil {
		return resp
	}

	var kind Error
	if !errors.As(err, &kind) {
		kind = ErrInternal
	}
	logger := r.loggerFor(ctx)
	switch kind {
	case ErrNotImplemented:
		logger.Warn("Invalid method", slog.String("method", req.Method))
	case ErrNotFound:
		logger.Warn("Path not served", slog.String("path", req.Path), slog.Any("error", err))
	default:
		logger.Error("Request failed", slog.String("path", req.Path), slog.Any("error", err))
	}
	return message.NewResponse(kind.StatusCode())
}

func (r *Router) route(ctx context.Context, req *message.Request) (*message.Response, error) {
	if req.Method != "GET" {
		return nil, ErrNotImplemented
	}

	p, err := r.resolver.Resolve(req.Path)
	if err != nil {
		return nil, err
	}

	fi, err := os.Stat(p)
	if err != nil {
		return nil, wrap(ErrBadRequest, err)
	}
	switch {
	case fi.IsDir():
		return r.serveDirectory(p)
	case fi.Mode().IsRegular():
		if strings.HasSuffix(req.Path, ScriptSuffix) {
			return r.serveScript(ctx, p)
		}
		return r.serveFile(ctx, p)
	default:
		return nil, wrap(ErrBadRequest, fmt.Errorf("%s is not a directory or regular file", p))
	}
}

func (r *Router) serveDirectory(p string) (*message.Response, error) {
	page, err := r.resolver.ListDirectory(p)
	if err != nil {
		return nil, wrap(ErrInternal, err)
	}
	return message.OK().WithBody("text/html", []byte(page)), nil
}

func (r *Router) serveScript(ctx context.Context, p string) (*message.Response, error) {
	r.loggerFor(ctx).Info("Executing CGI script", slog.String("path", p))
	out, err := r.scripts.Run(ctx, p)
	if err != nil {
		return nil, wrap(ErrInternal, err)
	}
	return message.OK().WithBody(cgi.ContentType, out), nil
}

func (r *Router) serveFile(ctx context.Context, p string) (*message.Response, error) {
	ct := contentType(p)
	r.loggerFor(ctx).Info("Serving file", slog.String("path", p), slog.String("mime", ct))

	data, err := os.ReadFile(p)
	if err != nil {
		return nil, wrap(ErrInternal, err)
	}
	if isText(ct) && !utf8.Valid(data) {
		return nil, wrap(ErrInternal, fmt.Errorf("%s: %s content is not valid UTF-8", p, ct))
	}
	return message.OK().WithBody(ct, data), nil
}

func (r *Router) loggerFor(ctx context.Context) *slog.Logger {
	if l, ok := log.FromContext(ctx); ok {
		return l
	}
	return r.logger
}
