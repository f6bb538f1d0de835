//go:build unix

package router

import (
	"context"
	"net/http"
	"path/filepath"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouteSpecialFile(t *testing.T) {
	root := newSite(t)
	fifo := filepath.Join(root, "pipe")
	if err := syscall.Mkfifo(fifo, 0644); err != nil {
		t.Skipf("mkfifo: %v", err)
	}
	r, err := New(root, WithBase(root))
	require.NoError(t, err)

	resp := r.Route(context.Background(), get("/pipe"))
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}
