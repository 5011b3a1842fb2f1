package api_test

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/morpion/internal/api"
	"github.com/mcoot/morpion/internal/config"
	"github.com/mcoot/morpion/internal/testutil"
)

func TestServerConfigFrom(t *testing.T) {
	c := config.Default().Server
	c.Host = "127.0.0.1"
	c.Port = 9999
	c.ShutdownTimeout = 3 * time.Second

	sc := api.ServerConfigFrom(c)
	assert.Equal(t, "127.0.0.1", sc.Host)
	assert.Equal(t, 9999, sc.Port)
	assert.Equal(t, 3*time.Second, sc.ShutdownTimeout)
	assert.Equal(t, c.IdleTimeout, sc.IdleTimeout)

	srv := api.NewServer(http.NotFoundHandler(), sc, testutil.NopLogger())
	assert.Equal(t, "127.0.0.1:9999", srv.Addr())
}

func TestServerRunStopsOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	srv := api.NewServer(handler, api.DefaultServerConfig(), testutil.NopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusTeapot, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
