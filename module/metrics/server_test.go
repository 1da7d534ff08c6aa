package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"

	"github.com/byzantine-generals/omsim/utils/unittest"
)

func TestServer_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	server := NewServer(unittest.Logger(), 0, prometheus.NewRegistry())

	done := make(chan struct{})
	var err error
	go func() {
		defer close(done)
		err = server.Serve(ctx)
	}()

	cancel()
	unittest.RequireClosedBefore(t, done, 10*time.Second, "metrics server did not shut down")
	assert.NoError(t, err)
}
