package metrics

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Server is the http server that will be serving the /metrics request for prometheus
type Server struct {
	server *http.Server
	log    zerolog.Logger
}

// NewServer creates a new server that will start on the specified port,
// and responds to only the `/metrics` endpoint with the metrics gathered from gatherer.
func NewServer(log zerolog.Logger, port uint, gatherer prometheus.Gatherer) *Server {
	addr := ":" + strconv.Itoa(int(port))

	mux := http.NewServeMux()
	endpoint := "/metrics"
	mux.Handle(endpoint, promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	return &Server{
		server: &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second},
		log:    log.With().Str("component", "metrics_server").Str("address", addr).Logger(),
	}
}

// Serve runs the server until ctx is cancelled, then shuts it down gracefully.
// Returns an error only if the server could not listen on its address.
func (m *Server) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		m.log.Info().Msg("metrics server started")
		errCh <- m.server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := m.server.Shutdown(shutdownCtx)
	if err != nil {
		m.log.Err(err).Msg("error shutting down metrics server")
	}
	// http.ErrServerClosed is returned when Close or Shutdown is called
	// we don't consider this an error, so print this with debug level instead
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	m.log.Debug().Msg("metrics server shutdown")
	return nil
}
