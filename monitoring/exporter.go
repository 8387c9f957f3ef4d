package monitoring

import (
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Config holds the exporter settings.
type Config struct {
	Enable bool   `long:"enable" description:"Export Prometheus metrics"`
	Listen string `long:"listen" description:"Address the metrics endpoint listens on"`
}

// DefaultListen is the default metrics endpoint address.
const DefaultListen = "127.0.0.1:8989"

// Exporter serves the metrics of a gatherer on /metrics.
type Exporter struct {
	listener net.Listener
	server   *http.Server
	wg       sync.WaitGroup
}

// ExportPrometheusMetrics launches the exporter on cfg.Listen. If gatherer is
// nil the default registry is served.
func ExportPrometheusMetrics(cfg Config,
	gatherer prometheus.Gatherer) (*Exporter, error) {

	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	listen := cfg.Listen
	if listen == "" {
		listen = DefaultListen
	}

	lis, err := net.Listen("tcp", listen)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(
		gatherer, promhttp.HandlerOpts{},
	))

	e := &Exporter{
		listener: lis,
		server: &http.Server{
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}

	log.Infof("Prometheus exporter started on %v/metrics", lis.Addr())

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()

		err := e.server.Serve(lis)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("Prometheus exporter stopped: %v", err)
		}
	}()

	return e, nil
}

// Addr returns the address the exporter listens on.
func (e *Exporter) Addr() net.Addr {
	return e.listener.Addr()
}

// Stop shuts the exporter down and waits for it to exit.
func (e *Exporter) Stop() error {
	err := e.server.Close()
	e.wg.Wait()

	return err
}
