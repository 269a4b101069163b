package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/uc-client/pkg/logging"
	"github.com/uc-client/pkg/ucclient"
	"gopkg.in/yaml.v3"
)

const maxBodyBytes = 64 << 10

var reservedPaths = map[string]bool{
	"/":        true,
	"/healthz": true,
	"/handle":  true,
}

func checkTelemetryPath(path string) error {
	if !strings.HasPrefix(path, "/") {
		return fmt.Errorf("invalid telemetry path %q: must start with /", path)
	}
	if reservedPaths[path] {
		return fmt.Errorf("invalid telemetry path %q: reserved route", path)
	}
	return nil
}

// StatusServer exposes metrics, health and the installed controller handle over HTTP.
type StatusServer struct {
	holder        *ucclient.Holder
	registry      *prometheus.Registry
	telemetryPath string
	validate      bool
	mux           *http.ServeMux
}

// NewStatusServer creates a status server for h. Collectors are registered on
// a private registry. With validate set, PUT /handle rejects endpoints that
// fail Endpoint.Validate. telemetryPath must not clash with the fixed routes.
func NewStatusServer(h *ucclient.Holder, telemetryPath string, validate bool, collectors ...prometheus.Collector) (*StatusServer, error) {
	if err := checkTelemetryPath(telemetryPath); err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	for _, c := range collectors {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}

	s := &StatusServer{
		holder:        h,
		registry:      registry,
		telemetryPath: telemetryPath,
		validate:      validate,
		mux:           http.NewServeMux(),
	}

	s.mux.Handle(telemetryPath, promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	s.mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	s.mux.HandleFunc("/handle", s.handleHandle)
	s.mux.HandleFunc("/", s.handleIndex)

	return s, nil
}

// Handler returns the HTTP handler of the server.
func (s *StatusServer) Handler() http.Handler {
	return s.mux
}

// ListenAndServe serves until ctx is cancelled.
func (s *StatusServer) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Logf("[listen] status addr=%s metrics=%s health=/healthz handle=/handle", addr, s.telemetryPath)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *StatusServer) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	_, _ = w.Write([]byte(`<html>
<head><title>Universal Controller Client</title></head>
<body>
<h1>Universal Controller Client</h1>
<p><a href="` + s.telemetryPath + `">Metrics</a></p>
<p><a href="/handle">Handle</a></p>
</body>
</html>`))
}

func (s *StatusServer) handleHandle(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		c := s.holder.Current()
		if c == nil {
			http.Error(w, "no handle installed", http.StatusNotFound)
			return
		}
		writeEndpoint(w, r, http.StatusOK, c.Endpoint())

	case http.MethodPost:
		c := s.holder.Init()
		logging.Debugf("handle init via http: %s", c.Endpoint())
		writeEndpoint(w, r, http.StatusOK, c.Endpoint())

	case http.MethodPut:
		ep, err := decodeEndpoint(r.Body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if s.validate {
			if err := ep.Validate(); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
		}
		c := s.holder.Configure(ep)
		logging.Logf("handle configured via http: %s", ep)
		writeEndpoint(w, r, http.StatusOK, c.Endpoint())

	case http.MethodDelete:
		s.holder.Destroy()
		logging.Logf("handle destroyed via http")
		w.WriteHeader(http.StatusNoContent)

	default:
		w.Header().Set("Allow", "GET, POST, PUT, DELETE")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// decodeEndpoint accepts YAML or JSON, JSON being a subset of YAML.
func decodeEndpoint(body io.Reader) (ucclient.Endpoint, error) {
	var ep ucclient.Endpoint
	data, err := io.ReadAll(io.LimitReader(body, maxBodyBytes))
	if err != nil {
		return ep, err
	}
	if err := yaml.Unmarshal(data, &ep); err != nil {
		return ep, err
	}
	return ep, nil
}

func writeEndpoint(w http.ResponseWriter, r *http.Request, status int, ep ucclient.Endpoint) {
	if r.URL.Query().Get("format") == "yaml" {
		out, err := yaml.Marshal(ep)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/yaml")
		w.WriteHeader(status)
		_, _ = w.Write(out)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ep)
}
