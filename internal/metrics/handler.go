package metrics

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// StatusFunc returns the status fields served at /state.
type StatusFunc func() map[string]any

// NewHandler serves /metrics from m and /state from status.
func NewHandler(m *Metrics, status StatusFunc) http.Handler {
	r := chi.NewRouter()

	r.Handle("/metrics", promhttp.HandlerFor(m.Registry(), promhttp.HandlerOpts{}))
	r.Get("/state", func(w http.ResponseWriter, _ *http.Request) {
		fields, err := structpb.NewStruct(status())
		if err != nil {
			http.Error(w, "encode state", http.StatusInternalServerError)
			return
		}

		body, err := protojson.Marshal(fields)
		if err != nil {
			http.Error(w, "encode state", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(body)
	})

	return r
}
