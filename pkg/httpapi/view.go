package httpapi

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"possim/pkg/order"
)

// sessionView is a snapshot plus the money strings a view prints as-is.
type sessionView struct {
	order.Snapshot
	Display displayAmounts `json:"display"`
}

type displayAmounts struct {
	Subtotal   string            `json:"subtotal"`
	Tax        string            `json:"tax"`
	Total      string            `json:"total"`
	Charged    string            `json:"charged"`
	Prices     map[string]string `json:"prices"`
	LineTotals []string          `json:"line_totals"`
}

func (s *Server) view(snap order.Snapshot) sessionView {
	currency := s.settings.Currency
	display := displayAmounts{
		Subtotal:   formatPrice(currency, snap.Subtotal),
		Tax:        formatPrice(currency, snap.Tax),
		Total:      formatPrice(currency, snap.Total),
		Charged:    formatPrice(currency, snap.Payment.Amount),
		Prices:     make(map[string]string, len(snap.Products)),
		LineTotals: make([]string, 0, len(snap.Lines)),
	}
	for _, p := range snap.Products {
		display.Prices[p.ID] = formatPrice(currency, p.Price)
	}
	for _, line := range snap.Lines {
		display.LineTotals = append(display.LineTotals, formatPrice(currency, line.LineTotal()))
	}
	return sessionView{Snapshot: snap, Display: display}
}

// statusRecorder remembers the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// logRequests writes one log entry per request.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		fields := []zap.Field{
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		}
		if rec.status >= http.StatusInternalServerError {
			s.logger.Warn("request served", fields...)
			return
		}
		s.logger.Debug("request served", fields...)
	})
}
