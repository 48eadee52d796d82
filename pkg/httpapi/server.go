package httpapi

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"time"

	"go.uber.org/zap"

	"possim/pkg/catalog"
	"possim/pkg/order"
)

// uiFS packs the simulator page so deployments ship one binary.
//
//go:embed public_html/app.gohtml
var uiFS embed.FS

const requestTimeout = 3 * time.Second

// Server wires HTTP endpoints to the order session.
type Server struct {
	session  *order.Session
	settings Settings
	page     *template.Template
	logger   *zap.Logger
}

// New parses the page template once.
func New(session *order.Session, settings Settings, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	tmpl, err := template.New("app.gohtml").Funcs(template.FuncMap{
		"price": formatPrice,
	}).ParseFS(uiFS, "public_html/app.gohtml")
	if err != nil {
		return nil, err
	}
	return &Server{
		session:  session,
		settings: settings.normalized(),
		page:     tmpl,
		logger:   logger.With(zap.String("component", "httpapi")),
	}, nil
}

// Handler exposes the page and the JSON API.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/", s.pageHandler())
	mux.Handle("/api/session", s.sessionEndpoint())
	mux.Handle("/api/category", s.categoryEndpoint())
	mux.Handle("/api/cart", s.cartEndpoint())
	mux.Handle("/api/cart/items", s.cartItemsEndpoint())
	mux.Handle("/api/dataset", s.datasetEndpoint())
	mux.Handle("/api/reset", s.resetEndpoint())
	mux.Handle("/api/payment", s.paymentEndpoint())
	mux.Handle("/api/sync", s.syncEndpoint())
	mux.Handle("/api/transactions", s.transactionsEndpoint())
	return s.logRequests(mux)
}

// pageHandler renders the simulator with the current snapshot inlined so the
// first paint needs no extra request.
func (s *Server) pageHandler() http.Handler {
	type viewData struct {
		Settings     Settings
		Layout       string
		Datasets     []string
		Session      sessionView
		SessionJSON  template.JS
		TaxPercent   string
		SnapshotTime string
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		settings := s.settings
		settings.Screen = screenOr(r.URL.Query().Get("screen"), settings.Screen)
		settings.Theme = themeOr(r.URL.Query().Get("theme"), settings.Theme)

		ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
		defer cancel()
		snap, err := s.session.Snapshot(ctx)
		if err != nil {
			s.fail(w, "render page", err)
			return
		}
		view := s.view(snap)
		payload, err := json.Marshal(view)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		data := viewData{
			Settings:     settings,
			Layout:       settings.layout(),
			Datasets:     catalog.Keys(),
			Session:      view,
			SessionJSON:  template.JS(payload),
			TaxPercent:   order.TaxRate.Shift(2).String(),
			SnapshotTime: time.Now().Format("15:04"),
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := s.page.Execute(w, data); err != nil {
			s.logger.Error("page render failed", zap.Error(err))
		}
	})
}

func (s *Server) sessionEndpoint() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		s.run(w, r, "snapshot", s.session.Snapshot)
	})
}

func (s *Server) categoryEndpoint() http.Handler {
	type payload struct {
		CategoryID string `json:"category_id"`
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var p payload
		if !s.decode(w, r, &p) {
			return
		}
		s.run(w, r, "select category", func(ctx context.Context) (order.Snapshot, error) {
			return s.session.SelectCategory(ctx, p.CategoryID)
		})
	})
}

func (s *Server) cartEndpoint() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			s.run(w, r, "snapshot", s.session.Snapshot)
		case http.MethodDelete:
			s.run(w, r, "clear cart", s.session.ClearCart)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})
}

// cartItemsEndpoint adds one unit on POST and removes one on DELETE.
func (s *Server) cartItemsEndpoint() http.Handler {
	type payload struct {
		ProductID string `json:"product_id"`
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			var p payload
			if !s.decode(w, r, &p) {
				return
			}
			if p.ProductID == "" {
				s.respondError(w, "product_id is required", http.StatusBadRequest)
				return
			}
			s.run(w, r, "add to cart", func(ctx context.Context) (order.Snapshot, error) {
				return s.session.AddToCart(ctx, p.ProductID)
			})
		case http.MethodDelete:
			id := r.URL.Query().Get("product_id")
			if id == "" {
				s.respondError(w, "product_id is required", http.StatusBadRequest)
				return
			}
			s.run(w, r, "remove from cart", func(ctx context.Context) (order.Snapshot, error) {
				return s.session.RemoveFromCart(ctx, id)
			})
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})
}

func (s *Server) datasetEndpoint() http.Handler {
	type payload struct {
		Dataset string `json:"dataset"`
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var p payload
		if !s.decode(w, r, &p) {
			return
		}
		if p.Dataset == "" {
			s.respondError(w, "dataset is required", http.StatusBadRequest)
			return
		}
		s.run(w, r, "load dataset", func(ctx context.Context) (order.Snapshot, error) {
			return s.session.LoadDataset(ctx, p.Dataset)
		})
	})
}

func (s *Server) resetEndpoint() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		s.run(w, r, "reset", s.session.Reset)
	})
}

// paymentEndpoint starts a payment on POST and cancels it on DELETE.
func (s *Server) paymentEndpoint() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			s.run(w, r, "snapshot", s.session.Snapshot)
		case http.MethodPost:
			s.run(w, r, "initiate payment", s.session.InitiatePayment)
		case http.MethodDelete:
			s.run(w, r, "cancel payment", s.session.CancelPayment)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})
}

// syncEndpoint serves the reference data a physical terminal pulls on boot.
func (s *Server) syncEndpoint() http.Handler {
	type syncResponse struct {
		Dataset    string             `json:"dataset"`
		Categories []catalog.Category `json:"categories"`
		Products   []catalog.Product  `json:"products"`
		Settings   Settings           `json:"settings"`
		TaxRate    string             `json:"tax_rate"`
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
		defer cancel()

		c, key, err := s.session.Catalog(ctx)
		if err != nil {
			s.fail(w, "sync", err)
			return
		}
		s.respondJSON(w, http.StatusOK, syncResponse{
			Dataset:    key,
			Categories: c.Categories(),
			Products:   c.Products(),
			Settings:   s.settings,
			TaxRate:    order.TaxRate.String(),
		})
	})
}

func (s *Server) transactionsEndpoint() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
		defer cancel()

		txs, err := s.session.Transactions(ctx)
		if err != nil {
			s.fail(w, "list transactions", err)
			return
		}
		s.logger.Debug("transactions served", zap.Int("count", len(txs)))
		s.respondJSON(w, http.StatusOK, txs)
	})
}

// run executes a session call and answers with the resulting snapshot.
// Rejected payments answer 409 with the unchanged snapshot.
func (s *Server) run(w http.ResponseWriter, r *http.Request, name string, call func(context.Context) (order.Snapshot, error)) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	snap, err := call(ctx)
	if err != nil {
		if order.IsRejection(err) {
			s.logger.Info("command rejected", zap.String("command", name), zap.Error(err))
			s.respondJSON(w, http.StatusConflict, rejection{Error: err.Error(), Session: s.view(snap)})
			return
		}
		s.fail(w, name, err)
		return
	}
	s.respondJSON(w, http.StatusOK, s.view(snap))
}

type rejection struct {
	Error   string      `json:"error"`
	Session sessionView `json:"session"`
}

// fail maps session failures onto status codes.
func (s *Server) fail(w http.ResponseWriter, name string, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, order.ErrSessionClosed) || errors.Is(err, order.ErrSessionBusy) ||
		errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		status = http.StatusServiceUnavailable
	}
	s.logger.Warn("request failed", zap.String("command", name), zap.Int("status", status), zap.Error(err))
	s.respondError(w, err.Error(), status)
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.logger.Debug("unable to decode payload", zap.String("path", r.URL.Path), zap.Error(err))
		s.respondError(w, "invalid JSON", http.StatusBadRequest)
		return false
	}
	return true
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Warn("unable to encode response", zap.Error(err))
	}
}

// respondError keeps JSON formatting consistent across endpoints.
func (s *Server) respondError(w http.ResponseWriter, message string, status int) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
