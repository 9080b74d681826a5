// Package http exposes the ledger over a JSON API. Handlers do their
// own method dispatch; aggregation endpoints sit behind a small LRU
// cache that every mutation purges.
package http

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/mapcocoro/kakeiboApp/internal/cache"
	"github.com/mapcocoro/kakeiboApp/internal/donation"
	applog "github.com/mapcocoro/kakeiboApp/internal/log"
	"github.com/mapcocoro/kakeiboApp/internal/report"
	"github.com/mapcocoro/kakeiboApp/internal/services"
)

type Server struct {
	http.Server

	ledger    *services.LedgerService
	donations *donation.Store
	reports   *report.Store

	monthlyCache *cache.LRU[monthlyResponse]
	matrixCache  *cache.LRU[matrixResponse]

	shutdownOnce sync.Once
}

// NewServer configures routes and returns a ready-to-run server.
// donations may be nil when donation sync is disabled; the donation
// endpoints then answer 404.
func NewServer(addr string, logger *applog.Logger, ledger *services.LedgerService, donations *donation.Store, reports *report.Store) *Server {
	mux := http.NewServeMux()

	s := &Server{
		ledger:       ledger,
		donations:    donations,
		reports:      reports,
		monthlyCache: cache.NewLRU[monthlyResponse](50, 5*time.Minute),
		matrixCache:  cache.NewLRU[matrixResponse](50, 5*time.Minute),
	}
	s.Server = http.Server{
		Addr:              addr,
		Handler:           applog.Middleware(logger)(s.withRequestLogging(mux)),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)

	mux.HandleFunc("/api/categories", s.handleCategories)

	mux.HandleFunc("/api/expenses", s.handleExpenses)
	mux.HandleFunc("/api/expenses/", s.handleExpenseByID)
	mux.HandleFunc("/api/expenses/duplicates", s.handleDuplicateScan)
	mux.HandleFunc("/api/expenses/duplicates/remove", s.handleDuplicateRemove)

	mux.HandleFunc("/api/dashboard/monthly", s.handleDashboardMonthly)
	mux.HandleFunc("/api/dashboard/matrix", s.handleDashboardMatrix)
	mux.HandleFunc("/api/dashboard/categories", s.handleDashboardCategories)

	mux.HandleFunc("/api/donations", s.handleDonations)
	mux.HandleFunc("/api/donations/", s.handleDonationByID)

	mux.HandleFunc("/api/import", s.handleImport)
	mux.HandleFunc("/api/export", s.handleExport)

	mux.HandleFunc("/api/reports", s.handleReports)
	mux.HandleFunc("/api/reports/", s.handleReportByID)
	mux.HandleFunc("/api/memos/monthly", s.handleMonthlyMemo)
	mux.HandleFunc("/api/memos/yearly", s.handleYearlyMemo)
	mux.HandleFunc("/api/ui-state", s.handleUIState)

	return s
}

// invalidateAggregates discards cached dashboard responses. Every
// handler that changes the record set calls this before answering.
func (s *Server) invalidateAggregates() {
	s.monthlyCache.Purge()
	s.matrixCache.Purge()
}

// withRequestLogging logs start and completion of every request.
func (s *Server) withRequestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		logger := applog.FromContext(r.Context())

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		logger.InfoContext(r.Context(), "Request completed",
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldStatusCode, rw.statusCode,
			applog.FieldDuration, time.Since(start).Milliseconds())
	})
}

// responseWriter captures the status code for request logging.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Shutdown stops the HTTP listener. Safe to call more than once.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ready"})
}
