/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package server

import (
	"net/http"

	"finance-tracker-go/internal/api"
	"finance-tracker-go/internal/models"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MaxBodyBytes bounds every request body
const MaxBodyBytes = 10 << 20

// TokenVerifier resolves a bearer token into the caller identity
type TokenVerifier interface {
	Verify(token string) (*models.Identity, error)
}

// Server exposes FinanceService over HTTP
type Server struct {
	service  *api.FinanceService
	verifier TokenVerifier
	router   *mux.Router
	handler  http.Handler
}

func NewServer(service *api.FinanceService, verifier TokenVerifier, cfg models.ServerConfig) *Server {
	s := &Server{
		service:  service,
		verifier: verifier,
		router:   mux.NewRouter(),
	}
	s.routes()

	origin := cfg.CorsOrigin
	if origin == "" {
		origin = "*"
	}
	s.handler = s.instrument(accessLog(securityHeaders(origin, limitBody(s.router))))
	return s
}

// Handler returns the fully wrapped router
func (s *Server) Handler() http.Handler {
	return s.handler
}

// NewHTTPServer binds the handler to the configured address and timeouts
func NewHTTPServer(cfg models.ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
}

func (s *Server) routes() {
	r := s.router
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondWithError(w, http.StatusNotFound, "Route not found", kindNotFound)
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed", kindValidation)
	})

	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	apiRouter := r.PathPrefix("/api").Subrouter()
	apiRouter.HandleFunc("/health", s.healthHandler).Methods(http.MethodGet)
	apiRouter.HandleFunc("/auth/register", s.registerHandler).Methods(http.MethodPost)
	apiRouter.HandleFunc("/auth/login", s.loginHandler).Methods(http.MethodPost)

	protected := apiRouter.NewRoute().Subrouter()
	protected.Use(s.requireAuth)

	protected.HandleFunc("/user/me", s.profileHandler).Methods(http.MethodGet)
	protected.HandleFunc("/user/currency", s.getCurrencyHandler).Methods(http.MethodGet)
	protected.HandleFunc("/user/currency", s.updateCurrencyHandler).Methods(http.MethodPut)
	protected.HandleFunc("/user/exchange-rates", s.exchangeRatesHandler).Methods(http.MethodGet)

	protected.HandleFunc("/accounts", s.listAccountsHandler).Methods(http.MethodGet)
	protected.HandleFunc("/accounts", s.createAccountHandler).Methods(http.MethodPost)
	protected.HandleFunc("/accounts/{id}", s.getAccountHandler).Methods(http.MethodGet)
	protected.HandleFunc("/accounts/{id}", s.updateAccountHandler).Methods(http.MethodPut)
	protected.HandleFunc("/accounts/{id}", s.deleteAccountHandler).Methods(http.MethodDelete)

	protected.HandleFunc("/categories", s.listCategoriesHandler).Methods(http.MethodGet)
	protected.HandleFunc("/categories", s.createCategoryHandler).Methods(http.MethodPost)
	protected.HandleFunc("/categories/{id}", s.getCategoryHandler).Methods(http.MethodGet)
	protected.HandleFunc("/categories/{id}", s.updateCategoryHandler).Methods(http.MethodPut)
	protected.HandleFunc("/categories/{id}", s.deleteCategoryHandler).Methods(http.MethodDelete)

	// stats must be registered before the {id} routes
	protected.HandleFunc("/transactions/stats/summary", s.statsHandler).Methods(http.MethodGet)
	protected.HandleFunc("/transactions", s.listTransactionsHandler).Methods(http.MethodGet)
	protected.HandleFunc("/transactions", s.createTransactionHandler).Methods(http.MethodPost)
	protected.HandleFunc("/transactions/{id}", s.getTransactionHandler).Methods(http.MethodGet)
	protected.HandleFunc("/transactions/{id}", s.updateTransactionHandler).Methods(http.MethodPut)
	protected.HandleFunc("/transactions/{id}", s.deleteTransactionHandler).Methods(http.MethodDelete)
}
