package server

import (
	"net/http"
	"strconv"

	"finance-tracker-go/internal/models"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

func callerId(r *http.Request) string {
	return models.IdentityFromContext(r.Context()).Id
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.service.HealthCheck(r.Context()); err != nil {
		zap.L().Error("Health check failed", zap.Error(err))
		respondWithError(w, http.StatusServiceUnavailable, "Database unavailable", kindInternal)
		return
	}
	respondWithJSON(w, http.StatusOK, models.MessageResponse{Message: "Finance Tracker API is running!"})
}

func (s *Server) registerHandler(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := s.service.Register(r.Context(), req)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, resp)
}

func (s *Server) loginHandler(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := s.service.Login(r.Context(), req)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, resp)
}

func (s *Server) profileHandler(w http.ResponseWriter, r *http.Request) {
	profile, err := s.service.GetProfile(r.Context(), callerId(r))
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, profile)
}

func (s *Server) getCurrencyHandler(w http.ResponseWriter, r *http.Request) {
	pref, err := s.service.GetCurrency(r.Context(), callerId(r))
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, pref)
}

func (s *Server) updateCurrencyHandler(w http.ResponseWriter, r *http.Request) {
	var req models.CurrencyPreference
	if !decodeJSON(w, r, &req) {
		return
	}
	pref, err := s.service.UpdateCurrency(r.Context(), callerId(r), req.Currency)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, pref)
}

func (s *Server) exchangeRatesHandler(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, s.service.GetExchangeRates(r.Context()))
}

func (s *Server) listAccountsHandler(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.service.ListAccounts(r.Context(), callerId(r))
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, nonNil(accounts))
}

func (s *Server) createAccountHandler(w http.ResponseWriter, r *http.Request) {
	var req models.CreateAccountRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	account, err := s.service.CreateAccount(r.Context(), callerId(r), req)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, account)
}

func (s *Server) getAccountHandler(w http.ResponseWriter, r *http.Request) {
	account, err := s.service.GetAccount(r.Context(), callerId(r), mux.Vars(r)["id"])
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, account)
}

func (s *Server) updateAccountHandler(w http.ResponseWriter, r *http.Request) {
	var patch models.AccountPatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	account, err := s.service.UpdateAccount(r.Context(), callerId(r), mux.Vars(r)["id"], patch)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, account)
}

func (s *Server) deleteAccountHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DeleteAccount(r.Context(), callerId(r), mux.Vars(r)["id"]); err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, models.MessageResponse{Message: "Account deleted successfully"})
}

func (s *Server) listCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	categories, err := s.service.ListCategories(r.Context(), callerId(r), r.URL.Query().Get("type"))
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, nonNil(categories))
}

func (s *Server) createCategoryHandler(w http.ResponseWriter, r *http.Request) {
	var req models.CreateCategoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	category, err := s.service.CreateCategory(r.Context(), callerId(r), req)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, category)
}

func (s *Server) getCategoryHandler(w http.ResponseWriter, r *http.Request) {
	category, err := s.service.GetCategory(r.Context(), callerId(r), mux.Vars(r)["id"])
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, category)
}

func (s *Server) updateCategoryHandler(w http.ResponseWriter, r *http.Request) {
	var patch models.CategoryPatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	category, err := s.service.UpdateCategory(r.Context(), callerId(r), mux.Vars(r)["id"], patch)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, category)
}

func (s *Server) deleteCategoryHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DeleteCategory(r.Context(), callerId(r), mux.Vars(r)["id"]); err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, models.MessageResponse{Message: "Category deleted successfully"})
}

// listQuery reads the listing parameters. Unparseable numbers fall back to
// the listing defaults.
func listQuery(r *http.Request) models.ListTransactionsQuery {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	return models.ListTransactionsQuery{
		Filter: models.TransactionFilter{
			Type:      q.Get("type"),
			AccountId: q.Get("account_id"),
			Category:  q.Get("category"),
			StartDate: q.Get("start_date"),
			EndDate:   q.Get("end_date"),
		},
		Limit:  limit,
		Offset: offset,
		Sort:   q.Get("sort"),
		Order:  q.Get("order"),
	}
}

func (s *Server) listTransactionsHandler(w http.ResponseWriter, r *http.Request) {
	page, err := s.service.ListTransactions(r.Context(), callerId(r), listQuery(r))
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	page.Transactions = nonNil(page.Transactions)
	respondWithJSON(w, http.StatusOK, page)
}

func (s *Server) createTransactionHandler(w http.ResponseWriter, r *http.Request) {
	var req models.CreateTransactionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	transaction, err := s.service.CreateTransaction(r.Context(), callerId(r), req)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, transaction)
}

func (s *Server) getTransactionHandler(w http.ResponseWriter, r *http.Request) {
	transaction, err := s.service.GetTransaction(r.Context(), callerId(r), mux.Vars(r)["id"])
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, transaction)
}

func (s *Server) updateTransactionHandler(w http.ResponseWriter, r *http.Request) {
	var patch models.TransactionPatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	transaction, err := s.service.UpdateTransaction(r.Context(), callerId(r), mux.Vars(r)["id"], patch)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, transaction)
}

func (s *Server) deleteTransactionHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DeleteTransaction(r.Context(), callerId(r), mux.Vars(r)["id"]); err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, models.MessageResponse{Message: "Transaction deleted successfully"})
}

func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	stats, err := s.service.GetStats(r.Context(), callerId(r), q.Get("period"), q.Get("currency"))
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	stats.Transactions = nonNil(stats.Transactions)
	stats.AccountBalances = nonNil(stats.AccountBalances)
	respondWithJSON(w, http.StatusOK, stats)
}

// nonNil keeps empty listings encoded as [] rather than null
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
