package handler

import (
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/finbridge/remit/internal/adapter/http/dto"
	"github.com/finbridge/remit/internal/usecase"
)

// WalletHandler handles wallet funding and balance requests.
type WalletHandler struct {
	accountUC *usecase.AccountUseCase
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(accountUC *usecase.AccountUseCase) *WalletHandler {
	return &WalletHandler{accountUC: accountUC}
}

// Fund credits a user's default account.
func (h *WalletHandler) Fund(w http.ResponseWriter, r *http.Request) {
	var req dto.FundWalletRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid amount", err.Error())
		return
	}

	account, err := h.accountUC.Fund(r.Context(), req.UserID, amount)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to fund wallet", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account))
}

// Balance returns a user's account balance. The account is picked by
// the accountNumber query parameter, falling back to the default account.
func (h *WalletHandler) Balance(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	accountNumber := r.URL.Query().Get("accountNumber")
	if userID == "" && accountNumber == "" {
		writeError(w, http.StatusBadRequest, "missing userId or accountNumber", "")
		return
	}

	account, err := h.accountUC.Balance(r.Context(), userID, accountNumber)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to get balance", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account))
}
