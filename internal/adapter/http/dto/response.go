package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/finbridge/remit/internal/domain"
)

// TransactionResponse represents a transaction in API responses.
type TransactionResponse struct {
	ID               string                   `json:"id"`
	SenderID         string                   `json:"senderId"`
	ReceiverID       string                   `json:"receiverId"`
	SourceCurrency   string                   `json:"sourceCurrency"`
	TargetCurrency   string                   `json:"targetCurrency"`
	SourceAmount     decimal.Decimal          `json:"sourceAmount"`
	TargetAmount     decimal.Decimal          `json:"targetAmount"`
	ExchangeRate     decimal.Decimal          `json:"exchangeRate"`
	Fee              decimal.Decimal          `json:"fee"`
	Status           domain.TransactionStatus `json:"status"`
	PaymentReference *string                  `json:"paymentReference,omitempty"`
	FailureReason    *string                  `json:"failureReason,omitempty"`
	CreatedAt        time.Time                `json:"createdAt"`
	UpdatedAt        time.Time                `json:"updatedAt"`
}

// TransactionFromDomain converts a domain transaction to a response.
func TransactionFromDomain(t *domain.Transaction) *TransactionResponse {
	return &TransactionResponse{
		ID:               t.ID,
		SenderID:         t.SenderID,
		ReceiverID:       t.ReceiverID,
		SourceCurrency:   t.SourceCurrency,
		TargetCurrency:   t.TargetCurrency,
		SourceAmount:     t.SourceAmount,
		TargetAmount:     t.TargetAmount,
		ExchangeRate:     t.ExchangeRate,
		Fee:              t.Fee,
		Status:           t.Status,
		PaymentReference: t.PaymentReference,
		FailureReason:    t.FailureReason,
		CreatedAt:        t.CreatedAt,
		UpdatedAt:        t.UpdatedAt,
	}
}

// InitiateTransferResponse is returned after a transfer is accepted. The
// payer should be redirected to PaymentURL to fund the transaction.
type InitiateTransferResponse struct {
	Transaction *TransactionResponse `json:"transaction"`
	PaymentURL  string               `json:"paymentUrl,omitempty"`
	Reference   string               `json:"reference,omitempty"`
}

// InitiateFromResult converts a usecase initiation result to a response.
func InitiateFromResult(t *domain.Transaction, authorizationURL, reference string) *InitiateTransferResponse {
	return &InitiateTransferResponse{
		Transaction: TransactionFromDomain(t),
		PaymentURL:  authorizationURL,
		Reference:   reference,
	}
}

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	ID            string          `json:"id"`
	UserID        string          `json:"userId"`
	AccountNumber string          `json:"accountNumber"`
	Currency      string          `json:"currency"`
	Balance       decimal.Decimal `json:"balance"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// AccountFromDomain converts a domain account to a response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		ID:            a.ID,
		UserID:        a.UserID,
		AccountNumber: a.AccountNumber,
		Currency:      a.Currency,
		Balance:       a.Balance,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
