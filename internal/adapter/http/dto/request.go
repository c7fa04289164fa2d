package dto

import (
	"github.com/shopspring/decimal"

	"github.com/finbridge/remit/internal/usecase"
)

// InitiateTransferRequest is the initiation request body. Amounts travel as
// strings so no float ever touches a money value.
type InitiateTransferRequest struct {
	UserID                string `json:"userId"`
	Amount                string `json:"amount"`
	Currency              string `json:"currency"`
	TargetCurrency        string `json:"targetCurrency"`
	ReceiverID            string `json:"receiverId,omitempty"`
	ReceiverAccountNumber string `json:"receiverAccountNumber,omitempty"`
}

// ToUseCaseInput converts the request to usecase input.
func (r InitiateTransferRequest) ToUseCaseInput() (usecase.InitiateInput, error) {
	amount, err := decimal.NewFromString(r.Amount)
	if err != nil {
		return usecase.InitiateInput{}, err
	}

	return usecase.InitiateInput{
		SenderID:              r.UserID,
		ReceiverID:            r.ReceiverID,
		ReceiverAccountNumber: r.ReceiverAccountNumber,
		SourceCurrency:        r.Currency,
		TargetCurrency:        r.TargetCurrency,
		Amount:                amount,
	}, nil
}

// FundWalletRequest is the wallet top-up request body.
type FundWalletRequest struct {
	UserID string `json:"userId"`
	Amount string `json:"amount"`
}
