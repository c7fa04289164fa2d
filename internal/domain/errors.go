package domain

import "errors"

var (
	// Account errors
	ErrAccountNotFound         = errors.New("account not found")
	ErrSenderAccountNotFound   = errors.New("sender account not found")
	ErrReceiverAccountNotFound = errors.New("receiver account not found")
	ErrInsufficientFunds       = errors.New("insufficient funds")

	// User errors
	ErrUserNotFound = errors.New("user not found")

	// Transaction errors
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrSameParty           = errors.New("cannot transfer to yourself")
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrAmountTooSmall      = errors.New("target amount is below the minimum transfer amount")
	ErrCurrencyMismatch    = errors.New("account currency does not match the requested currency")
	ErrAlreadyCompleted    = errors.New("transaction already completed")

	// External collaborator errors
	ErrRateUnavailable     = errors.New("exchange rate not available for the selected currencies")
	ErrUnsupportedProvider = errors.New("unsupported payment provider")
)
