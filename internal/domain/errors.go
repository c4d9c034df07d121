package domain

import (
	"errors"
	"fmt"
)

var (
	ErrRecordNotFound    = errors.New("record not found")
	ErrPasswordMissMatch = errors.New("password mismatch")
	ErrDuplicateKey      = errors.New("duplicate key")
	ErrUnknown           = errors.New("unknown error")

	ErrInvalidAmount        = errors.New("invalid amount")
	ErrAmountTooLarge       = errors.New("amount exceeds maximum")
	ErrTransactionFinalized = errors.New("transaction already finalized")
	ErrGiftCodeClaimed      = errors.New("gift code already claimed")
)

// PayloadError ошибка генерации платежного пейлоада. Транзакция при такой ошибке создаваться не должна.
type PayloadError struct {
	Err error
}

func NewPayloadError(err error) error {
	return &PayloadError{Err: err}
}

func (e *PayloadError) Error() string {
	return fmt.Sprintf("payment payload generation: %s", e.Err.Error())
}

func (e *PayloadError) Unwrap() error {
	return e.Err
}
