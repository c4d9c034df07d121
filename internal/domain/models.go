package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type User struct {
	ID        int64
	CreatedAt time.Time
	UpdatedAt time.Time
	Username  string
	Password  string
	Balance   decimal.Decimal
}

type Transaction struct {
	ID          uuid.UUID
	CreatedAt   time.Time
	UpdatedAt   time.Time
	CompletedAt *time.Time
	UserID      int64
	Amount      decimal.Decimal
	Type        TransactionType
	Status      TransactionStatus
	Method      string
}

// IsFinal сообщает, находится ли транзакция в терминальном статусе.
func (t *Transaction) IsFinal() bool {
	return t.Status != TransactionStatusPending
}

type GiftCode struct {
	ID        int64
	CreatedAt time.Time
	Code      string
	Amount    decimal.Decimal
	ClaimedBy *int64
	ClaimedAt *time.Time
}
