package repoargs

import (
	"github.com/fsdevblog/groph-pay/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionCreate struct {
	ID     uuid.UUID
	UserID int64
	Amount decimal.Decimal
	Type   domain.TransactionType
	Status domain.TransactionStatus
	Method string
}
