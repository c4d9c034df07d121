package service

import (
	"context"
	"time"

	"github.com/fsdevblog/groph-pay/internal/domain"
	"github.com/fsdevblog/groph-pay/internal/repository/repoargs"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

type UserRepository interface {
	CreateUser(ctx context.Context, args repoargs.CreateUser) (*domain.User, error)
	FindUserByUsername(ctx context.Context, username string) (*domain.User, error)
	FindUserByID(ctx context.Context, id int64) (*domain.User, error)
	CreditBalance(ctx context.Context, userID int64, amount decimal.Decimal) (decimal.Decimal, error)
}

type TransactionRepository interface {
	Create(ctx context.Context, args repoargs.TransactionCreate) (*domain.Transaction, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error)
	GetByUserID(ctx context.Context, userID int64) ([]domain.Transaction, error)
	Finalize(ctx context.Context, id uuid.UUID, status domain.TransactionStatus) (*domain.Transaction, error)
	FindExpiredPending(ctx context.Context, olderThan time.Time, limit uint) ([]domain.Transaction, error)
}

type GiftCodeRepository interface {
	Create(ctx context.Context, code string, amount decimal.Decimal) (*domain.GiftCode, error)
	Claim(ctx context.Context, code string, userID int64) (*domain.GiftCode, error)
}

// PayloadGenerator чистая функция: идентификатор получателя и сумма уже зашиты в генератор,
// reference связывает пейлоад ровно с одной транзакцией.
type PayloadGenerator interface {
	Payload(amount decimal.Decimal, reference string) (string, error)
}
