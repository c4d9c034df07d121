package api

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fsdevblog/groph-pay/internal/domain"
	"github.com/fsdevblog/groph-pay/internal/service"
)

// UserServicer интерфейс исключительно для моков.
type UserServicer interface {
	Register(ctx context.Context, args service.RegisterUserArgs) (*domain.User, string, error)
	Login(ctx context.Context, args service.LoginUserArgs) (*domain.User, string, error)
	GetBalance(ctx context.Context, userID int64) (decimal.Decimal, error)
}

type TopupServicer interface {
	Initiate(ctx context.Context, userID int64, amount decimal.Decimal) (*service.InitiateResult, error)
	Complete(ctx context.Context, transactionID uuid.UUID) (decimal.Decimal, error)
	Reject(ctx context.Context, transactionID uuid.UUID) error
	GetStatus(ctx context.Context, transactionID uuid.UUID) (*domain.Transaction, error)
	GetByUserID(ctx context.Context, userID int64) ([]domain.Transaction, error)
}

type GiftCodeServicer interface {
	Create(ctx context.Context, amount decimal.Decimal) (*domain.GiftCode, error)
	Redeem(ctx context.Context, userID int64, code string) (*service.RedeemResult, error)
}
