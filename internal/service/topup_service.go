package service

import (
	"context"
	"fmt"
	"time"

	"github.com/fsdevblog/groph-pay/internal/domain"
	"github.com/fsdevblog/groph-pay/internal/repository/repoargs"
	"github.com/fsdevblog/groph-pay/pkg/uow"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const topupMethod = "promptpay"

// TopupService владеет жизненным циклом платежных транзакций: pending -> {completed, rejected}.
// Финализация и начисление баланса выполняются в одной транзакции БД через UnitOfWork.
type TopupService struct {
	uow       uow.UOW
	transRepo TransactionRepository
	userRepo  UserRepository
	payloads  PayloadGenerator
	maxAmount decimal.Decimal
}

func NewTopupService(u uow.UOW, payloads PayloadGenerator, maxAmount decimal.Decimal) (*TopupService, error) {
	transRepo, transRepoErr :=
		uow.GetRepositoryAs[TransactionRepository](u, uow.RepositoryName(repoargs.TransactionRepoName))
	if transRepoErr != nil {
		return nil, transRepoErr
	}
	userRepo, userRepoErr := uow.GetRepositoryAs[UserRepository](u, uow.RepositoryName(repoargs.UserRepoName))
	if userRepoErr != nil {
		return nil, userRepoErr
	}
	return &TopupService{
		uow:       u,
		transRepo: transRepo,
		userRepo:  userRepo,
		payloads:  payloads,
		maxAmount: maxAmount,
	}, nil
}

type InitiateResult struct {
	Transaction *domain.Transaction
	Payload     string
}

// Initiate создает pending транзакцию пополнения на сумму amount и возвращает ее вместе
// с PromptPay пейлоадом.
//
// Алгоритм работы:
//  1. Валидирует сумму: строго положительная и не больше конфигурируемого максимума.
//  2. Проверяет что юзер существует (ErrRecordNotFound если нет).
//  3. Генерирует id транзакции и пейлоад с этим id в качестве референса. Пейлоад собирается
//     до записи в БД: при ошибке генерации транзакция не создается вовсе.
//  4. Создает pending транзакцию.
func (s *TopupService) Initiate(ctx context.Context, userID int64, amount decimal.Decimal) (*InitiateResult, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("initiating topup: %w: %s", domain.ErrInvalidAmount, amount)
	}
	if amount.GreaterThan(s.maxAmount) {
		return nil, fmt.Errorf("initiating topup: %w: %s > %s", domain.ErrAmountTooLarge, amount, s.maxAmount)
	}

	if _, userErr := s.userRepo.FindUserByID(ctx, userID); userErr != nil {
		return nil, fmt.Errorf("initiating topup: %w", userErr)
	}

	transactionID := uuid.New()
	payload, payloadErr := s.payloads.Payload(amount, transactionID.String())
	if payloadErr != nil {
		return nil, fmt.Errorf("initiating topup: %w", domain.NewPayloadError(payloadErr))
	}

	transaction, createErr := s.transRepo.Create(ctx, repoargs.TransactionCreate{
		ID:     transactionID,
		UserID: userID,
		Amount: amount,
		Type:   domain.TransactionTypeTopup,
		Status: domain.TransactionStatusPending,
		Method: topupMethod,
	})
	if createErr != nil {
		return nil, fmt.Errorf("initiating topup: %w", createErr)
	}

	return &InitiateResult{Transaction: transaction, Payload: payload}, nil
}

// Complete переводит pending транзакцию в completed и начисляет ее сумму на баланс владельца.
// Оба апдейта выполняются в одной транзакции БД: сбой между ними невозможен. Условный апдейт
// статуса гарантирует что повторный (в том числе конкурентный) вызов вернет
// ErrTransactionFinalized и баланс не будет начислен дважды. Владелец определяется из самой
// транзакции, id юзера от клиента не принимается.
//
// Возвращает новый баланс владельца.
func (s *TopupService) Complete(ctx context.Context, transactionID uuid.UUID) (decimal.Decimal, error) {
	var newBalance decimal.Decimal

	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		transRepo, transRepoErr :=
			uow.GetAs[TransactionRepository](tx, uow.RepositoryName(repoargs.TransactionRepoName))
		if transRepoErr != nil {
			return transRepoErr //nolint:wrapcheck
		}
		userRepo, userRepoErr := uow.GetAs[UserRepository](tx, uow.RepositoryName(repoargs.UserRepoName))
		if userRepoErr != nil {
			return userRepoErr //nolint:wrapcheck
		}

		transaction, finalizeErr := transRepo.Finalize(c, transactionID, domain.TransactionStatusCompleted)
		if finalizeErr != nil {
			return finalizeErr //nolint:wrapcheck
		}

		var creditErr error
		newBalance, creditErr = userRepo.CreditBalance(c, transaction.UserID, transaction.Amount)
		return creditErr //nolint:wrapcheck
	})

	if txErr != nil {
		return decimal.Zero, fmt.Errorf("completing transaction %s: %w", transactionID, txErr)
	}
	return newBalance, nil
}

// Reject переводит pending транзакцию в rejected. Баланс не меняется. Условия и ошибки
// те же, что у Complete.
func (s *TopupService) Reject(ctx context.Context, transactionID uuid.UUID) error {
	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		transRepo, transRepoErr :=
			uow.GetAs[TransactionRepository](tx, uow.RepositoryName(repoargs.TransactionRepoName))
		if transRepoErr != nil {
			return transRepoErr //nolint:wrapcheck
		}

		_, finalizeErr := transRepo.Finalize(c, transactionID, domain.TransactionStatusRejected)
		return finalizeErr //nolint:wrapcheck
	})

	if txErr != nil {
		return fmt.Errorf("rejecting transaction %s: %w", transactionID, txErr)
	}
	return nil
}

// GetStatus возвращает транзакцию по id. Только чтение.
func (s *TopupService) GetStatus(ctx context.Context, transactionID uuid.UUID) (*domain.Transaction, error) {
	transaction, err := s.transRepo.FindByID(ctx, transactionID)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return transaction, nil
}

// GetByUserID возвращает транзакции юзера, отсортированные по дате создания по убыванию.
func (s *TopupService) GetByUserID(ctx context.Context, userID int64) ([]domain.Transaction, error) {
	transactions, err := s.transRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return transactions, nil
}

// ExpiredPending возвращает pending пополнения старше olderThan: QR сгенерирован, но оплата
// так и не пришла.
func (s *TopupService) ExpiredPending(
	ctx context.Context,
	olderThan time.Time,
	limit uint,
) ([]domain.Transaction, error) {
	transactions, err := s.transRepo.FindExpiredPending(ctx, olderThan, limit)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return transactions, nil
}
