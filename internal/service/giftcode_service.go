package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/fsdevblog/groph-pay/internal/domain"
	"github.com/fsdevblog/groph-pay/internal/repository/repoargs"
	"github.com/fsdevblog/groph-pay/pkg/uow"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	giftCodeMethod = "giftcode"
	// длина кода в байтах до hex кодирования.
	giftCodeBytes = 8
)

// GiftCodeService выдача и погашение подарочных кодов. Погашение - второй вариант пополнения
// баланса: код одноразовый, захват кода, начисление и запись транзакции выполняются в одной
// транзакции БД.
type GiftCodeService struct {
	uow      uow.UOW
	giftRepo GiftCodeRepository
}

func NewGiftCodeService(u uow.UOW) (*GiftCodeService, error) {
	giftRepo, giftRepoErr := uow.GetRepositoryAs[GiftCodeRepository](u, uow.RepositoryName(repoargs.GiftCodeRepoName))
	if giftRepoErr != nil {
		return nil, giftRepoErr
	}
	return &GiftCodeService{
		uow:      u,
		giftRepo: giftRepo,
	}, nil
}

// Create создает подарочный код на сумму amount. Код генерируется случайным.
func (s *GiftCodeService) Create(ctx context.Context, amount decimal.Decimal) (*domain.GiftCode, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("creating gift code: %w: %s", domain.ErrInvalidAmount, amount)
	}

	codeBytes := make([]byte, giftCodeBytes)
	if _, err := rand.Read(codeBytes); err != nil {
		return nil, fmt.Errorf("creating gift code: %s", err.Error())
	}

	giftCode, createErr := s.giftRepo.Create(ctx, hex.EncodeToString(codeBytes), amount)
	if createErr != nil {
		return nil, fmt.Errorf("creating gift code: %w", createErr)
	}
	return giftCode, nil
}

type RedeemResult struct {
	Transaction *domain.Transaction
	NewBalance  decimal.Decimal
}

// Redeem погашает код за юзера userID.
//
// Алгоритм работы:
//  1. Условным апдейтом захватывает код (claimed_by IS NULL входит в условие, повторное
//     погашение вернет ErrGiftCodeClaimed).
//  2. Создает сразу завершенную транзакцию типа giftcode на сумму кода.
//  3. Начисляет сумму на баланс юзера.
//
// Все три шага в одной транзакции БД.
func (s *GiftCodeService) Redeem(ctx context.Context, userID int64, code string) (*RedeemResult, error) {
	var result RedeemResult

	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		giftRepo, giftRepoErr := uow.GetAs[GiftCodeRepository](tx, uow.RepositoryName(repoargs.GiftCodeRepoName))
		if giftRepoErr != nil {
			return giftRepoErr //nolint:wrapcheck
		}
		transRepo, transRepoErr :=
			uow.GetAs[TransactionRepository](tx, uow.RepositoryName(repoargs.TransactionRepoName))
		if transRepoErr != nil {
			return transRepoErr //nolint:wrapcheck
		}
		userRepo, userRepoErr := uow.GetAs[UserRepository](tx, uow.RepositoryName(repoargs.UserRepoName))
		if userRepoErr != nil {
			return userRepoErr //nolint:wrapcheck
		}

		giftCode, claimErr := giftRepo.Claim(c, code, userID)
		if claimErr != nil {
			return claimErr //nolint:wrapcheck
		}

		transaction, createErr := transRepo.Create(c, repoargs.TransactionCreate{
			ID:     uuid.New(),
			UserID: userID,
			Amount: giftCode.Amount,
			Type:   domain.TransactionTypeGiftCode,
			Status: domain.TransactionStatusCompleted,
			Method: giftCodeMethod,
		})
		if createErr != nil {
			return createErr //nolint:wrapcheck
		}
		result.Transaction = transaction

		var creditErr error
		result.NewBalance, creditErr = userRepo.CreditBalance(c, userID, giftCode.Amount)
		return creditErr //nolint:wrapcheck
	})

	if txErr != nil {
		return nil, fmt.Errorf("redeeming gift code: %w", txErr)
	}
	return &result, nil
}
