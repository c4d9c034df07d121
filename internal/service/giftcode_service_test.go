package service

import (
	"context"
	"encoding/hex"
	"fmt"
	"testing"

	"github.com/fsdevblog/groph-pay/internal/domain"
	"github.com/fsdevblog/groph-pay/internal/repository/repoargs"
	"github.com/fsdevblog/groph-pay/internal/service/mocks"
	"github.com/fsdevblog/groph-pay/pkg/uow"
	uowmocks "github.com/fsdevblog/groph-pay/pkg/uow/mocks"
	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type GiftCodeServiceTestSuite struct {
	suite.Suite
	mockUOW       *uowmocks.MockUOW
	mockTX        *uowmocks.MockTX
	mockGiftRepo  *mocks.MockGiftCodeRepository
	mockTransRepo *mocks.MockTransactionRepository
	mockUserRepo  *mocks.MockUserRepository
	service       *GiftCodeService
}

func TestGiftCodeServiceSuite(t *testing.T) {
	suite.Run(t, new(GiftCodeServiceTestSuite))
}

func (s *GiftCodeServiceTestSuite) SetupTest() {
	mockCtrl := gomock.NewController(s.T())
	s.mockUOW = uowmocks.NewMockUOW(mockCtrl)
	s.mockTX = uowmocks.NewMockTX(mockCtrl)
	s.mockGiftRepo = mocks.NewMockGiftCodeRepository(mockCtrl)
	s.mockTransRepo = mocks.NewMockTransactionRepository(mockCtrl)
	s.mockUserRepo = mocks.NewMockUserRepository(mockCtrl)

	s.mockUOW.EXPECT().
		GetRepository(uow.RepositoryName(repoargs.GiftCodeRepoName)).
		Return(s.mockGiftRepo, nil).AnyTimes()

	var err error
	s.service, err = NewGiftCodeService(s.mockUOW)
	s.Require().NoError(err)
}

// expectDo настраивает мок UOW так, чтобы Do просто выполнял переданную функцию с mockTX.
func (s *GiftCodeServiceTestSuite) expectDo() {
	s.mockUOW.EXPECT().Do(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, fn func(context.Context, uow.TX) error) error {
			return fn(s.T().Context(), s.mockTX)
		},
	)
}

func (s *GiftCodeServiceTestSuite) expectTXRepos() {
	s.mockTX.EXPECT().
		Get(uow.RepositoryName(repoargs.GiftCodeRepoName)).
		Return(s.mockGiftRepo, nil).AnyTimes()
	s.mockTX.EXPECT().
		Get(uow.RepositoryName(repoargs.TransactionRepoName)).
		Return(s.mockTransRepo, nil).AnyTimes()
	s.mockTX.EXPECT().
		Get(uow.RepositoryName(repoargs.UserRepoName)).
		Return(s.mockUserRepo, nil).AnyTimes()
}

func (s *GiftCodeServiceTestSuite) TestCreate() {
	amount := decimal.NewFromInt(500)

	s.mockGiftRepo.EXPECT().
		Create(gomock.Any(), gomock.Any(), amount).
		DoAndReturn(func(_ context.Context, code string, a decimal.Decimal) (*domain.GiftCode, error) {
			// Код — hex от 8 случайных байт.
			raw, decodeErr := hex.DecodeString(code)
			s.Require().NoError(decodeErr)
			s.Len(raw, giftCodeBytes)
			return &domain.GiftCode{Code: code, Amount: a}, nil
		})

	giftCode, err := s.service.Create(s.T().Context(), amount)
	s.Require().NoError(err)
	s.True(amount.Equal(giftCode.Amount))
}

func (s *GiftCodeServiceTestSuite) TestCreate_InvalidAmount() {
	_, err := s.service.Create(s.T().Context(), decimal.Zero)
	s.Require().ErrorIs(err, domain.ErrInvalidAmount)
}

func (s *GiftCodeServiceTestSuite) TestRedeem() {
	var userID int64 = 1
	code := "aaaaaaaaaaaaaaaa"
	amount := decimal.NewFromInt(500)
	newBalance := decimal.NewFromInt(600)

	s.expectDo()
	s.expectTXRepos()

	s.mockGiftRepo.EXPECT().
		Claim(gomock.Any(), code, userID).
		Return(&domain.GiftCode{Code: code, Amount: amount, ClaimedBy: &userID}, nil)

	s.mockTransRepo.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, args repoargs.TransactionCreate) (*domain.Transaction, error) {
			// Транзакция создается сразу завершенной, на сумму кода.
			s.Equal(userID, args.UserID)
			s.True(amount.Equal(args.Amount))
			s.Equal(domain.TransactionTypeGiftCode, args.Type)
			s.Equal(domain.TransactionStatusCompleted, args.Status)
			return &domain.Transaction{
				ID:     args.ID,
				UserID: args.UserID,
				Amount: args.Amount,
				Type:   args.Type,
				Status: args.Status,
			}, nil
		})

	s.mockUserRepo.EXPECT().
		CreditBalance(gomock.Any(), userID, amount).
		Return(newBalance, nil)

	result, err := s.service.Redeem(s.T().Context(), userID, code)
	s.Require().NoError(err)
	s.True(newBalance.Equal(result.NewBalance))
	s.Equal(domain.TransactionStatusCompleted, result.Transaction.Status)
}

func (s *GiftCodeServiceTestSuite) TestRedeem_AlreadyClaimed() {
	var userID int64 = 1
	code := "bbbbbbbbbbbbbbbb"

	s.expectDo()
	s.expectTXRepos()

	s.mockGiftRepo.EXPECT().
		Claim(gomock.Any(), code, userID).
		Return(nil, fmt.Errorf("%w: code taken", domain.ErrGiftCodeClaimed))

	// Транзакция не создается и баланс не трогается: на Create и CreditBalance нет EXPECT.
	_, err := s.service.Redeem(s.T().Context(), userID, code)
	s.Require().ErrorIs(err, domain.ErrGiftCodeClaimed)
}

func (s *GiftCodeServiceTestSuite) TestRedeem_NotFound() {
	var userID int64 = 1
	code := "cccccccccccccccc"

	s.expectDo()
	s.expectTXRepos()

	s.mockGiftRepo.EXPECT().
		Claim(gomock.Any(), code, userID).
		Return(nil, domain.ErrRecordNotFound)

	_, err := s.service.Redeem(s.T().Context(), userID, code)
	s.Require().ErrorIs(err, domain.ErrRecordNotFound)
}
