package expirer

import (
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/fsdevblog/groph-pay/internal/domain"
	"github.com/fsdevblog/groph-pay/internal/expirer/mocks"
	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/suite"
)

type ExpirerTestSuite struct {
	suite.Suite
	mockSvs   *mocks.MockServicer
	processor *Processor
}

func TestExpirerSuite(t *testing.T) {
	suite.Run(t, new(ExpirerTestSuite))
}

func (s *ExpirerTestSuite) SetupTest() {
	mockCtrl := gomock.NewController(s.T())
	s.mockSvs = mocks.NewMockServicer(mockCtrl)

	l := logrus.New()
	l.SetOutput(io.Discard)

	s.processor = New(s.mockSvs, l).
		SetTTL(time.Hour).
		SetLimitPerIteration(10).
		SetWorkers(2)
}

func (s *ExpirerTestSuite) TestProcess() {
	expired := []domain.Transaction{
		{ID: uuid.New(), Status: domain.TransactionStatusPending},
		{ID: uuid.New(), Status: domain.TransactionStatusPending},
		{ID: uuid.New(), Status: domain.TransactionStatusPending},
	}

	s.mockSvs.EXPECT().
		ExpiredPending(gomock.Any(), gomock.Any(), uint(10)).
		DoAndReturn(func(_ any, olderThan time.Time, _ uint) ([]domain.Transaction, error) {
			// Граница выборки отстоит от текущего момента на ttl.
			s.WithinDuration(time.Now().Add(-time.Hour), olderThan, time.Minute)
			return expired, nil
		})

	// Каждая протухшая транзакция отклоняется ровно один раз.
	for _, transaction := range expired {
		s.mockSvs.EXPECT().Reject(gomock.Any(), transaction.ID).Return(nil).Times(1)
	}

	err := s.processor.process(s.T().Context())
	s.Require().NoError(err)
}

func (s *ExpirerTestSuite) TestProcess_Empty() {
	s.mockSvs.EXPECT().
		ExpiredPending(gomock.Any(), gomock.Any(), uint(10)).
		Return([]domain.Transaction{}, nil)

	// Reject не вызывается вовсе.
	err := s.processor.process(s.T().Context())
	s.Require().NoError(err)
}

func (s *ExpirerTestSuite) TestProcess_SkipsFinalized() {
	finalized := domain.Transaction{ID: uuid.New()}
	pending := domain.Transaction{ID: uuid.New()}

	s.mockSvs.EXPECT().
		ExpiredPending(gomock.Any(), gomock.Any(), uint(10)).
		Return([]domain.Transaction{finalized, pending}, nil)

	// Гонка с оператором: транзакцию успели финализировать между выборкой и отклонением.
	// Итерация не падает и продолжает обрабатывать остальные.
	s.mockSvs.EXPECT().
		Reject(gomock.Any(), finalized.ID).
		Return(fmt.Errorf("rejecting: %w", domain.ErrTransactionFinalized))
	s.mockSvs.EXPECT().
		Reject(gomock.Any(), pending.ID).
		Return(nil)

	err := s.processor.process(s.T().Context())
	s.Require().NoError(err)
}

func (s *ExpirerTestSuite) TestProcess_SelectError() {
	wantErr := errors.New("db down")

	s.mockSvs.EXPECT().
		ExpiredPending(gomock.Any(), gomock.Any(), uint(10)).
		Return(nil, wantErr)

	err := s.processor.process(s.T().Context())
	s.Require().ErrorIs(err, wantErr)
}
