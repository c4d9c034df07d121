package api

import (
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fsdevblog/groph-pay/internal/domain"
	"github.com/fsdevblog/groph-pay/internal/logger"
	"github.com/fsdevblog/groph-pay/internal/service"
	"github.com/fsdevblog/groph-pay/internal/service/tokens"
	"github.com/fsdevblog/groph-pay/internal/transport/api/mocks"
	"github.com/fsdevblog/groph-pay/internal/transport/api/testutils"
	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/suite"
)

type GiftCodesHandlerTestSuite struct {
	suite.Suite
	router           *gin.Engine
	mockUserService  *mocks.MockUserServicer
	mockTopupService *mocks.MockTopupServicer
	mockGiftService  *mocks.MockGiftCodeServicer
	jwtSecret        []byte
}

func TestGiftCodesHandlerSuite(t *testing.T) {
	suite.Run(t, new(GiftCodesHandlerTestSuite))
}

func (s *GiftCodesHandlerTestSuite) SetupTest() {
	mockCtrl := gomock.NewController(s.T())
	defer mockCtrl.Finish()

	s.mockUserService = mocks.NewMockUserServicer(mockCtrl)
	s.mockTopupService = mocks.NewMockTopupServicer(mockCtrl)
	s.mockGiftService = mocks.NewMockGiftCodeServicer(mockCtrl)
	s.jwtSecret = []byte("super secret key")

	s.router = New(RouterArgs{
		Logger:          logger.New(os.Stdout),
		UserService:     s.mockUserService,
		TopupService:    s.mockTopupService,
		GiftCodeService: s.mockGiftService,
		JWTSecretKey:    s.jwtSecret,
		AdminToken:      testAdminToken,
	})
}

func (s *GiftCodesHandlerTestSuite) TestCreate() {
	s.mockGiftService.EXPECT().
		Create(gomock.Any(), decimalEq(decimal.NewFromInt(500))).
		Return(&domain.GiftCode{
			Code:      "deadbeefdeadbeef",
			Amount:    decimal.NewFromInt(500),
			CreatedAt: time.Now(),
		}, nil).Times(1)

	cases := []struct {
		name       string
		body       string
		adminToken string
		wantStatus int
	}{
		{
			name:       "all ok",
			body:       `{"amount": 500}`,
			adminToken: testAdminToken,
			wantStatus: http.StatusOK,
		}, {
			name:       "missing amount",
			body:       `{}`,
			adminToken: testAdminToken,
			wantStatus: http.StatusBadRequest,
		}, {
			name:       "no admin token",
			body:       `{"amount": 500}`,
			wantStatus: http.StatusUnauthorized,
		},
	}
	for _, t := range cases {
		s.Run(t.name, func() {
			reqOpts := []func(*testutils.RequestOptions){
				testutils.WithHeader("Content-Type", "application/json"),
			}
			if t.adminToken != "" {
				reqOpts = append(reqOpts, testutils.WithAdminToken(t.adminToken))
			}
			res := testutils.MakeRequest(testutils.RequestArgs{
				Router: s.router,
				Method: http.MethodPost,
				URL:    RouteGroup + AdminGroup + AdminGiftCodesRoute,
				Body:   jsonBody(t.body),
			}, reqOpts...)
			defer func() {
				s.Require().NoError(res.Body.Close())
			}()

			s.Equal(t.wantStatus, res.StatusCode)
		})
	}
}

func (s *GiftCodesHandlerTestSuite) TestRedeem() {
	var currentUserID int64 = 1
	jwtToken, jwtErr := tokens.GenerateUserJWT(currentUserID, time.Hour, s.jwtSecret)
	s.Require().NoError(jwtErr)

	validCode := "aaaaaaaaaaaaaaaa"
	claimedCode := "bbbbbbbbbbbbbbbb"
	missingCode := "cccccccccccccccc"

	s.mockGiftService.EXPECT().
		Redeem(gomock.Any(), currentUserID, validCode).
		Return(&service.RedeemResult{
			Transaction: &domain.Transaction{
				ID:     uuid.New(),
				UserID: currentUserID,
				Amount: decimal.NewFromInt(500),
				Type:   domain.TransactionTypeGiftCode,
				Status: domain.TransactionStatusCompleted,
			},
			NewBalance: decimal.NewFromInt(600),
		}, nil).Times(1)
	s.mockGiftService.EXPECT().
		Redeem(gomock.Any(), currentUserID, claimedCode).
		Return(nil, fmt.Errorf("redeeming: %w", domain.ErrGiftCodeClaimed)).Times(1)
	s.mockGiftService.EXPECT().
		Redeem(gomock.Any(), currentUserID, missingCode).
		Return(nil, fmt.Errorf("redeeming: %w", domain.ErrRecordNotFound)).Times(1)

	cases := []struct {
		name       string
		code       string
		jwtToken   string
		wantStatus int
	}{
		{name: "all ok", code: validCode, jwtToken: jwtToken, wantStatus: http.StatusOK},
		{name: "already claimed", code: claimedCode, jwtToken: jwtToken, wantStatus: http.StatusConflict},
		{name: "not found", code: missingCode, jwtToken: jwtToken, wantStatus: http.StatusNotFound},
		{name: "not authorized", code: validCode, wantStatus: http.StatusUnauthorized},
	}
	for _, t := range cases {
		s.Run(t.name, func() {
			reqOpts := []func(*testutils.RequestOptions){
				testutils.WithHeader("Content-Type", "application/json"),
			}
			if t.jwtToken != "" {
				reqOpts = append(reqOpts, testutils.WithBearer(t.jwtToken))
			}
			res := testutils.MakeRequest(testutils.RequestArgs{
				Router: s.router,
				Method: http.MethodPost,
				URL:    RouteGroup + RedeemRoute,
				Body:   jsonBody(fmt.Sprintf(`{"code": %q}`, t.code)),
			}, reqOpts...)
			defer func() {
				s.Require().NoError(res.Body.Close())
			}()

			s.Equal(t.wantStatus, res.StatusCode)
		})
	}
}
