package api

import (
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/fsdevblog/groph-pay/internal/domain"
	"github.com/fsdevblog/groph-pay/internal/logger"
	"github.com/fsdevblog/groph-pay/internal/service"
	"github.com/fsdevblog/groph-pay/internal/transport/api/mocks"
	"github.com/fsdevblog/groph-pay/internal/transport/api/testutils"
	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/suite"
)

type AuthHandlerTestSuite struct {
	suite.Suite
	router           *gin.Engine
	mockUserService  *mocks.MockUserServicer
	mockTopupService *mocks.MockTopupServicer
	mockGiftService  *mocks.MockGiftCodeServicer
	jwtSecret        []byte
}

func TestAuthHandlerSuite(t *testing.T) {
	suite.Run(t, new(AuthHandlerTestSuite))
}

func (s *AuthHandlerTestSuite) SetupTest() {
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

func (s *AuthHandlerTestSuite) TestRegister() {
	validArgs := service.RegisterUserArgs{Username: "newUser", Password: "password123"}
	duplicateArgs := service.RegisterUserArgs{Username: "takenUser", Password: "password123"}

	s.mockUserService.EXPECT().
		Register(gomock.Any(), validArgs).
		Return(&domain.User{ID: 1, Username: validArgs.Username}, "jwt-token-stub", nil).Times(1)
	s.mockUserService.EXPECT().
		Register(gomock.Any(), duplicateArgs).
		Return(nil, "", fmt.Errorf("registering user: %w", domain.ErrDuplicateKey)).Times(1)

	cases := []struct {
		name       string
		body       string
		wantStatus int
		wantToken  bool
	}{
		{
			name:       "all ok",
			body:       `{"login": "newUser", "password": "password123"}`,
			wantStatus: http.StatusOK,
			wantToken:  true,
		}, {
			name:       "duplicate login",
			body:       `{"login": "takenUser", "password": "password123"}`,
			wantStatus: http.StatusConflict,
		}, {
			name:       "password too short",
			body:       `{"login": "newUser", "password": "123"}`,
			wantStatus: http.StatusUnprocessableEntity,
		}, {
			name:       "malformed body",
			body:       `not a json`,
			wantStatus: http.StatusBadRequest,
		},
	}
	for _, t := range cases {
		s.Run(t.name, func() {
			res := testutils.MakeRequest(testutils.RequestArgs{
				Router: s.router,
				Method: http.MethodPost,
				URL:    RouteGroup + RegisterRoute,
				Body:   jsonBody(t.body),
			}, testutils.WithHeader("Content-Type", "application/json"))
			defer func() {
				s.Require().NoError(res.Body.Close())
			}()

			s.Equal(t.wantStatus, res.StatusCode)

			if t.wantToken {
				s.Equal("Bearer jwt-token-stub", res.Header.Get("Authorization"))
			}
		})
	}
}

func (s *AuthHandlerTestSuite) TestLogin() {
	validArgs := service.LoginUserArgs{Username: "someUser", Password: "password123"}
	wrongPassArgs := service.LoginUserArgs{Username: "someUser", Password: "wrongpass12"}

	user := &domain.User{
		ID:        1,
		Username:  validArgs.Username,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	s.mockUserService.EXPECT().
		Login(gomock.Any(), validArgs).
		Return(user, "jwt-token-stub", nil).Times(1)
	s.mockUserService.EXPECT().
		Login(gomock.Any(), wrongPassArgs).
		Return(nil, "", fmt.Errorf("logging in user: %w", domain.ErrPasswordMissMatch)).Times(1)

	cases := []struct {
		name       string
		body       string
		wantStatus int
		wantToken  bool
	}{
		{
			name:       "all ok",
			body:       `{"login": "someUser", "password": "password123"}`,
			wantStatus: http.StatusOK,
			wantToken:  true,
		}, {
			name:       "wrong password",
			body:       `{"login": "someUser", "password": "wrongpass12"}`,
			wantStatus: http.StatusUnauthorized,
		}, {
			name:       "missing password",
			body:       `{"login": "someUser"}`,
			wantStatus: http.StatusBadRequest,
		},
	}
	for _, t := range cases {
		s.Run(t.name, func() {
			res := testutils.MakeRequest(testutils.RequestArgs{
				Router: s.router,
				Method: http.MethodPost,
				URL:    RouteGroup + LoginRoute,
				Body:   jsonBody(t.body),
			}, testutils.WithHeader("Content-Type", "application/json"))
			defer func() {
				s.Require().NoError(res.Body.Close())
			}()

			s.Equal(t.wantStatus, res.StatusCode)

			if t.wantToken {
				s.Equal("Bearer jwt-token-stub", res.Header.Get("Authorization"))
			}
		})
	}
}
