package service

import (
	"context"
	"testing"
	"time"

	"github.com/fsdevblog/groph-pay/internal/domain"
	"github.com/fsdevblog/groph-pay/internal/repository/repoargs"
	"github.com/fsdevblog/groph-pay/internal/service/mocks"
	"github.com/fsdevblog/groph-pay/internal/service/tokens"
	"github.com/fsdevblog/groph-pay/pkg/uow"
	uowmocks "github.com/fsdevblog/groph-pay/pkg/uow/mocks"
	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"
)

type UserServiceTestSuite struct {
	suite.Suite
	mockUOW      *uowmocks.MockUOW
	mockUserRepo *mocks.MockUserRepository
	jwtSecret    []byte
	userService  *UserService
}

func TestUserServiceSuite(t *testing.T) {
	suite.Run(t, new(UserServiceTestSuite))
}

func (s *UserServiceTestSuite) SetupTest() {
	mockCtrl := gomock.NewController(s.T())
	s.mockUOW = uowmocks.NewMockUOW(mockCtrl)
	s.mockUserRepo = mocks.NewMockUserRepository(mockCtrl)

	s.jwtSecret = []byte("secret")

	// Мок получения репозитория из uow. Выполняется в инициализации сервиса.
	s.mockUOW.EXPECT().GetRepository(uow.RepositoryName(repoargs.UserRepoName)).
		Return(s.mockUserRepo, nil).AnyTimes()

	userService, servErr := NewUserService(s.mockUOW, s.jwtSecret)
	s.Require().NoError(servErr)
	s.userService = userService
}

func (s *UserServiceTestSuite) TestLogin() {
	savedUserUsername := "test"
	validPassword := "valid password"

	hashedPassword, hashErr := bcrypt.GenerateFromPassword([]byte(validPassword), bcrypt.MinCost)
	s.Require().NoError(hashErr)

	savedUser := domain.User{
		ID:        1,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
		Username:  savedUserUsername,
		Password:  string(hashedPassword),
	}

	s.mockUserRepo.EXPECT().
		FindUserByUsername(gomock.Any(), savedUserUsername).
		Return(&savedUser, nil).Times(2)
	s.mockUserRepo.EXPECT().
		FindUserByUsername(gomock.Any(), "wrong").
		Return(nil, domain.ErrRecordNotFound)

	cases := []struct {
		name    string
		args    LoginUserArgs
		wantErr error
	}{
		{
			name:    "ok",
			args:    LoginUserArgs{Username: savedUserUsername, Password: validPassword},
			wantErr: nil,
		}, {
			name:    "wrong username",
			args:    LoginUserArgs{Username: "wrong", Password: validPassword},
			wantErr: domain.ErrRecordNotFound,
		}, {
			name:    "wrong password",
			args:    LoginUserArgs{Username: savedUserUsername, Password: "wrong pass"},
			wantErr: domain.ErrPasswordMissMatch,
		},
	}

	for _, t := range cases {
		s.Run(t.name, func() {
			user, tokenStr, err := s.userService.Login(s.T().Context(), t.args)
			s.Require().ErrorIs(err, t.wantErr)

			if t.wantErr == nil {
				s.NotNil(user)
				s.Require().NotEmpty(tokenStr)

				token, tokenErr := tokens.ValidateUserJWT(tokenStr, s.jwtSecret)
				s.Require().NoError(tokenErr)
				s.Equal(token.Claims.(*tokens.UserClaims).ID, savedUser.ID) //nolint:errcheck
			}
		})
	}
}

func (s *UserServiceTestSuite) TestRegister() {
	argsOk := RegisterUserArgs{
		Username: "validUser",
		Password: "<PASSWORD>",
	}
	argsDuplicateUsername := RegisterUserArgs{
		Username: "duplicateUser",
		Password: "<PASSWORD>",
	}

	createdUser := domain.User{
		ID:        1,
		Username:  argsOk.Username,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	// Пароль хешируется bcrypt с солью: сравниваем не хеш, а что хеш сходится с паролем.
	s.mockUserRepo.EXPECT().
		CreateUser(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, args repoargs.CreateUser) (*domain.User, error) {
			compareErr := bcrypt.CompareHashAndPassword([]byte(args.Password), []byte(argsOk.Password))
			s.Require().NoError(compareErr)

			switch args.Username {
			case argsOk.Username:
				return &createdUser, nil
			case argsDuplicateUsername.Username:
				return nil, domain.ErrDuplicateKey
			default:
				s.Failf("unexpected username", "got %s", args.Username)
				return nil, domain.ErrUnknown
			}
		}).Times(2)

	cases := []struct {
		name      string
		args      RegisterUserArgs
		wantErr   error
		wantUser  *domain.User
		wantToken bool
	}{
		{
			name:      "ok",
			args:      argsOk,
			wantUser:  &createdUser,
			wantToken: true,
		},
		{
			name:    "duplicate username",
			args:    argsDuplicateUsername,
			wantErr: domain.ErrDuplicateKey,
		},
	}

	for _, t := range cases {
		s.Run(t.name, func() {
			user, tokenStr, err := s.userService.Register(s.T().Context(), t.args)

			s.Require().ErrorIs(err, t.wantErr)
			s.Equal(t.wantUser, user)

			if t.wantToken {
				s.Require().NotEmpty(tokenStr)

				token, tokenErr := tokens.ValidateUserJWT(tokenStr, s.jwtSecret)
				s.Require().NoError(tokenErr)
				s.Equal(token.Claims.(*tokens.UserClaims).ID, user.ID) //nolint:errcheck
			} else {
				s.Empty(tokenStr)
			}
		})
	}
}

func (s *UserServiceTestSuite) TestGetBalance() {
	var userID int64 = 1
	balance := decimal.NewFromFloat(100.50)

	s.mockUserRepo.EXPECT().
		FindUserByID(gomock.Any(), userID).
		Return(&domain.User{ID: userID, Balance: balance}, nil)
	s.mockUserRepo.EXPECT().
		FindUserByID(gomock.Any(), int64(404)).
		Return(nil, domain.ErrRecordNotFound)

	got, err := s.userService.GetBalance(s.T().Context(), userID)
	s.Require().NoError(err)
	s.True(balance.Equal(got))

	_, notFoundErr := s.userService.GetBalance(s.T().Context(), 404)
	s.Require().ErrorIs(notFoundErr, domain.ErrRecordNotFound)
}
