package api

import (
	"time"

	"github.com/fsdevblog/groph-pay/internal/transport/api/middlewares"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	DefaultServiceTimeout = 3 * time.Second
)

const (
	RouteGroup    = "/api"
	RegisterRoute = "/user/register"
	LoginRoute    = "/user/login"
	TopupsRoute   = "/user/topups"
	TopupRoute    = "/user/topups/:id"
	BalanceRoute  = "/user/balance"
	RedeemRoute   = "/user/giftcodes/redeem"

	AdminGroup          = "/admin"
	AdminCompleteRoute  = "/topups/:id/complete"
	AdminRejectRoute    = "/topups/:id/reject"
	AdminGiftCodesRoute = "/giftcodes"
)

type RouterArgs struct {
	Logger          *logrus.Logger
	UserService     UserServicer
	TopupService    TopupServicer
	GiftCodeService GiftCodeServicer
	JWTSecretKey    []byte
	AdminToken      string
}

func New(args RouterArgs) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if args.Logger != nil {
		r.Use(middlewares.Logger(args.Logger))
	}
	r.Use(middlewares.Errors())

	authHandler := NewAuthHandler(args.UserService)
	topupsHandler := NewTopupsHandler(args.TopupService, args.UserService)
	giftCodesHandler := NewGiftCodesHandler(args.GiftCodeService)

	api := r.Group(RouteGroup)

	api.POST(RegisterRoute, middlewares.NonAuthRequired(args.JWTSecretKey), authHandler.Register)
	api.POST(LoginRoute, middlewares.NonAuthRequired(args.JWTSecretKey), authHandler.Login)

	// Роуты оператора: финализация пополнений и выпуск подарочных кодов.
	admin := api.Group(AdminGroup, middlewares.AdminRequired(args.AdminToken))
	admin.POST(AdminCompleteRoute, topupsHandler.Complete)
	admin.POST(AdminRejectRoute, topupsHandler.Reject)
	admin.POST(AdminGiftCodesRoute, giftCodesHandler.Create)

	api.Use(middlewares.AuthRequired(args.JWTSecretKey))
	// ниже все роуты группы требуют авторизованного пользователя.
	api.POST(TopupsRoute, topupsHandler.Initiate)
	api.GET(TopupsRoute, topupsHandler.Index)
	api.GET(TopupRoute, topupsHandler.Show)
	api.GET(BalanceRoute, topupsHandler.Balance)
	api.POST(RedeemRoute, giftCodesHandler.Redeem)

	return r
}
