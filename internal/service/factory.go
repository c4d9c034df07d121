package service

import (
	"fmt"

	"github.com/fsdevblog/groph-pay/pkg/uow"
	"github.com/shopspring/decimal"
)

type AppServices struct {
	UserService     *UserService
	TopupService    *TopupService
	GiftCodeService *GiftCodeService
}

type FactoryArgs struct {
	UnitOfWork     uow.UOW
	JWTSecret      []byte
	Payloads       PayloadGenerator
	MaxTopupAmount decimal.Decimal
}

func Factory(args FactoryArgs) (*AppServices, error) {
	userService, userServiceErr := NewUserService(args.UnitOfWork, args.JWTSecret)
	if userServiceErr != nil {
		return nil, fmt.Errorf("service factory: %s", userServiceErr.Error())
	}

	topupService, topupServiceErr := NewTopupService(args.UnitOfWork, args.Payloads, args.MaxTopupAmount)
	if topupServiceErr != nil {
		return nil, fmt.Errorf("service factory: %s", topupServiceErr.Error())
	}

	giftCodeService, giftCodeServiceErr := NewGiftCodeService(args.UnitOfWork)
	if giftCodeServiceErr != nil {
		return nil, fmt.Errorf("service factory: %s", giftCodeServiceErr.Error())
	}

	return &AppServices{
		UserService:     userService,
		TopupService:    topupService,
		GiftCodeService: giftCodeService,
	}, nil
}
