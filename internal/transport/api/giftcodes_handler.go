package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/fsdevblog/groph-pay/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type GiftCodesHandler struct {
	giftSvs GiftCodeServicer
}

func NewGiftCodesHandler(giftSvs GiftCodeServicer) *GiftCodesHandler {
	return &GiftCodesHandler{
		giftSvs: giftSvs,
	}
}

type CreateGiftCodeParams struct {
	Amount decimal.Decimal `binding:"required" json:"amount"`
}

type GiftCodeResponse struct {
	Code      string    `json:"code"`
	Amount    float64   `json:"amount"`
	CreatedAt time.Time `json:"created_at"`
}

// Create POST RouteGroup + AdminGroup + AdminGiftCodesRoute. Выпускает подарочный код.
func (h *GiftCodesHandler) Create(c *gin.Context) {
	var params CreateGiftCodeParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, bindErr).SetType(gin.ErrorTypeBind)
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	giftCode, err := h.giftSvs.Create(reqCtx, params.Amount)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidAmount) {
			abortWithCode(c, http.StatusBadRequest, CodeInvalidAmount, "amount must be positive")
			return
		}
		_ = c.Error(err).SetType(gin.ErrorTypePrivate)
		abortWithCode(c, http.StatusServiceUnavailable, CodeStoreUnavailable, "store unavailable, retry later")
		return
	}

	c.JSON(http.StatusOK, &GiftCodeResponse{
		Code:      giftCode.Code,
		Amount:    giftCode.Amount.InexactFloat64(),
		CreatedAt: giftCode.CreatedAt,
	})
}

type RedeemParams struct {
	Code string `binding:"required,min=1,max=64" json:"code"`
}

type RedeemResponse struct {
	TransactionID string  `json:"transaction_id"`
	Amount        float64 `json:"amount"`
	Balance       float64 `json:"balance"`
}

// Redeem POST RouteGroup + RedeemRoute. Погашает код за текущего юзера. Повторное погашение
// возвращает 409 с кодом gift_code_claimed.
func (h *GiftCodesHandler) Redeem(c *gin.Context) {
	currentUserID := getUserIDFromContext(c)

	var params RedeemParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, bindErr).SetType(gin.ErrorTypeBind)
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	result, err := h.giftSvs.Redeem(reqCtx, currentUserID, params.Code)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			abortWithCode(c, http.StatusNotFound, CodeGiftCodeNotFound, "gift code not found")
		case errors.Is(err, domain.ErrGiftCodeClaimed):
			abortWithCode(c, http.StatusConflict, CodeGiftCodeClaimed, "gift code already claimed")
		default:
			_ = c.Error(err).SetType(gin.ErrorTypePrivate)
			abortWithCode(c, http.StatusServiceUnavailable, CodeStoreUnavailable, "store unavailable, retry later")
		}
		return
	}

	c.JSON(http.StatusOK, &RedeemResponse{
		TransactionID: result.Transaction.ID.String(),
		Amount:        result.Transaction.Amount.InexactFloat64(),
		Balance:       result.NewBalance.InexactFloat64(),
	})
}
