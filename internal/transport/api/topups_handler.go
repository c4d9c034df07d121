package api

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"time"

	"github.com/fsdevblog/groph-pay/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	qrcode "github.com/skip2/go-qrcode"
)

const qrImageSize = 256

type TopupsHandler struct {
	topupSvs TopupServicer
	userSvs  UserServicer
}

func NewTopupsHandler(topupSvs TopupServicer, userSvs UserServicer) *TopupsHandler {
	return &TopupsHandler{
		topupSvs: topupSvs,
		userSvs:  userSvs,
	}
}

type InitiateParams struct {
	Amount decimal.Decimal `binding:"required" json:"amount"`
}

type InitiateResponse struct {
	TransactionID string `json:"transaction_id"`
	Status        string `json:"status"`
	QRPayload     string `json:"qr_payload"`
	QRImage       string `json:"qr_image"`
}

// Initiate POST RouteGroup + TopupsRoute. Создает pending пополнение и возвращает QR для оплаты.
// Id юзера берется из контекста авторизации, из тела запроса принимается только сумма.
func (h *TopupsHandler) Initiate(c *gin.Context) {
	currentUserID := getUserIDFromContext(c)

	var params InitiateParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, bindErr).SetType(gin.ErrorTypeBind)
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	result, err := h.topupSvs.Initiate(reqCtx, currentUserID, params.Amount)
	if err != nil {
		var payloadErr *domain.PayloadError
		switch {
		case errors.Is(err, domain.ErrInvalidAmount):
			abortWithCode(c, http.StatusBadRequest, CodeInvalidAmount, "amount must be positive")
		case errors.Is(err, domain.ErrAmountTooLarge):
			abortWithCode(c, http.StatusBadRequest, CodeAmountTooLarge, "amount exceeds maximum")
		case errors.Is(err, domain.ErrRecordNotFound):
			abortWithCode(c, http.StatusNotFound, CodeAccountNotFound, "account not found")
		case errors.As(err, &payloadErr):
			_ = c.Error(err).SetType(gin.ErrorTypePrivate)
			abortWithCode(c, http.StatusInternalServerError, CodePayloadFailed, "payload generation failed")
		default:
			h.abortStoreErr(c, err)
		}
		return
	}

	qrImage, qrErr := qrcode.Encode(result.Payload, qrcode.Medium, qrImageSize)
	if qrErr != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, qrErr).SetType(gin.ErrorTypePrivate)
		return
	}

	c.JSON(http.StatusOK, &InitiateResponse{
		TransactionID: result.Transaction.ID.String(),
		Status:        string(result.Transaction.Status),
		QRPayload:     result.Payload,
		QRImage:       base64.StdEncoding.EncodeToString(qrImage),
	})
}

type CompleteResponse struct {
	Balance float64 `json:"balance"`
}

// Complete POST RouteGroup + AdminGroup + AdminCompleteRoute. Финализирует пополнение и начисляет
// баланс. Повторный вызов штатно возвращает 409: при дублях доставки это ожидаемый исход,
// а не инцидент.
func (h *TopupsHandler) Complete(c *gin.Context) {
	transactionID, ok := parseTransactionID(c)
	if !ok {
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	newBalance, err := h.topupSvs.Complete(reqCtx, transactionID)
	if err != nil {
		h.abortFinalizeErr(c, err)
		return
	}

	c.JSON(http.StatusOK, &CompleteResponse{Balance: newBalance.InexactFloat64()})
}

// Reject POST RouteGroup + AdminGroup + AdminRejectRoute. Отклоняет пополнение, баланс не меняется.
func (h *TopupsHandler) Reject(c *gin.Context) {
	transactionID, ok := parseTransactionID(c)
	if !ok {
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	if err := h.topupSvs.Reject(reqCtx, transactionID); err != nil {
		h.abortFinalizeErr(c, err)
		return
	}

	c.AbortWithStatus(http.StatusOK)
}

type TransactionResponse struct {
	ID          string     `json:"id"`
	Amount      float64    `json:"amount"`
	Type        string     `json:"type"`
	Status      string     `json:"status"`
	Method      string     `json:"method"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Show GET RouteGroup + TopupRoute. Статус транзакции. Чужие транзакции не отдаем: для
// постороннего юзера ответ неотличим от несуществующей транзакции.
func (h *TopupsHandler) Show(c *gin.Context) {
	currentUserID := getUserIDFromContext(c)

	transactionID, ok := parseTransactionID(c)
	if !ok {
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	transaction, err := h.topupSvs.GetStatus(reqCtx, transactionID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			abortWithCode(c, http.StatusNotFound, CodeTransactionNotFound, "transaction not found")
			return
		}
		h.abortStoreErr(c, err)
		return
	}

	if transaction.UserID != currentUserID {
		abortWithCode(c, http.StatusNotFound, CodeTransactionNotFound, "transaction not found")
		return
	}

	c.JSON(http.StatusOK, convertTransaction(transaction))
}

// Index GET RouteGroup + TopupsRoute. История транзакций текущего юзера.
func (h *TopupsHandler) Index(c *gin.Context) {
	currentUserID := getUserIDFromContext(c)

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	transactions, err := h.topupSvs.GetByUserID(reqCtx, currentUserID)
	if err != nil {
		h.abortStoreErr(c, err)
		return
	}

	if len(transactions) == 0 {
		c.AbortWithStatus(http.StatusNoContent)
		return
	}

	response := make([]TransactionResponse, len(transactions))
	for i, transaction := range transactions {
		response[i] = *convertTransaction(&transaction)
	}

	c.JSON(http.StatusOK, response)
}

type BalanceResponse struct {
	Balance float64 `json:"balance"`
}

// Balance GET RouteGroup + BalanceRoute. Текущий баланс юзера.
func (h *TopupsHandler) Balance(c *gin.Context) {
	currentUserID := getUserIDFromContext(c)

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	balance, err := h.userSvs.GetBalance(reqCtx, currentUserID)
	if err != nil {
		h.abortStoreErr(c, err)
		return
	}

	c.JSON(http.StatusOK, &BalanceResponse{Balance: balance.InexactFloat64()})
}

// abortFinalizeErr маппинг ошибок финализации на статусы и коды из таблицы API.
func (h *TopupsHandler) abortFinalizeErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrRecordNotFound):
		abortWithCode(c, http.StatusNotFound, CodeTransactionNotFound, "transaction not found")
	case errors.Is(err, domain.ErrTransactionFinalized):
		abortWithCode(c, http.StatusConflict, CodeAlreadyFinalized, "transaction already finalized")
	default:
		h.abortStoreErr(c, err)
	}
}

// abortStoreErr все прочие ошибки стора считаем временными: клиент может повторить запрос.
func (h *TopupsHandler) abortStoreErr(c *gin.Context, err error) {
	_ = c.Error(err).SetType(gin.ErrorTypePrivate)
	abortWithCode(c, http.StatusServiceUnavailable, CodeStoreUnavailable, "store unavailable, retry later")
}

func parseTransactionID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abortWithCode(c, http.StatusNotFound, CodeTransactionNotFound, "transaction not found")
		return uuid.Nil, false
	}
	return id, true
}

func convertTransaction(t *domain.Transaction) *TransactionResponse {
	return &TransactionResponse{
		ID:          t.ID.String(),
		Amount:      t.Amount.InexactFloat64(),
		Type:        string(t.Type),
		Status:      string(t.Status),
		Method:      t.Method,
		CreatedAt:   t.CreatedAt,
		CompletedAt: t.CompletedAt,
	}
}
