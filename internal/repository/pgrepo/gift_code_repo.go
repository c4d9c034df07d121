package pgrepo

import (
	"context"
	"errors"
	"fmt"

	"github.com/fsdevblog/groph-pay/internal/domain"
	"github.com/fsdevblog/groph-pay/pkg/uow"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type GiftCodeRepository struct {
	conn uow.DBTX
}

func NewGiftCodeRepository(conn uow.DBTX) *GiftCodeRepository {
	return &GiftCodeRepository{conn: conn}
}

const giftCodeColumns = "id, created_at, code, amount, claimed_by, claimed_at"

func (r *GiftCodeRepository) Create(
	ctx context.Context,
	code string,
	amount decimal.Decimal,
) (*domain.GiftCode, error) {
	row := r.conn.QueryRow(ctx, `
		INSERT INTO gift_codes (code, amount)
		VALUES ($1, $2)
		RETURNING `+giftCodeColumns, code, amount)

	giftCode, err := scanGiftCode(row)
	if err != nil {
		return nil, convertErr(err, "creating gift code")
	}
	return giftCode, nil
}

// Claim атомарно помечает код использованным юзером userID. Условие claimed_by IS NULL входит
// в UPDATE, так что код нельзя погасить дважды. Если апдейт не затронул ни одной строки,
// возвращается ErrRecordNotFound (нет такого кода) либо ErrGiftCodeClaimed (уже погашен).
func (r *GiftCodeRepository) Claim(ctx context.Context, code string, userID int64) (*domain.GiftCode, error) {
	row := r.conn.QueryRow(ctx, `
		UPDATE gift_codes
		SET claimed_by = $2, claimed_at = now()
		WHERE code = $1 AND claimed_by IS NULL
		RETURNING `+giftCodeColumns, code, userID)

	giftCode, err := scanGiftCode(row)
	if err == nil {
		return giftCode, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, convertErr(err, "claiming gift code")
	}

	var exists bool
	if exErr := r.conn.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM gift_codes WHERE code = $1)`, code).
		Scan(&exists); exErr != nil {
		return nil, convertErr(exErr, "claiming gift code")
	}
	if !exists {
		return nil, fmt.Errorf("[repository/claiming gift code] %w", domain.ErrRecordNotFound)
	}
	return nil, fmt.Errorf("[repository/claiming gift code] %w", domain.ErrGiftCodeClaimed)
}

func scanGiftCode(row pgx.Row) (*domain.GiftCode, error) {
	var g domain.GiftCode
	err := row.Scan(&g.ID, &g.CreatedAt, &g.Code, &g.Amount, &g.ClaimedBy, &g.ClaimedAt)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return &g, nil
}
