package pgrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fsdevblog/groph-pay/internal/domain"
	"github.com/fsdevblog/groph-pay/internal/repository/repoargs"
	"github.com/fsdevblog/groph-pay/pkg/uow"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type TransactionRepository struct {
	conn uow.DBTX
}

func NewTransactionRepository(conn uow.DBTX) *TransactionRepository {
	return &TransactionRepository{conn: conn}
}

const transactionColumns = "id, created_at, updated_at, completed_at, user_id, amount, type, status, method"

func (r *TransactionRepository) Create(
	ctx context.Context,
	args repoargs.TransactionCreate,
) (*domain.Transaction, error) {
	row := r.conn.QueryRow(ctx, `
		INSERT INTO transactions (id, user_id, amount, type, status, method, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, CASE WHEN $5 = 'pending' THEN NULL ELSE now() END)
		RETURNING `+transactionColumns,
		args.ID, args.UserID, args.Amount, args.Type, args.Status, args.Method)

	transaction, err := scanTransaction(row)
	if err != nil {
		return nil, convertErr(err, "creating transaction for user %d", args.UserID)
	}
	return transaction, nil
}

func (r *TransactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = $1`, id)

	transaction, err := scanTransaction(row)
	if err != nil {
		return nil, convertErr(err, "finding transaction %s", id)
	}
	return transaction, nil
}

// GetByUserID возвращает транзакции юзера, отсортированные по дате создания по убыванию.
func (r *TransactionRepository) GetByUserID(ctx context.Context, userID int64) ([]domain.Transaction, error) {
	rows, err := r.conn.Query(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE user_id = $1
		ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, convertErr(err, "getting transactions of user %d", userID)
	}
	defer rows.Close()

	return collectTransactions(rows, fmt.Sprintf("getting transactions of user %d", userID))
}

// Finalize условно переводит транзакцию в терминальный статус status. Срабатывает только если
// текущий статус pending: условие входит в UPDATE, поэтому конкурентные вызовы не могут
// финализировать одну транзакцию дважды. Если условный апдейт не затронул ни одной строки,
// возвращается ErrRecordNotFound (транзакции нет) либо ErrTransactionFinalized (уже финализирована).
func (r *TransactionRepository) Finalize(
	ctx context.Context,
	id uuid.UUID,
	status domain.TransactionStatus,
) (*domain.Transaction, error) {
	row := r.conn.QueryRow(ctx, `
		UPDATE transactions
		SET status = $2, completed_at = now(), updated_at = now()
		WHERE id = $1 AND status = 'pending'
		RETURNING `+transactionColumns, id, status)

	transaction, err := scanTransaction(row)
	if err == nil {
		return transaction, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, convertErr(err, "finalizing transaction %s", id)
	}

	// Апдейт никого не затронул: различаем "нет такой транзакции" и "уже финализирована".
	var currentStatus domain.TransactionStatus
	if stErr := r.conn.QueryRow(ctx, `SELECT status FROM transactions WHERE id = $1`, id).
		Scan(&currentStatus); stErr != nil {
		return nil, convertErr(stErr, "finalizing transaction %s", id)
	}
	return nil, fmt.Errorf("[repository/finalizing transaction %s] %w: status is %s",
		id, domain.ErrTransactionFinalized, currentStatus)
}

// FindExpiredPending возвращает pending транзакции типа topup, созданные раньше olderThan.
func (r *TransactionRepository) FindExpiredPending(
	ctx context.Context,
	olderThan time.Time,
	limit uint,
) ([]domain.Transaction, error) {
	limitInt, limitErr := safeConvertUintToInt32(limit)
	if limitErr != nil {
		return nil, fmt.Errorf("finding expired transactions: %w", limitErr)
	}

	rows, err := r.conn.Query(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE status = 'pending' AND type = 'topup' AND created_at < $1
		ORDER BY created_at
		LIMIT $2`, olderThan, limitInt)
	if err != nil {
		return nil, convertErr(err, "finding expired transactions")
	}
	defer rows.Close()

	return collectTransactions(rows, "finding expired transactions")
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var t domain.Transaction
	err := row.Scan(
		&t.ID, &t.CreatedAt, &t.UpdatedAt, &t.CompletedAt,
		&t.UserID, &t.Amount, &t.Type, &t.Status, &t.Method,
	)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return &t, nil
}

func collectTransactions(rows pgx.Rows, errContext string) ([]domain.Transaction, error) {
	var transactions []domain.Transaction
	for rows.Next() {
		t, scanErr := scanTransaction(rows)
		if scanErr != nil {
			return nil, convertErr(scanErr, "%s", errContext)
		}
		transactions = append(transactions, *t)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, convertErr(rowsErr, "%s", errContext)
	}
	return transactions, nil
}
