package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/smartinvest/backend/internal/domain"
)

// accountRepository implements domain.AccountRepository
type accountRepository struct {
	db *DB
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *DB) domain.AccountRepository {
	return &accountRepository{db: db}
}

// GetByUserID retrieves an account with its holdings and full ledger
func (r *accountRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Account, error) {
	query := `
		SELECT user_id, name, is_public, balance
		FROM accounts
		WHERE user_id = $1
	`

	var account domain.Account
	var balanceStr string

	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&account.UserID,
		&account.Name,
		&account.IsPublic,
		&balanceStr,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	account.Snapshot.Balance, err = decimal.NewFromString(balanceStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse balance: %w", err)
	}

	if account.Snapshot.Holdings, err = r.loadHoldings(ctx, userID); err != nil {
		return nil, err
	}
	if account.Snapshot.Transactions, err = r.loadTransactions(ctx, userID); err != nil {
		return nil, err
	}

	return &account, nil
}

// ListPublic retrieves all accounts whose profile is public
func (r *accountRepository) ListPublic(ctx context.Context) ([]*domain.Account, error) {
	query := `
		SELECT user_id
		FROM accounts
		WHERE is_public = TRUE
		ORDER BY user_id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list public accounts: %w", err)
	}
	defer rows.Close()

	var userIDs []uuid.UUID
	for rows.Next() {
		var userID uuid.UUID
		if err := rows.Scan(&userID); err != nil {
			return nil, fmt.Errorf("failed to scan account row: %w", err)
		}
		userIDs = append(userIDs, userID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate account rows: %w", err)
	}

	accounts := make([]*domain.Account, 0, len(userIDs))
	for _, userID := range userIDs {
		account, err := r.GetByUserID(ctx, userID)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	return accounts, nil
}

// ApplyEvent atomically replaces balance and holdings and appends the
// event to the ledger in one database transaction
func (r *accountRepository) ApplyEvent(ctx context.Context, userID uuid.UUID, snapshot domain.AccountSnapshot, tx domain.Transaction) error {
	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	updateQuery := `
		UPDATE accounts
		SET balance = $2
		WHERE user_id = $1
	`
	result, err := dbTx.ExecContext(ctx, updateQuery, userID, snapshot.Balance.String())
	if err != nil {
		return fmt.Errorf("failed to update balance: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result: %w", err)
	}
	if affected == 0 {
		return domain.ErrAccountNotFound
	}

	// Holdings are replaced wholesale: the snapshot is the truth.
	if _, err := dbTx.ExecContext(ctx, `DELETE FROM holdings WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to clear holdings: %w", err)
	}

	insertHoldingQuery := `
		INSERT INTO holdings (user_id, symbol, quantity, avg_price, total_cost)
		VALUES ($1, $2, $3, $4, $5)
	`
	for _, holding := range snapshot.Holdings {
		_, err := dbTx.ExecContext(ctx, insertHoldingQuery,
			userID,
			holding.Symbol,
			holding.Quantity.String(),
			holding.AvgPrice.String(),
			holding.TotalCost.String(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert holding: %w", err)
		}
	}

	if err := insertTransaction(ctx, dbTx, userID, tx); err != nil {
		return err
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func insertTransaction(ctx context.Context, dbTx *sql.Tx, userID uuid.UUID, tx domain.Transaction) error {
	query := `
		INSERT INTO transactions (user_id, type, symbol, quantity, price, commission, amount, description, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	var (
		symbol, description              sql.NullString
		quantity, price, commission, amt sql.NullString
	)

	switch event := tx.(type) {
	case domain.Buy:
		symbol = sql.NullString{String: event.Symbol, Valid: true}
		quantity = sql.NullString{String: event.Quantity.String(), Valid: true}
		price = sql.NullString{String: event.Price.String(), Valid: true}
		commission = sql.NullString{String: event.Commission.String(), Valid: true}
	case domain.Sell:
		symbol = sql.NullString{String: event.Symbol, Valid: true}
		quantity = sql.NullString{String: event.Quantity.String(), Valid: true}
		price = sql.NullString{String: event.Price.String(), Valid: true}
		commission = sql.NullString{String: event.Commission.String(), Valid: true}
	case domain.Deposit:
		amt = sql.NullString{String: event.Amount.String(), Valid: true}
		description = sql.NullString{String: event.Description, Valid: event.Description != ""}
	case domain.Withdrawal:
		amt = sql.NullString{String: event.Amount.String(), Valid: true}
		description = sql.NullString{String: event.Description, Valid: event.Description != ""}
	case domain.Liquidation:
		amt = sql.NullString{String: event.Amount.String(), Valid: true}
		description = sql.NullString{String: event.Description, Valid: event.Description != ""}
	default:
		return fmt.Errorf("unknown transaction type %T", tx)
	}

	_, err := dbTx.ExecContext(ctx, query,
		userID,
		string(tx.Type()),
		symbol,
		quantity,
		price,
		commission,
		amt,
		description,
		tx.Timestamp(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	return nil
}

func (r *accountRepository) loadHoldings(ctx context.Context, userID uuid.UUID) ([]domain.Holding, error) {
	query := `
		SELECT symbol, quantity, avg_price, total_cost
		FROM holdings
		WHERE user_id = $1
		ORDER BY symbol
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load holdings: %w", err)
	}
	defer rows.Close()

	var holdings []domain.Holding
	for rows.Next() {
		var h domain.Holding
		var quantityStr, avgPriceStr, totalCostStr string

		if err := rows.Scan(&h.Symbol, &quantityStr, &avgPriceStr, &totalCostStr); err != nil {
			return nil, fmt.Errorf("failed to scan holding row: %w", err)
		}
		if h.Quantity, err = decimal.NewFromString(quantityStr); err != nil {
			return nil, fmt.Errorf("failed to parse holding quantity: %w", err)
		}
		if h.AvgPrice, err = decimal.NewFromString(avgPriceStr); err != nil {
			return nil, fmt.Errorf("failed to parse holding avg price: %w", err)
		}
		if h.TotalCost, err = decimal.NewFromString(totalCostStr); err != nil {
			return nil, fmt.Errorf("failed to parse holding total cost: %w", err)
		}
		holdings = append(holdings, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate holding rows: %w", err)
	}
	return holdings, nil
}

func (r *accountRepository) loadTransactions(ctx context.Context, userID uuid.UUID) ([]domain.Transaction, error) {
	query := `
		SELECT type, symbol, quantity, price, commission, amount, description, occurred_at
		FROM transactions
		WHERE user_id = $1
		ORDER BY occurred_at, id
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}
	defer rows.Close()

	var transactions []domain.Transaction
	for rows.Next() {
		var (
			txType                           string
			symbol, description              sql.NullString
			quantity, price, commission, amt sql.NullString
			occurredAt                       time.Time
		)
		if err := rows.Scan(&txType, &symbol, &quantity, &price, &commission, &amt, &description, &occurredAt); err != nil {
			return nil, fmt.Errorf("failed to scan transaction row: %w", err)
		}

		tx, err := buildTransaction(txType, symbol, quantity, price, commission, amt, description, occurredAt)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transaction rows: %w", err)
	}
	return transactions, nil
}

// buildTransaction reconstructs the ledger event variant from its row.
func buildTransaction(txType string, symbol, quantity, price, commission, amt, description sql.NullString, occurredAt time.Time) (domain.Transaction, error) {
	parse := func(v sql.NullString, field string) (decimal.Decimal, error) {
		if !v.Valid {
			return decimal.Zero, fmt.Errorf("transaction %s is missing %s", txType, field)
		}
		d, err := decimal.NewFromString(v.String)
		if err != nil {
			return decimal.Zero, fmt.Errorf("failed to parse transaction %s: %w", field, err)
		}
		return d, nil
	}

	switch domain.TransactionType(txType) {
	case domain.TransactionTypeBuy, domain.TransactionTypeSell:
		qty, err := parse(quantity, "quantity")
		if err != nil {
			return nil, err
		}
		prc, err := parse(price, "price")
		if err != nil {
			return nil, err
		}
		com, err := parse(commission, "commission")
		if err != nil {
			return nil, err
		}
		if domain.TransactionType(txType) == domain.TransactionTypeBuy {
			return domain.Buy{Symbol: symbol.String, Quantity: qty, Price: prc, Commission: com, Date: occurredAt}, nil
		}
		return domain.Sell{Symbol: symbol.String, Quantity: qty, Price: prc, Commission: com, Date: occurredAt}, nil

	case domain.TransactionTypeDeposit, domain.TransactionTypeWithdrawal, domain.TransactionTypeLiquidation:
		amount, err := parse(amt, "amount")
		if err != nil {
			return nil, err
		}
		switch domain.TransactionType(txType) {
		case domain.TransactionTypeDeposit:
			return domain.Deposit{Amount: amount, Date: occurredAt, Description: description.String}, nil
		case domain.TransactionTypeWithdrawal:
			return domain.Withdrawal{Amount: amount, Date: occurredAt, Description: description.String}, nil
		default:
			return domain.Liquidation{Amount: amount, Date: occurredAt, Description: description.String}, nil
		}

	default:
		return nil, fmt.Errorf("unknown transaction type %q", txType)
	}
}
