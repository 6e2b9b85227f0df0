package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/classbank/class_bank_app/internal/apperrors"
	"github.com/classbank/class_bank_app/internal/core/domain"
	portsrepo "github.com/classbank/class_bank_app/internal/core/ports/repositories"
	"github.com/classbank/class_bank_app/internal/utils/accounting"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type PgxStockRepository struct {
	BaseRepository
}

// newPgxStockRepository creates a new repository for stock products, holdings
// and price history.
func newPgxStockRepository(base BaseRepository) portsrepo.StockRepositoryFacade {
	return &PgxStockRepository{BaseRepository: base}
}

var _ portsrepo.StockRepositoryFacade = (*PgxStockRepository)(nil)

const stockColumns = `stock_id, name, current_price, volatility, is_active, created_at, created_by, last_updated_at, last_updated_by`

func scanStock(row pgx.Row) (*domain.StockProduct, error) {
	var s domain.StockProduct
	err := row.Scan(
		&s.StockID,
		&s.Name,
		&s.CurrentPrice,
		&s.Volatility,
		&s.IsActive,
		&s.CreatedAt,
		&s.CreatedBy,
		&s.LastUpdatedAt,
		&s.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to scan stock row", err)
	}
	return &s, nil
}

// FindStockByID retrieves a stock product.
func (r *PgxStockRepository) FindStockByID(ctx context.Context, stockID string) (*domain.StockProduct, error) {
	query := `SELECT ` + stockColumns + ` FROM stocks WHERE stock_id = $1;`
	return scanStock(r.Pool.QueryRow(ctx, query, stockID))
}

// ListStocks retrieves stock products, optionally including inactive ones.
func (r *PgxStockRepository) ListStocks(ctx context.Context, includeInactive bool) ([]domain.StockProduct, error) {
	query := `SELECT ` + stockColumns + ` FROM stocks`
	if !includeInactive {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY name;`

	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query stocks", err)
	}
	defer rows.Close()

	stocks := []domain.StockProduct{}
	for rows.Next() {
		s, err := scanStock(rows)
		if err != nil {
			return nil, err
		}
		stocks = append(stocks, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating stock rows", err)
	}
	return stocks, nil
}

// FindHolding retrieves one account's holding of one stock. A missing row is
// a zero-quantity holding.
func (r *PgxStockRepository) FindHolding(ctx context.Context, accountID string, stockID string) (*domain.StockHolding, error) {
	query := `SELECT quantity FROM stock_holdings WHERE account_id = $1 AND stock_id = $2;`
	holding := domain.StockHolding{AccountID: accountID, StockID: stockID}
	err := r.Pool.QueryRow(ctx, query, accountID, stockID).Scan(&holding.Quantity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &holding, nil
		}
		return nil, apperrors.NewAppError(500, "failed to find holding", err)
	}
	return &holding, nil
}

// ListHoldingsByAccount retrieves all non-zero holdings of an account.
func (r *PgxStockRepository) ListHoldingsByAccount(ctx context.Context, accountID string) ([]domain.StockHolding, error) {
	query := `
		SELECT account_id, stock_id, quantity
		FROM stock_holdings
		WHERE account_id = $1 AND quantity > 0
		ORDER BY stock_id;
	`
	rows, err := r.Pool.Query(ctx, query, accountID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query holdings for account "+accountID, err)
	}
	defer rows.Close()

	holdings := []domain.StockHolding{}
	for rows.Next() {
		var h domain.StockHolding
		if err := rows.Scan(&h.AccountID, &h.StockID, &h.Quantity); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan holding row", err)
		}
		holdings = append(holdings, h)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating holding rows", err)
	}
	return holdings, nil
}

// ListPriceHistory retrieves price samples for a stock, oldest first.
func (r *PgxStockRepository) ListPriceHistory(ctx context.Context, stockID string, since time.Time, limit int) ([]domain.StockPricePoint, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `
		SELECT stock_id, price, recorded_at
		FROM stock_price_history
		WHERE stock_id = $1 AND recorded_at >= $2
		ORDER BY recorded_at
		LIMIT $3;
	`
	rows, err := r.Pool.Query(ctx, query, stockID, since, limit)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query price history for stock "+stockID, err)
	}
	defer rows.Close()

	points := []domain.StockPricePoint{}
	for rows.Next() {
		var p domain.StockPricePoint
		if err := rows.Scan(&p.StockID, &p.Price, &p.RecordedAt); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan price history row", err)
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating price history rows", err)
	}
	return points, nil
}

// SaveStock persists a new stock product and its initial price sample.
func (r *PgxStockRepository) SaveStock(ctx context.Context, stock domain.StockProduct) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	query := `
		INSERT INTO stocks (stock_id, name, current_price, volatility, is_active, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err = tx.Exec(ctx, query,
		stock.StockID,
		stock.Name,
		stock.CurrentPrice,
		stock.Volatility,
		stock.IsActive,
		stock.CreatedAt,
		stock.CreatedBy,
		stock.LastUpdatedAt,
		stock.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: stock %s", apperrors.ErrDuplicate, stock.StockID)
		}
		return apperrors.NewAppError(500, "failed to insert stock "+stock.StockID, err)
	}

	if err := insertPricePoint(ctx, tx, stock.StockID, stock.CurrentPrice, stock.CreatedAt); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}

func insertPricePoint(ctx context.Context, tx pgx.Tx, stockID string, price decimal.Decimal, at time.Time) error {
	query := `INSERT INTO stock_price_history (stock_id, price, recorded_at) VALUES ($1, $2, $3);`
	if _, err := tx.Exec(ctx, query, stockID, price, at); err != nil {
		return apperrors.NewAppError(500, "failed to insert price sample for stock "+stockID, err)
	}
	return nil
}

// lockStock reads a stock row under FOR UPDATE so price mutations and trades
// on the same stock serialize.
func lockStock(ctx context.Context, tx pgx.Tx, stockID string) (*domain.StockProduct, error) {
	query := `SELECT ` + stockColumns + ` FROM stocks WHERE stock_id = $1 FOR UPDATE;`
	s, err := scanStock(tx.QueryRow(ctx, query, stockID))
	if err != nil {
		return nil, mapLockError(err)
	}
	return s, nil
}

func (r *PgxStockRepository) setPriceInTx(ctx context.Context, tx pgx.Tx, stockID string, newPrice decimal.Decimal, updatedBy string, now time.Time) error {
	query := `
		UPDATE stocks
		SET current_price = $2, last_updated_at = $3, last_updated_by = $4
		WHERE stock_id = $1;
	`
	if _, err := tx.Exec(ctx, query, stockID, newPrice, now, updatedBy); err != nil {
		return apperrors.NewAppError(500, "failed to update price for stock "+stockID, err)
	}
	return insertPricePoint(ctx, tx, stockID, newPrice, now)
}

// UpdatePrice sets a stock's price and appends a history sample.
func (r *PgxStockRepository) UpdatePrice(ctx context.Context, stockID string, newPrice decimal.Decimal, updatedBy string, now time.Time) (decimal.Decimal, error) {
	if !newPrice.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: price must be positive", apperrors.ErrValidation)
	}

	tx, err := r.Begin(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	defer r.Rollback(ctx, tx)

	if _, err := lockStock(ctx, tx, stockID); err != nil {
		return decimal.Zero, err
	}
	if err := r.setPriceInTx(ctx, tx, stockID, newPrice, updatedBy, now); err != nil {
		return decimal.Zero, err
	}
	if err := r.Commit(ctx, tx); err != nil {
		return decimal.Zero, err
	}
	return newPrice, nil
}

// AdjustPrice shifts a stock's price by a signed delta. The result must stay
// positive.
func (r *PgxStockRepository) AdjustPrice(ctx context.Context, stockID string, delta decimal.Decimal, updatedBy string, now time.Time) (decimal.Decimal, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	defer r.Rollback(ctx, tx)

	stock, err := lockStock(ctx, tx, stockID)
	if err != nil {
		return decimal.Zero, err
	}
	newPrice := stock.CurrentPrice.Add(delta)
	if !newPrice.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: adjusted price %s is not positive", apperrors.ErrValidation, newPrice.String())
	}
	if err := r.setPriceInTx(ctx, tx, stockID, newPrice, updatedBy, now); err != nil {
		return decimal.Zero, err
	}
	if err := r.Commit(ctx, tx); err != nil {
		return decimal.Zero, err
	}
	return newPrice, nil
}

// ExecuteTrade runs one buy/sell as a single transaction: stock row lock,
// authoritative price read, ledger entry against the treasury, holding update.
func (r *PgxStockRepository) ExecuteTrade(ctx context.Context, p portsrepo.ExecuteTradeParams) (*portsrepo.TradeResult, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	stock, err := lockStock(ctx, tx, p.StockID)
	if err != nil {
		return nil, err
	}
	if !stock.IsActive {
		return nil, fmt.Errorf("%w: stock %s is not tradable", apperrors.ErrValidation, p.StockID)
	}

	price := stock.CurrentPrice
	cost := accounting.TradeCost(price, p.Quantity)
	if cost.IsZero() {
		return nil, fmt.Errorf("%w: trade value rounds to zero", apperrors.ErrValidation)
	}

	// Lock the holding row (if any) alongside the stock row.
	var holdingQty int64
	holdingExists := true
	holdQuery := `SELECT quantity FROM stock_holdings WHERE account_id = $1 AND stock_id = $2 FOR UPDATE;`
	if err := tx.QueryRow(ctx, holdQuery, p.AccountID, p.StockID).Scan(&holdingQty); err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, mapLockError(err)
		}
		holdingExists = false
	}

	var newQty int64
	var studentAmount decimal.Decimal
	var side string
	switch p.Side {
	case domain.TradeBuy:
		newQty = holdingQty + p.Quantity
		studentAmount = cost.Neg()
		side = "buy"
	case domain.TradeSell:
		if holdingQty < p.Quantity {
			return nil, fmt.Errorf("%w: holding %d, selling %d", apperrors.ErrInsufficientHoldings, holdingQty, p.Quantity)
		}
		newQty = holdingQty - p.Quantity
		studentAmount = cost
		side = "sell"
	default:
		return nil, fmt.Errorf("%w: unknown trade side %q", apperrors.ErrValidation, p.Side)
	}

	entryID := uuid.NewString()
	entry := domain.Entry{
		EntryID:     entryID,
		Kind:        domain.EntryTrade,
		Description: fmt.Sprintf("%s %d x %s", side, p.Quantity, stock.Name),
		Amount:      cost,
		AuditFields: domain.AuditFields{
			CreatedAt:     p.Now,
			CreatedBy:     p.RequestedBy,
			LastUpdatedAt: p.Now,
			LastUpdatedBy: p.RequestedBy,
		},
	}
	lines := []domain.EntryLine{
		{LineID: uuid.NewString(), EntryID: entryID, AccountID: p.AccountID, Amount: studentAmount, Memo: stock.Name},
		{LineID: uuid.NewString(), EntryID: entryID, AccountID: p.TreasuryAccountID, Amount: studentAmount.Neg(), Memo: stock.Name},
	}
	if err := applyEntryInTx(ctx, tx, entry, lines); err != nil {
		return nil, err
	}

	if holdingExists {
		updQuery := `
			UPDATE stock_holdings
			SET quantity = $3, last_updated_at = $4, last_updated_by = $5
			WHERE account_id = $1 AND stock_id = $2;
		`
		_, err = tx.Exec(ctx, updQuery, p.AccountID, p.StockID, newQty, p.Now, p.RequestedBy)
	} else {
		insQuery := `
			INSERT INTO stock_holdings (account_id, stock_id, quantity, created_at, created_by, last_updated_at, last_updated_by)
			VALUES ($1, $2, $3, $4, $5, $4, $5);
		`
		_, err = tx.Exec(ctx, insQuery, p.AccountID, p.StockID, newQty, p.Now, p.RequestedBy)
	}
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to update holding for account "+p.AccountID, err)
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return &portsrepo.TradeResult{
		EntryID:         entryID,
		Price:           price,
		Cost:            cost,
		Quantity:        p.Quantity,
		HoldingQuantity: newQty,
	}, nil
}
