package expenses

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tripmate-app/tripmate-backend/pkg/db/models"
	"github.com/tripmate-app/tripmate-backend/pkg/pagination"
)

// Repository exposes persistence helpers for the expense ledger.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, expense *models.Expense, shares []models.ExpenseShare) error
	FindByID(ctx context.Context, tripID, expenseID uuid.UUID) (*models.Expense, error)
	List(ctx context.Context, params listExpensesParams) ([]models.Expense, *pagination.Cursor, error)
	ListWithShares(ctx context.Context, tripID uuid.UUID) ([]models.Expense, error)
	Delete(ctx context.Context, tripID, expenseID uuid.UUID) (*models.Expense, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns an expense repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

type listExpensesParams struct {
	TripID uuid.UUID
	Limit  int
	Cursor *pagination.Cursor
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, expense *models.Expense, shares []models.ExpenseShare) error {
	if err := r.db.WithContext(ctx).Create(expense).Error; err != nil {
		return err
	}
	for i := range shares {
		shares[i].ExpenseID = expense.ID
	}
	if len(shares) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(&shares).Error; err != nil {
		return err
	}
	expense.Shares = shares
	return nil
}

func (r *repositoryImpl) FindByID(ctx context.Context, tripID, expenseID uuid.UUID) (*models.Expense, error) {
	var expense models.Expense
	err := r.db.WithContext(ctx).
		Preload("Shares", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("id = ? AND trip_id = ?", expenseID, tripID).
		First(&expense).Error
	if err != nil {
		return nil, err
	}
	return &expense, nil
}

// List pages the ledger newest first: expense_date, then created_at,
// then id, all descending, so the ordering is total and cursor-stable.
func (r *repositoryImpl) List(ctx context.Context, params listExpensesParams) ([]models.Expense, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).
		Model(&models.Expense{}).
		Preload("Shares", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("trip_id = ?", params.TripID)
	if params.Cursor != nil {
		query = query.Where(
			"(expense_date, created_at, id) < (?, ?, ?)",
			params.Cursor.SortDate, params.Cursor.CreatedAt, params.Cursor.ID,
		)
	}

	var rows []models.Expense
	if err := query.Order("expense_date DESC, created_at DESC, id DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, nil, err
	}

	if len(rows) > normalized {
		rows = rows[:normalized]
		// The cursor is the last row handed out; the strict tuple
		// comparison above then resumes at the row after it.
		last := rows[normalized-1]
		return rows, &pagination.Cursor{SortDate: last.ExpenseDate, CreatedAt: last.CreatedAt, ID: last.ID}, nil
	}
	return rows, nil, nil
}

// ListWithShares returns the full ledger for settlement aggregation,
// oldest expense first.
func (r *repositoryImpl) ListWithShares(ctx context.Context, tripID uuid.UUID) ([]models.Expense, error) {
	var rows []models.Expense
	err := r.db.WithContext(ctx).
		Preload("Shares", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("trip_id = ?", tripID).
		Order("expense_date ASC, created_at ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Delete removes the expense and its shares, returning the deleted row
// so callers can emit an event with its amounts.
func (r *repositoryImpl) Delete(ctx context.Context, tripID, expenseID uuid.UUID) (*models.Expense, error) {
	expense, err := r.FindByID(ctx, tripID, expenseID)
	if err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Where("expense_id = ?", expenseID).Delete(&models.ExpenseShare{}).Error; err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Delete(&models.Expense{}, "id = ?", expenseID).Error; err != nil {
		return nil, err
	}
	return expense, nil
}
