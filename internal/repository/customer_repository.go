package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/loan-portal/internal/domain"
)

// ErrNoDatabase is returned when the service runs without a Postgres pool.
var ErrNoDatabase = errors.New("postgres pool not configured")

// CustomerRepository defines read access to customer records.
type CustomerRepository interface {
	List(ctx context.Context, limit, offset int) ([]domain.Customer, error)
	Count(ctx context.Context) (int64, error)
	GetByIdentification(ctx context.Context, identification string) (*domain.Customer, error)
}

type customerRepository struct {
	pool *pgxpool.Pool
}

// NewCustomerRepository returns a Postgres-backed implementation.
func NewCustomerRepository(pool *pgxpool.Pool) CustomerRepository {
	return &customerRepository{pool: pool}
}

func (r *customerRepository) List(ctx context.Context, limit, offset int) ([]domain.Customer, error) {
	if r.pool == nil {
		return nil, ErrNoDatabase
	}
	const query = `
        SELECT identification, first_name, last_name, customer_type, credit_score, risk_level
        FROM customers
        ORDER BY last_name, first_name, identification
        LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	customers := make([]domain.Customer, 0, limit)
	for rows.Next() {
		customer, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		customers = append(customers, *customer)
	}
	return customers, rows.Err()
}

func (r *customerRepository) Count(ctx context.Context) (int64, error) {
	if r.pool == nil {
		return 0, ErrNoDatabase
	}
	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM customers`).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (r *customerRepository) GetByIdentification(ctx context.Context, identification string) (*domain.Customer, error) {
	if r.pool == nil {
		return nil, ErrNoDatabase
	}
	const query = `
        SELECT identification, first_name, last_name, customer_type, credit_score, risk_level
        FROM customers WHERE identification=$1`

	return scanCustomer(r.pool.QueryRow(ctx, query, identification))
}

func scanCustomer(row pgx.Row) (*domain.Customer, error) {
	var customer domain.Customer
	if err := row.Scan(
		&customer.Identification,
		&customer.FirstName,
		&customer.LastName,
		&customer.CustomerType,
		&customer.CreditScore,
		&customer.RiskLabel,
	); err != nil {
		return nil, err
	}
	return &customer, nil
}
