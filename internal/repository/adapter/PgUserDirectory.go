package adapter

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	repository "medichat/internal/repository/port"
)

// ErrUserNotFound is returned when a directory lookup misses.
var ErrUserNotFound = errors.New("directory: user not found")

// PgUserDirectory reads the clinic's user table. The table is owned by the
// accounts service; this adapter never writes to it.
type PgUserDirectory struct {
	pool *pgxpool.Pool
}

func NewPgUserDirectory(pool *pgxpool.Pool) *PgUserDirectory {
	return &PgUserDirectory{pool: pool}
}

var _ repository.UserDirectory = (*PgUserDirectory)(nil)

func (d *PgUserDirectory) FindByID(ctx context.Context, id int64) (*repository.User, error) {
	var u repository.User
	err := d.pool.QueryRow(ctx, `
		SELECT id, full_name, role, branch_id
		FROM users
		WHERE id = $1
	`, id).Scan(&u.ID, &u.FullName, &u.Role, &u.BranchID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// CanMessage applies the reachability policy against the users' live state:
// admins message anyone; everyone may reach an admin; otherwise both users
// must share a branch.
func (d *PgUserDirectory) CanMessage(ctx context.Context, fromID, toID int64) (bool, error) {
	from, err := d.FindByID(ctx, fromID)
	if err != nil {
		return false, fmt.Errorf("directory: sender lookup: %w", err)
	}
	to, err := d.FindByID(ctx, toID)
	if err != nil {
		return false, fmt.Errorf("directory: recipient lookup: %w", err)
	}

	if from.IsAdmin() || to.IsAdmin() {
		return true, nil
	}
	if from.BranchID == nil || to.BranchID == nil {
		return false, nil
	}
	return *from.BranchID == *to.BranchID, nil
}

// PgReferenceDirectory resolves fund-request and product previews from the
// tables owned by the accounting and inventory modules.
type PgReferenceDirectory struct {
	pool *pgxpool.Pool
}

func NewPgReferenceDirectory(pool *pgxpool.Pool) *PgReferenceDirectory {
	return &PgReferenceDirectory{pool: pool}
}

var _ repository.ReferenceDirectory = (*PgReferenceDirectory)(nil)

func (d *PgReferenceDirectory) FundRequest(ctx context.Context, id int64) (*repository.ReferencePreview, error) {
	var p repository.ReferencePreview
	err := d.pool.QueryRow(ctx, `
		SELECT id, 'Fund request #' || id::text, status
		FROM fund_requests
		WHERE id = $1
	`, id).Scan(&p.ID, &p.Label, &p.Detail)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	p.Type = "fund_request"
	return &p, nil
}

func (d *PgReferenceDirectory) Product(ctx context.Context, id int64) (*repository.ReferencePreview, error) {
	var p repository.ReferencePreview
	err := d.pool.QueryRow(ctx, `
		SELECT id, name, COALESCE(sku, '')
		FROM products
		WHERE id = $1
	`, id).Scan(&p.ID, &p.Label, &p.Detail)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	p.Type = "product"
	return &p, nil
}
