package repository

import (
	"context"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/parcel-service/internal/domain"
)

// BranchRepository resolves branch records for login and directory listing.
type BranchRepository interface {
	GetBySlug(ctx context.Context, slug string) (*domain.BranchAccount, error)
	List(ctx context.Context) ([]domain.BranchAccount, error)
}

type branchRepository struct {
	pool *pgxpool.Pool
}

// NewBranchRepository builds a Postgres-backed repository.
func NewBranchRepository(pool *pgxpool.Pool) BranchRepository {
	return &branchRepository{pool: pool}
}

func (r *branchRepository) GetBySlug(ctx context.Context, slug string) (*domain.BranchAccount, error) {
	const query = `SELECT slug, title, password_hash FROM branches WHERE slug=$1`
	var branch domain.BranchAccount
	if err := r.pool.QueryRow(ctx, query, slug).Scan(&branch.Slug, &branch.Title, &branch.PasswordHash); err != nil {
		return nil, err
	}
	return &branch, nil
}

func (r *branchRepository) List(ctx context.Context) ([]domain.BranchAccount, error) {
	const query = `SELECT slug, title, password_hash FROM branches ORDER BY slug ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.BranchAccount
	for rows.Next() {
		var branch domain.BranchAccount
		if err := rows.Scan(&branch.Slug, &branch.Title, &branch.PasswordHash); err != nil {
			return nil, err
		}
		result = append(result, branch)
	}
	return result, rows.Err()
}

// memoryBranchRepository serves seeded branches when no DSN is set.
type memoryBranchRepository struct {
	branches map[string]domain.BranchAccount
}

// NewMemoryBranchRepository builds a repository from seeded branches.
func NewMemoryBranchRepository(branches []domain.BranchAccount) BranchRepository {
	bySlug := make(map[string]domain.BranchAccount, len(branches))
	for _, branch := range branches {
		bySlug[branch.Slug] = branch
	}
	return &memoryBranchRepository{branches: bySlug}
}

func (r *memoryBranchRepository) GetBySlug(_ context.Context, slug string) (*domain.BranchAccount, error) {
	branch, ok := r.branches[slug]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &branch, nil
}

func (r *memoryBranchRepository) List(_ context.Context) ([]domain.BranchAccount, error) {
	result := make([]domain.BranchAccount, 0, len(r.branches))
	for _, branch := range r.branches {
		result = append(result, branch)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Slug < result[j].Slug })
	return result, nil
}
