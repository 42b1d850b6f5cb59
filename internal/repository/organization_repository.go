package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/parcel-service/internal/domain"
)

// OrganizationRepository resolves the tenant record.
type OrganizationRepository interface {
	Get(ctx context.Context) (*domain.OrganizationAccount, error)
	GetBySlug(ctx context.Context, slug string) (*domain.OrganizationAccount, error)
}

type organizationRepository struct {
	pool *pgxpool.Pool
}

// NewOrganizationRepository builds a Postgres-backed repository.
func NewOrganizationRepository(pool *pgxpool.Pool) OrganizationRepository {
	return &organizationRepository{pool: pool}
}

func (r *organizationRepository) Get(ctx context.Context) (*domain.OrganizationAccount, error) {
	const query = `SELECT slug, title, password_hash FROM organizations ORDER BY slug LIMIT 1`
	var org domain.OrganizationAccount
	if err := r.pool.QueryRow(ctx, query).Scan(&org.Slug, &org.Title, &org.PasswordHash); err != nil {
		return nil, err
	}
	return &org, nil
}

func (r *organizationRepository) GetBySlug(ctx context.Context, slug string) (*domain.OrganizationAccount, error) {
	const query = `SELECT slug, title, password_hash FROM organizations WHERE slug=$1`
	var org domain.OrganizationAccount
	if err := r.pool.QueryRow(ctx, query, slug).Scan(&org.Slug, &org.Title, &org.PasswordHash); err != nil {
		return nil, err
	}
	return &org, nil
}

// memoryOrganizationRepository serves the demo tenant when no DSN is set.
type memoryOrganizationRepository struct {
	org domain.OrganizationAccount
}

// NewMemoryOrganizationRepository builds a repository holding a single tenant.
func NewMemoryOrganizationRepository(org domain.OrganizationAccount) OrganizationRepository {
	return &memoryOrganizationRepository{org: org}
}

func (r *memoryOrganizationRepository) Get(_ context.Context) (*domain.OrganizationAccount, error) {
	org := r.org
	return &org, nil
}

func (r *memoryOrganizationRepository) GetBySlug(_ context.Context, slug string) (*domain.OrganizationAccount, error) {
	if slug != r.org.Slug {
		return nil, pgx.ErrNoRows
	}
	org := r.org
	return &org, nil
}
