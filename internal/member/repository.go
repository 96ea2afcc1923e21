package member

import (
	"context"
	"database/sql"
	"errors"

	"movestrong/internal/db"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var (
	ErrMemberNotFound     = errors.New("member not found")
	ErrNoActiveMembership = errors.New("no active membership")
	ErrPlanNotFound       = errors.New("plan not found")
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, name, email, passwordHash, role string) (*Member, error) {
	query := `
		INSERT INTO members (id, name, email, password_hash, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, name, email, password_hash, role, created_at
	`

	var m Member
	err := r.db.GetContext(ctx, &m, query, uuid.NewString(), name, email, passwordHash, role)
	if err != nil {
		return nil, err
	}

	return &m, nil
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*Member, error) {
	query := `
		SELECT id, name, email, password_hash, role, created_at
		FROM members
		WHERE email = $1
	`

	var m Member
	err := r.db.GetContext(ctx, &m, query, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}

	return &m, nil
}

func (r *repository) FindByID(ctx context.Context, id string) (*Member, error) {
	query := `
		SELECT id, name, email, password_hash, role, created_at
		FROM members
		WHERE id = $1
	`

	var m Member
	err := r.db.GetContext(ctx, &m, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}

	return &m, nil
}

func (r *repository) EmailExists(ctx context.Context, email string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM members WHERE email = $1)`
	return db.Exists(ctx, r.db, query, email)
}

// GetActiveMembership resolves the member's single active membership joined
// with its plan. A partial unique index on memberships guarantees at most one
// active row per member.
func (r *repository) GetActiveMembership(ctx context.Context, memberID string) (*MembershipWithPlan, error) {
	query := `
		SELECT
			m.id,
			m.member_id,
			m.plan_id,
			m.status,
			m.remaining_credits,
			m.starts_at,
			m.expires_at,
			m.created_at,
			m.updated_at,
			p.name AS plan_name,
			p.unlimited_classes
		FROM memberships m
		JOIN plans p ON m.plan_id = p.id
		WHERE m.member_id = $1 AND m.status = 'active'
		LIMIT 1
	`

	var ms MembershipWithPlan
	err := r.db.GetContext(ctx, &ms, query, memberID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoActiveMembership
		}
		return nil, err
	}

	return &ms, nil
}

// GrantMembership cancels any existing active membership and creates a fresh
// one seeded with the plan's credit allowance. Unlimited plans carry a null
// balance.
func (r *repository) GrantMembership(ctx context.Context, memberID, planID string) (*Membership, error) {
	plan, err := r.GetPlanByID(ctx, planID)
	if err != nil {
		return nil, err
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`UPDATE memberships
		 SET status = 'cancelled', updated_at = NOW()
		 WHERE member_id = $1 AND status = 'active'`,
		memberID,
	)
	if err != nil {
		return nil, err
	}

	var credits *int
	if !plan.UnlimitedClasses {
		credits = plan.ClassCredits
	}

	var ms Membership
	err = tx.QueryRowxContext(ctx,
		`INSERT INTO memberships (id, member_id, plan_id, status, remaining_credits, expires_at)
		 VALUES ($1, $2, $3, 'active', $4, NOW() + INTERVAL '1 month')
		 RETURNING id, member_id, plan_id, status, remaining_credits, starts_at, expires_at, created_at, updated_at`,
		uuid.NewString(), memberID, planID, credits,
	).StructScan(&ms)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &ms, nil
}

func (r *repository) ListPlans(ctx context.Context) ([]Plan, error) {
	query := `
		SELECT id, name, unlimited_classes, class_credits, price_cents, created_at
		FROM plans
		ORDER BY price_cents ASC
	`

	var plans []Plan
	err := r.db.SelectContext(ctx, &plans, query)
	if err != nil {
		return nil, err
	}

	return plans, nil
}

func (r *repository) GetPlanByID(ctx context.Context, id string) (*Plan, error) {
	query := `
		SELECT id, name, unlimited_classes, class_credits, price_cents, created_at
		FROM plans
		WHERE id = $1
	`

	var plan Plan
	err := r.db.GetContext(ctx, &plan, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}

	return &plan, nil
}
