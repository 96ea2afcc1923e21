package member

import "context"

type Repository interface {
	Create(ctx context.Context, name, email, passwordHash, role string) (*Member, error)
	FindByEmail(ctx context.Context, email string) (*Member, error)
	FindByID(ctx context.Context, id string) (*Member, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	GetActiveMembership(ctx context.Context, memberID string) (*MembershipWithPlan, error)
	GrantMembership(ctx context.Context, memberID, planID string) (*Membership, error)
	ListPlans(ctx context.Context) ([]Plan, error)
	GetPlanByID(ctx context.Context, id string) (*Plan, error)
}
