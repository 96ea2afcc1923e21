package member

import "time"

const (
	MembershipActive    = "active"
	MembershipInactive  = "inactive"
	MembershipCancelled = "cancelled"
)

type Member struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         string    `db:"role" json:"role"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Plan is immutable reference data seeded by migrations.
type Plan struct {
	ID               string    `db:"id" json:"id"`
	Name             string    `db:"name" json:"name"`
	UnlimitedClasses bool      `db:"unlimited_classes" json:"unlimited_classes"`
	ClassCredits     *int      `db:"class_credits" json:"class_credits,omitempty"`
	PriceCents       int64     `db:"price_cents" json:"price_cents"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}

type Membership struct {
	ID               string     `db:"id" json:"id"`
	MemberID         string     `db:"member_id" json:"member_id"`
	PlanID           string     `db:"plan_id" json:"plan_id"`
	Status           string     `db:"status" json:"status"`
	RemainingCredits *int       `db:"remaining_credits" json:"remaining_credits,omitempty"`
	StartsAt         time.Time  `db:"starts_at" json:"starts_at"`
	ExpiresAt        *time.Time `db:"expires_at" json:"expires_at,omitempty"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updated_at"`
}

type MembershipWithPlan struct {
	Membership
	PlanName         string `db:"plan_name" json:"plan_name"`
	UnlimitedClasses bool   `db:"unlimited_classes" json:"unlimited_classes"`
}

// CreditsRemaining treats a null balance as zero. A null balance only means
// "no accounting" on unlimited plans, which bypass this entirely.
func (m *MembershipWithPlan) CreditsRemaining() int {
	if m.RemainingCredits == nil {
		return 0
	}
	return *m.RemainingCredits
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	Member       Member `json:"member"`
}

type GrantMembershipRequest struct {
	PlanID string `json:"plan_id" binding:"required"`
}
