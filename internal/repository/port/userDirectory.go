package repository

import "context"

// User is the read-only directory view of a clinic user: just enough to
// evaluate messaging policy and label messages. Account management lives in
// another service.
type User struct {
	ID       int64
	FullName string
	Role     string
	BranchID *int64
}

const RoleAdmin = "admin"

// IsAdmin reports whether the user carries the admin role.
func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

// ReferencePreview is the small display projection attached to rich messages
// that point at an external entity (a fund request or a product).
type ReferencePreview struct {
	Type   string `json:"type"`
	ID     int64  `json:"id"`
	Label  string `json:"label"`
	Detail string `json:"detail,omitempty"`
}

// UserDirectory answers identity and messaging-policy questions.
type UserDirectory interface {
	FindByID(ctx context.Context, id int64) (*User, error)
	// CanMessage evaluates the reachability policy: admins may message
	// anyone; non-admins may message admins or same-branch peers. The check
	// reads the users' live branch assignment.
	CanMessage(ctx context.Context, fromID, toID int64) (bool, error)
}

// ReferenceDirectory resolves display previews for rich message references.
type ReferenceDirectory interface {
	FundRequest(ctx context.Context, id int64) (*ReferencePreview, error)
	Product(ctx context.Context, id int64) (*ReferencePreview, error)
}
