package models

type Role string

const (
	RolePlayer Role = "player"
	RoleEditor Role = "editor"
	RoleAdmin  Role = "admin"
)

type Caller struct {
	ID   string `json:"id"`
	Role Role   `json:"role"`
}

// CanWriteDirectly reports whether the caller may add content without going
// through moderation.
func (c *Caller) CanWriteDirectly() bool {
	return c != nil && (c.Role == RoleEditor || c.Role == RoleAdmin)
}

func (c *Caller) HasFullAccess() bool {
	return c != nil && c.Role == RoleAdmin
}
