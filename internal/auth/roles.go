package auth

// Action names an operation the access-control table knows about.
type Action string

const (
	ActionCreatePost Action = "post.create"
	ActionUpdatePost Action = "post.update"
	ActionDeletePost Action = "post.delete"
)

const (
	RoleAdmin  = "admin"
	RoleUser   = "user"
	RoleTenant = "tenant"
)

// allowedRoles is the single place the role set and its permitted actions
// live. Ownership on update/delete is checked separately in the usecase;
// the table only gates by role.
var allowedRoles = map[Action][]string{
	ActionCreatePost: {RoleAdmin, RoleUser},
	ActionUpdatePost: {RoleAdmin, RoleUser, RoleTenant},
	ActionDeletePost: {RoleAdmin, RoleUser, RoleTenant},
}

// Allowed reports whether the role may perform the action at all.
func Allowed(role string, action Action) bool {
	for _, r := range allowedRoles[action] {
		if r == role {
			return true
		}
	}
	return false
}

// IsAdmin is the role half of the ownership gate.
func IsAdmin(role string) bool {
	return role == RoleAdmin
}
