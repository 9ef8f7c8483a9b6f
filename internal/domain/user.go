package domain

// UserProfile is owned by the external user directory. It is never persisted
// here, only joined into order responses per request.
type UserProfile struct {
	ID        *int64 `json:"id"`
	Name      string `json:"name"`
	Surname   string `json:"surname,omitempty"`
	BirthDate string `json:"birthDate,omitempty"`
	Email     string `json:"email,omitempty"`
}

// NotFoundUserName marks the sentinel profile returned when the directory
// reports 404 for a user id, so orders of deleted users stay viewable.
const NotFoundUserName = "404 NOT_FOUND"

func NotFoundUser() *UserProfile {
	return &UserProfile{Name: NotFoundUserName}
}

// Resolved reports whether the profile refers to an existing user rather
// than the not-found sentinel.
func (u *UserProfile) Resolved() bool {
	return u != nil && u.ID != nil
}

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleUser    Role = "user"
	RoleUnknown Role = ""
)

// Identity is the caller resolved once per request by the auth middleware.
// Exactly one role; admin wins if the gateway forwards both markers.
type Identity struct {
	Role  Role
	Email string
}

func (id Identity) IsAdmin() bool {
	return id.Role == RoleAdmin
}
