package users

// User is the profile returned by GET /api/profile.
// The API identifies users by email; ID is only present on some responses.
type User struct {
	ID    int    `json:"id,omitempty"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// WithName returns a copy of the user with only the name replaced
func (u User) WithName(name string) User {
	u.Name = name
	return u
}

// FirstName is used for greetings in the header
func (u User) FirstName() string {
	for i, r := range u.Name {
		if r == ' ' {
			return u.Name[:i]
		}
	}
	return u.Name
}
