package models

// DefaultAvatarColor is used when the profile has no avatar color
const DefaultAvatarColor = "purple"

// AvatarColors is the palette offered on the profile page, in display order
var AvatarColors = []string{"purple", "blue", "green", "red"}

// IsAvatarColor reports whether color belongs to the palette
func IsAvatarColor(color string) bool {
	for _, c := range AvatarColors {
		if c == color {
			return true
		}
	}
	return false
}

// User is the profile returned by /users/me
type User struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Bio         string `json:"bio,omitempty"`
	AvatarColor string `json:"avatar_color,omitempty"`
}

// Avatar returns the avatar color, defaulting to purple
func (u User) Avatar() string {
	if IsAvatarColor(u.AvatarColor) {
		return u.AvatarColor
	}
	return DefaultAvatarColor
}

// Initial returns the first letter of the username, used as avatar text
func (u User) Initial() string {
	for _, r := range u.Username {
		return string(r)
	}
	return "?"
}

// ProfileUpdate is the body of PUT /users/me. Empty fields are left unchanged by the backend.
type ProfileUpdate struct {
	Bio         string `json:"bio,omitempty"`
	AvatarColor string `json:"avatar_color,omitempty"`
}

// Credentials is the body of POST /login
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Registration is the body of POST /register
type Registration struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Token is the answer of a successful login
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Username    string `json:"username"`
}

// Message is the generic acknowledgement returned by mutating endpoints
type Message struct {
	Message string `json:"message"`
}
