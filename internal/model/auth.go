package model

// SessionRequest is the body of POST /sessions.
type SessionRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Session is returned on a successful login.
type Session struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}
