package dto

// Data Transfer Objects for authentication requests and responses.
// Every request also binds from form fields so HTML forms and curl -d work.

// SignupRequest: payload for self sign-up
type SignupRequest struct {
	Username string `json:"username" form:"username" binding:"required,max=150"`
	Email    string `json:"email" form:"email" binding:"required,email,max=254"`
}

// SignupResponse echoes the account the code was sent for
type SignupResponse struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// EmailConfirmationRequest: ask for a confirmation code
type EmailConfirmationRequest struct {
	Email string `json:"email" form:"email" binding:"required"`
}

// TokenRequest: exchange a confirmation code for tokens
type TokenRequest struct {
	Email            string `json:"email" form:"email" binding:"required"`
	ConfirmationCode string `json:"confirmation_code" form:"confirmation_code" binding:"required"`
}

// LoginRequest: password login for accounts that have one
type LoginRequest struct {
	Username string `json:"username" form:"username" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

// RefreshRequest: rotate or revoke a refresh token
type RefreshRequest struct {
	Refresh string `json:"refresh" form:"refresh" binding:"required"`
}

// TokenResponse: the session token pair
type TokenResponse struct {
	Refresh string `json:"refresh"`
	Access  string `json:"access"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
