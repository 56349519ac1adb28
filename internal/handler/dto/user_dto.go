package dto

import "github.com/sousamj2/explicolivais/internal/domain/entity"

// RegisterRequest asks for a confirmation email
type RegisterRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// SignUpRequest creates an account for the email vouched by the signup
// ticket cookie. Google accounts leave Password empty.
type SignUpRequest struct {
	Username  string `json:"username" binding:"omitempty,max=50"`
	FirstName string `json:"first_name" binding:"required,max=50"`
	LastName  string `json:"last_name" binding:"required,max=50"`
	Password  string `json:"password" binding:"omitempty,min=6,max=72"`
}

// SignInRequest is an email and password sign in
type SignInRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// ElevateTierRequest holds the personal data form
type ElevateTierRequest struct {
	Address    string `json:"address" binding:"max=200"`
	Number     string `json:"number" binding:"max=10"`
	Floor      string `json:"floor" binding:"max=10"`
	Door       string `json:"door" binding:"max=10"`
	Notes      string `json:"notes" binding:"max=500"`
	ZipCode1   string `json:"zip_code1" binding:"max=4"`
	ZipCode2   string `json:"zip_code2" binding:"max=3"`
	CellNumber string `json:"cell_phone"`
	NIF        string `json:"nfiscal"`
}

// UserResponse is the public part of an account
type UserResponse struct {
	ID        uint   `json:"id"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Tier      int    `json:"tier"`
}

// NewUserResponse maps a user entity
func NewUserResponse(u *entity.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Tier:      u.Tier,
	}
}
