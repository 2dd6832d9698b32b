package dto

import "github.com/fitlogapp/fitlog-backend/internal/entity"

type RegisterInput struct {
	Username string  `json:"username" form:"username" binding:"required,min=3,max=50"`
	Email    string  `json:"email" form:"email" binding:"required,email"`
	Password string  `json:"password" form:"password" binding:"required,min=8"`
	FullName string  `json:"full_name" form:"full_name" binding:"required"`
	Bio      *string `json:"bio" form:"bio"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	AccessToken string          `json:"access_token"`
	TokenType   string          `json:"token_type"`
	ExpiresIn   int64           `json:"expires_in"`
	User        *entity.User    `json:"user"`
	Role        *entity.Role    `json:"role"`
	Profile     *entity.Profile `json:"profile"`
}

type UpdateUserInput struct {
	Username string  `json:"username" form:"username"`
	Email    string  `json:"email" form:"email"`
	Password string  `json:"password" form:"password"`
	Role     string  `json:"role" form:"role"`
	FullName string  `json:"full_name" form:"full_name"`
	Bio      *string `json:"bio" form:"bio"`
}

type UserResponse struct {
	User    *entity.User    `json:"user"`
	Role    *entity.Role    `json:"role"`
	Profile *entity.Profile `json:"profile"`
}
