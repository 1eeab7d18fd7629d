package handler

import (
	"strings"
	"time"

	"github.com/bookshelf/library-api/internal/core/domain"
	"github.com/bookshelf/library-api/internal/core/ports"
)

// Password limits follow bcrypt, which only reads the first 72 bytes.
type createUserRequest struct {
	Username string  `json:"username"  validate:"required,min=1,max=50"`
	Password string  `json:"password"  validate:"required,min=1,max=72"`
	Email    *string `json:"email"     validate:"omitempty,email,max=255"`
	FullName *string `json:"full_name" validate:"omitempty,max=255"`
}

type updateUserRequest struct {
	Username *string `json:"username"  validate:"omitempty,min=1,max=50"`
	Password *string `json:"password"  validate:"omitempty,min=1,max=72"`
	Email    *string `json:"email"     validate:"omitempty,email,max=255"`
	FullName *string `json:"full_name" validate:"omitempty,max=255"`
	Disabled *bool   `json:"disabled"`

	clearEmail bool
}

// userResponse is the outward shape of an account. It never carries the
// password digest.
type userResponse struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     *string   `json:"email"`
	FullName  *string   `json:"full_name"`
	Disabled  bool      `json:"disabled"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (r createUserRequest) toInput() ports.CreateUserInput {
	return ports.CreateUserInput{
		Username: r.Username,
		Password: r.Password,
		Email:    r.Email,
		FullName: r.FullName,
	}
}

// normalize turns a blank email into no email before validation, so it
// never takes part in uniqueness checks.
func (r *createUserRequest) normalize() {
	if isBlank(r.Email) {
		r.Email = nil
	}
}

// normalize treats a blank email as a request to remove the stored one.
func (r *updateUserRequest) normalize() {
	if isBlank(r.Email) {
		r.Email = nil
		r.clearEmail = true
	}
}

func isBlank(s *string) bool {
	return s != nil && strings.TrimSpace(*s) == ""
}

func (r updateUserRequest) toInput() ports.UpdateUserInput {
	return ports.UpdateUserInput{
		Username:   r.Username,
		Password:   r.Password,
		Email:      r.Email,
		ClearEmail: r.clearEmail,
		FullName:   r.FullName,
		Disabled:   r.Disabled,
	}
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FullName:  u.FullName,
		Disabled:  u.Disabled,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func toUserResponses(users []*domain.User) []userResponse {
	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	return out
}
