package dto

import (
	"time"

	"github.com/baechuer/community-events/internal/application/session"
	"github.com/baechuer/community-events/internal/domain"
)

type SignInReq struct {
	Email    string `json:"email" validate:"required,max=254"`
	Password string `json:"password" validate:"required,max=256"`
}

type IdentityResp struct {
	UserID string `json:"user_id"`
	Email  string `json:"email,omitempty"`
	Role   string `json:"role"`
}

type SessionResp struct {
	User        IdentityResp `json:"user"`
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresAt   time.Time    `json:"expires_at"`
}

func ToIdentityResp(id domain.Identity) IdentityResp {
	return IdentityResp{UserID: id.UserID, Email: id.Email, Role: id.Role}
}

func ToSessionResp(s *session.Session) SessionResp {
	return SessionResp{
		User:        ToIdentityResp(s.Identity),
		AccessToken: s.AccessToken,
		TokenType:   s.TokenType,
		ExpiresAt:   s.ExpiresAt,
	}
}
