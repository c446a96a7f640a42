package handlers

import (
	"net/http"

	"github.com/baechuer/community-events/internal/application/session"
	"github.com/baechuer/community-events/internal/transport/http/dto"
	"github.com/baechuer/community-events/internal/transport/http/middleware"
	"github.com/baechuer/community-events/internal/transport/http/response"
	"github.com/baechuer/community-events/internal/transport/http/validate"
)

type SessionHandler struct {
	gw *session.Gateway
}

func NewSessionHandler(gw *session.Gateway) *SessionHandler {
	return &SessionHandler{gw: gw}
}

func (h *SessionHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req dto.SignInReq
	if err := validate.Decode(r, &req); err != nil {
		response.Err(w, r, err)
		return
	}

	s, err := h.gw.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, r, http.StatusCreated, dto.ToSessionResp(s))
}

func (h *SessionHandler) Me(w http.ResponseWriter, r *http.Request) {
	response.Data(w, r, http.StatusOK, dto.ToIdentityResp(middleware.Identity(r)))
}

func (h *SessionHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	if err := h.gw.SignOut(r.Context(), middleware.AccessToken(r)); err != nil {
		response.Err(w, r, err)
		return
	}
	response.NoContent(w)
}
