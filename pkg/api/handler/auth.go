package handler

import (
	"encoding/json"
	"net/http"

	"github.com/dskvich/instructional-pages/pkg/api/response"
)

type Authenticator interface {
	Enabled() bool
	Login(password string) (string, error)
}

type auth struct {
	authenticator Authenticator
	writer        response.JSONResponseWriter
}

func NewAuth(authenticator Authenticator) *auth {
	return &auth{authenticator: authenticator}
}

func (a *auth) Login(w http.ResponseWriter, r *http.Request) {
	if !a.authenticator.Enabled() {
		a.writer.WriteSuccessResponse(w, map[string]any{"authenticated": true})
		return
	}

	var req struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.writer.WriteErrorResponse(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	token, err := a.authenticator.Login(req.Password)
	if err != nil {
		a.writer.WriteErrorResponse(w, http.StatusUnauthorized, "Invalid password.")
		return
	}

	a.writer.WriteSuccessResponse(w, map[string]any{"authenticated": true, "token": token})
}
