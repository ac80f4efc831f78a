package handler

import (
	"net/http"

	"campuseats/internal/model"
	"campuseats/internal/service"
)

type authResponse struct {
	AccessToken string      `json:"access_token"`
	User        *model.User `json:"user"`
}

func RegisterHandler(authSvc *service.AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req service.RegisterInput
		if !decodeJSON(w, r, &req) {
			return
		}

		user, err := authSvc.Register(r.Context(), req)
		if err != nil {
			writeError(w, r, err)
			return
		}

		respondWithToken(w, r, authSvc, user, http.StatusCreated)
	}
}

func respondWithToken(w http.ResponseWriter, r *http.Request, authSvc *service.AuthService, user *model.User, status int) {
	token, err := authSvc.IssueToken(user)
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Authorization", "Bearer "+token)
	writeJSON(w, status, authResponse{AccessToken: token, User: user})
}
