package handler

import (
	"net/http"

	"campuseats/internal/service"
)

type loginRequest struct {
	Login    string `json:"email"`
	Password string `json:"password"`
}

func LoginHandler(authSvc *service.AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		if req.Login == "" || req.Password == "" {
			http.Error(w, "email and password required", http.StatusBadRequest)
			return
		}

		user, err := authSvc.Authenticate(r.Context(), req.Login, req.Password)
		if err != nil {
			writeError(w, r, err)
			return
		}

		respondWithToken(w, r, authSvc, user, http.StatusOK)
	}
}
