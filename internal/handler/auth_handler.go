/*
Package handler provides HTTP handler functions for login, signup and identity lookup.
*/
package handler

import (
	"net/http"

	"rwchat/internal/app/admission"
	"rwchat/internal/app/user"
	"rwchat/internal/pkg/auth/jwt"
	"rwchat/internal/pkg/errs"
	"rwchat/internal/pkg/logx"
	"rwchat/internal/pkg/req"
	"rwchat/internal/pkg/resp"
)

type SignupInput struct {
	Email    string    `json:"email"`
	Password string    `json:"password"`
	Role     user.Role `json:"role"`
}

// HandleLogin verifies credentials and issues a session token.
// A Writer is refused with 409 while another writer session is active.
func HandleLogin(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input admission.LoginRequest
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		token, account, err := deps.Gate.Login(r.Context(), input.Email, input.Password)
		if err != nil {
			resp.RespondError(w, r, errs.From(err))
			return
		}

		logx.Info("User logged in", "user_id", account.ID, "role", string(account.Role))

		resp.RespondToken(w, r, http.StatusOK, token, map[string]any{
			"user": account,
		})
	}
}

// HandleSignup creates an account and issues a session token for it.
func HandleSignup(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input SignupInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		token, account, err := deps.Gate.Signup(r.Context(), input.Email, input.Password, input.Role)
		if err != nil {
			resp.RespondError(w, r, errs.From(err))
			return
		}

		resp.RespondToken(w, r, http.StatusCreated, token, map[string]any{
			"user": account,
		})
	}
}

// HandleMe returns the account behind the bearer token, read fresh from the directory.
func HandleMe(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		account, err := deps.Directory.FindByID(r.Context(), identity.ID)
		if err != nil {
			logx.Warn("me: user lookup failed", "id", identity.ID, "error", err.Error())
			resp.RespondError(w, r, errs.NewError(errs.ErrUserNotFound))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"user": account,
		})
	}
}
