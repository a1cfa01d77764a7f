package daemon

import (
	"net/http"

	"jotter/internal/logging"
)

func (a *API) SignUp(w http.ResponseWriter, r *http.Request) {
	var req SignUpRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		writeServiceError(w, err)
		return
	}
	session, err := a.Auth.SignUp(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	a.logger().Info("user_signed_up", logging.F("user_id", session.User.ID))
	writeJSON(w, http.StatusCreated, session)
}

func (a *API) SignIn(w http.ResponseWriter, r *http.Request) {
	var req SignInRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		writeServiceError(w, err)
		return
	}
	session, err := a.Auth.SignIn(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (a *API) SignOut(w http.ResponseWriter, r *http.Request) {
	if err := a.Auth.SignOut(r.Context(), claimsFromContext(r.Context())); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (a *API) Me(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())
	user, err := a.Auth.Me(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (a *API) logger() logging.Logger {
	if a.Logger == nil {
		return logging.Nop()
	}
	return a.Logger
}
