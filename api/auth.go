package api

import (
	"encoding/json"
	"net/http"

	"github.com/skilldeck/lms-backend/api/apicommon"
	"github.com/skilldeck/lms-backend/db"
	"github.com/skilldeck/lms-backend/errors"
	"github.com/skilldeck/lms-backend/internal"
)

// refreshTokenHandler handles the request to refresh the JWT token of an
// already authenticated user. It generates a new token with the same subject
// and sends it back.
func (a *API) refreshTokenHandler(w http.ResponseWriter, r *http.Request) {
	// get the user from the request context
	user, ok := apicommon.UserFromContext(r.Context())
	if !ok {
		errors.ErrUnauthorized.Write(w)
		return
	}
	// generate a new token with the user email as the subject
	res, err := a.buildLoginResponse(user.Email)
	if err != nil {
		errors.ErrGenericInternalServerError.Write(w)
		return
	}
	// send the token back to the user
	apicommon.HTTPWriteJSON(w, res)
}

// authLoginHandler authenticates a user with its email and password and
// returns a JWT token.
func (a *API) authLoginHandler(w http.ResponseWriter, r *http.Request) {
	// get the user info from the request body
	loginInfo := &apicommon.UserInfo{}
	if err := json.NewDecoder(r.Body).Decode(loginInfo); err != nil {
		errors.ErrMalformedBody.Write(w)
		return
	}
	// get the user information from the database by email
	user, err := a.db.UserByEmail(loginInfo.Email)
	if err != nil {
		if err == db.ErrNotFound {
			errors.ErrUnauthorized.Write(w)
			return
		}
		errors.ErrGenericInternalServerError.Write(w)
		return
	}
	// check the password
	if pass := internal.HexHashPassword(passwordSalt, loginInfo.Password); pass != user.Password {
		errors.ErrUnauthorized.Write(w)
		return
	}
	// generate a new token with the user email as the subject
	res, err := a.buildLoginResponse(loginInfo.Email)
	if err != nil {
		errors.ErrGenericInternalServerError.Write(w)
		return
	}
	// send the token back to the user
	apicommon.HTTPWriteJSON(w, res)
}
