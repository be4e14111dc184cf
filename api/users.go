package api

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/skilldeck/lms-backend/api/apicommon"
	"github.com/skilldeck/lms-backend/db"
	"github.com/skilldeck/lms-backend/errors"
	"github.com/skilldeck/lms-backend/internal"
	"github.com/skilldeck/lms-backend/log"
)

// registerHandler handles the register request. It creates a new user in the
// database with a salted hash of its password.
func (a *API) registerHandler(w http.ResponseWriter, r *http.Request) {
	userInfo := &apicommon.UserInfo{}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		errors.ErrMalformedBody.Write(w)
		return
	}
	if err := json.Unmarshal(body, userInfo); err != nil {
		errors.ErrMalformedBody.Write(w)
		return
	}
	// check the email is correct format
	if !internal.ValidEmail(userInfo.Email) {
		errors.ErrEmailMalformed.Write(w)
		return
	}
	// check the password is correct format
	if len(userInfo.Password) < 8 {
		errors.ErrPasswordTooShort.Write(w)
		return
	}
	// check the name is not empty
	if userInfo.Name == "" {
		errors.ErrMalformedBody.Withf("name is empty").Write(w)
		return
	}
	// sanitize the phone number if provided
	phone := ""
	if userInfo.Phone != "" {
		phone, err = internal.SanitizeAndVerifyPhoneNumber(userInfo.Phone)
		if err != nil {
			errors.ErrInvalidUserData.Withf("invalid phone number: %v", err).Write(w)
			return
		}
	}
	// default to the student role, reject unknown ones
	role := db.UserRole(userInfo.Role)
	if role == "" {
		role = db.StudentRole
	}
	if !db.IsValidUserRole(role) {
		errors.ErrInvalidUserData.Withf("invalid role %q", userInfo.Role).Write(w)
		return
	}
	// add the user to the database with the hashed password
	if _, err := a.db.SetUser(&db.User{
		Email:    userInfo.Email,
		Name:     userInfo.Name,
		Phone:    phone,
		Role:     role,
		Password: internal.HexHashPassword(passwordSalt, userInfo.Password),
	}); err != nil {
		if err == db.ErrAlreadyExists {
			errors.ErrDuplicateConflict.With("user already exists").Write(w)
			return
		}
		log.Warnw("could not create user", "error", err)
		errors.ErrGenericInternalServerError.Write(w)
		return
	}
	apicommon.HTTPWriteOK(w)
}

// userInfoHandler handles the request to get the information of the current
// authenticated user.
func (a *API) userInfoHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := apicommon.UserFromContext(r.Context())
	if !ok {
		errors.ErrUnauthorized.Write(w)
		return
	}
	// return the user information, never the password hash
	apicommon.HTTPWriteJSON(w, apicommon.UserInfo{
		Email: user.Email,
		Name:  user.Name,
		Phone: user.Phone,
		Role:  string(user.Role),
	})
}
