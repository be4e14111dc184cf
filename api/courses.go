package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/skilldeck/lms-backend/api/apicommon"
	"github.com/skilldeck/lms-backend/db"
	"github.com/skilldeck/lms-backend/errors"
)

// courseDetailWithStatusHandler returns the populated course detail together
// with whether the current user holds a purchase for it. The purchased flag
// is true when any purchase row exists for the user and course, whatever its
// status.
func (a *API) courseDetailWithStatusHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := apicommon.UserFromContext(r.Context())
	if !ok {
		errors.ErrUnauthorized.Write(w)
		return
	}
	courseID := chi.URLParam(r, "courseID")
	if courseID == "" {
		errors.ErrMalformedURLParam.With("courseID is required").Write(w)
		return
	}
	course, err := a.db.CourseWithDetails(courseID)
	if err != nil {
		if err == db.ErrNotFound || err == db.ErrInvalidData {
			errors.ErrCourseNotFound.Withf("course %s", courseID).Write(w)
			return
		}
		errors.ErrInternalStorageError.WithErr(err).Write(w)
		return
	}
	purchased := false
	if _, err := a.db.PurchaseByUserAndCourse(user.ID.Hex(), courseID); err == nil {
		purchased = true
	} else if err != db.ErrNotFound {
		errors.ErrInternalStorageError.WithErr(err).Write(w)
		return
	}
	apicommon.HTTPWriteJSON(w, &apicommon.CourseDetailWithStatus{
		Course:    course,
		Purchased: purchased,
	})
}
