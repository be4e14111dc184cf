package objectstorage

import (
	"fmt"
	"net/http"
	"regexp"

	"github.com/go-chi/chi/v5"
	"github.com/skilldeck/lms-backend/api/apicommon"
	"github.com/skilldeck/lms-backend/errors"
	"github.com/skilldeck/lms-backend/internal"
)

// isObjectNameRgx is a regular expression to match object names.
var isObjectNameRgx = regexp.MustCompile(`^([a-zA-Z0-9]+)\.(jpg|jpeg|png)`)

// UploadImageWithFormHandler uploads images through a multipart form. It
// expects the request to contain a "file" field with one or more files to be
// uploaded and responds with the URLs of the stored images.
func (osc *Client) UploadImageWithFormHandler(w http.ResponseWriter, r *http.Request) {
	// get the user from the request context
	user, ok := apicommon.UserFromContext(r.Context())
	if !ok {
		errors.ErrUnauthorized.Write(w)
		return
	}

	// 32 MB is the default used by FormFile() function
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		errors.ErrStorageInvalidObject.Withf("could not parse form: %v", err).Write(w)
		return
	}

	// the fileHeaders are accessible only after ParseMultipartForm is called
	filesFound := false
	var returnURLs []string
	for _, fileHeaders := range r.MultipartForm.File {
		for _, fileHeader := range fileHeaders {
			file, err := fileHeader.Open()
			if err != nil {
				errors.ErrStorageInvalidObject.Withf("cannot open file %s %v", fileHeader.Filename, err).Write(w)
				return
			}
			defer func() {
				if err := file.Close(); err != nil {
					errors.ErrStorageInvalidObject.Withf("cannot close file %s %v", fileHeader.Filename, err).Write(w)
					return
				}
			}()
			// upload the file using the object storage client
			// and get the URL of the uploaded file
			filesFound = true
			storedFileID, err := osc.Put(file, fileHeader.Size, user.Email)
			if err != nil {
				errors.ErrInternalStorageError.Withf("%s %v", fileHeader.Filename, err).Write(w)
				return
			}
			returnURLs = append(returnURLs, objectURL(osc.ServerURL, storedFileID))
		}
	}
	if !filesFound {
		errors.ErrStorageInvalidObject.With("no files found").Write(w)
		return
	}
	apicommon.HTTPWriteJSON(w, map[string][]string{"urls": returnURLs})
}

// DownloadImageInlineHandler retrieves the object from storage and serves it
// inline, so browsers display it instead of downloading it.
func (osc *Client) DownloadImageInlineHandler(w http.ResponseWriter, r *http.Request) {
	objectName := chi.URLParam(r, "objectName")
	if objectName == "" {
		errors.ErrMalformedURLParam.With("objectName is required").Write(w)
		return
	}
	objectID, ok := objectIDfromName(objectName)
	if !ok {
		errors.ErrStorageInvalidObject.With("invalid objectName").Write(w)
		return
	}
	// get the object from the object storage client
	object, err := osc.Get(objectID)
	if err != nil {
		if err == ErrorObjectNotFound {
			errors.ErrStorageInvalidObject.With("object not found").Write(w)
			return
		}
		errors.ErrStorageInvalidObject.Withf("cannot get object %v", err).Write(w)
		return
	}
	// write the object to the response
	w.Header().Set("Content-Type", object.ContentType)
	w.Header().Set("Content-Disposition", "inline")
	if _, err := w.Write(object.Data); err != nil {
		errors.ErrInternalStorageError.Withf("cannot write object %v", err).Write(w)
		return
	}
}

// objectURL returns the URL for the object with the given objectID.
func objectURL(baseURL, objectID string) string {
	return fmt.Sprintf("%s/storage/%s", baseURL, objectID)
}

// objectIDfromName returns the objectID from the given object name. If the
// name is not a valid object name, it returns a nil ID and false.
func objectIDfromName(name string) (internal.ObjectID, bool) {
	match := isObjectNameRgx.FindStringSubmatch(name)
	if len(match) != 3 {
		return internal.NilObjectID, false
	}
	objectID, err := internal.ObjectIDFromHex(match[1])
	if err != nil {
		return internal.NilObjectID, false
	}
	return objectID, true
}
