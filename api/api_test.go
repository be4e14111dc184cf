package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/skilldeck/lms-backend/api/apicommon"
	"github.com/skilldeck/lms-backend/db"
	"github.com/skilldeck/lms-backend/objectstorage"
	"github.com/skilldeck/lms-backend/stripe"
	"github.com/skilldeck/lms-backend/test"
)

const (
	testAPISecret = "super-secret-for-tests"
	testEmail     = "student@example.com"
	testPassword  = "testpass123"
	testName      = "Test Student"
)

// newTestServer starts a MongoDB container and an API server wired to it.
func newTestServer(c *qt.C) (*httptest.Server, *db.MongoStorage) {
	ctx := context.Background()
	dbContainer, err := test.StartMongoContainer(ctx)
	c.Assert(err, qt.IsNil)
	c.Cleanup(func() {
		c.Assert(dbContainer.Terminate(ctx), qt.IsNil)
	})

	mongoURI, err := dbContainer.ConnectionString(ctx)
	c.Assert(err, qt.IsNil)

	database, err := db.New(mongoURI, test.RandomDatabaseName())
	c.Assert(err, qt.IsNil)
	c.Cleanup(database.Close)

	stripeService, err := stripe.NewService(&stripe.Config{
		APIKey:        "sk_test_dummy",
		WebhookSecret: "whsec_test_dummy",
	}, database, nil, nil)
	c.Assert(err, qt.IsNil)

	objectStorage, err := objectstorage.New(&objectstorage.Config{DB: database})
	c.Assert(err, qt.IsNil)

	a := New(&Config{
		Host:          "127.0.0.1",
		Port:          0,
		Secret:        testAPISecret,
		DB:            database,
		Stripe:        stripeService,
		WebAppURL:     "http://localhost:5173",
		ServerURL:     "http://localhost:8080",
		ObjectStorage: objectStorage,
	})
	server := httptest.NewServer(a.initRouter())
	c.Cleanup(server.Close)
	return server, database
}

// doRequest performs a request against the test server and returns the status
// code and the raw body.
func doRequest(c *qt.C, server *httptest.Server, method, path, token string, body any) (int, []byte) {
	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		c.Assert(err, qt.IsNil)
		reqBody = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, server.URL+path, reqBody)
	c.Assert(err, qt.IsNil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	c.Assert(err, qt.IsNil)
	defer func() {
		c.Assert(resp.Body.Close(), qt.IsNil)
	}()
	respBody, err := io.ReadAll(resp.Body)
	c.Assert(err, qt.IsNil)
	return resp.StatusCode, respBody
}

// registerAndLogin registers the default test user and returns a valid token.
func registerAndLogin(c *qt.C, server *httptest.Server) string {
	status, _ := doRequest(c, server, http.MethodPost, usersEndpoint, "", &apicommon.UserInfo{
		Email:    testEmail,
		Password: testPassword,
		Name:     testName,
	})
	c.Assert(status, qt.Equals, http.StatusOK)

	status, body := doRequest(c, server, http.MethodPost, authLoginEndpoint, "", &apicommon.UserInfo{
		Email:    testEmail,
		Password: testPassword,
	})
	c.Assert(status, qt.Equals, http.StatusOK)
	login := &apicommon.LoginResponse{}
	c.Assert(json.Unmarshal(body, login), qt.IsNil)
	c.Assert(login.Token, qt.Not(qt.Equals), "")
	return login.Token
}

func TestPing(t *testing.T) {
	c := qt.New(t)
	server, _ := newTestServer(c)

	status, body := doRequest(c, server, http.MethodGet, pingEndpoint, "", nil)
	c.Assert(status, qt.Equals, http.StatusOK)
	c.Assert(string(body), qt.Equals, ".")
}

func TestRegisterAndLogin(t *testing.T) {
	c := qt.New(t)
	server, _ := newTestServer(c)

	// malformed email
	status, _ := doRequest(c, server, http.MethodPost, usersEndpoint, "", &apicommon.UserInfo{
		Email:    "not-an-email",
		Password: testPassword,
		Name:     testName,
	})
	c.Assert(status, qt.Equals, http.StatusBadRequest)

	// short password
	status, _ = doRequest(c, server, http.MethodPost, usersEndpoint, "", &apicommon.UserInfo{
		Email:    testEmail,
		Password: "short",
		Name:     testName,
	})
	c.Assert(status, qt.Equals, http.StatusBadRequest)

	token := registerAndLogin(c, server)

	// duplicate registration
	status, _ = doRequest(c, server, http.MethodPost, usersEndpoint, "", &apicommon.UserInfo{
		Email:    testEmail,
		Password: testPassword,
		Name:     testName,
	})
	c.Assert(status, qt.Equals, http.StatusConflict)

	// wrong password
	status, _ = doRequest(c, server, http.MethodPost, authLoginEndpoint, "", &apicommon.UserInfo{
		Email:    testEmail,
		Password: "wrongpassword",
	})
	c.Assert(status, qt.Equals, http.StatusUnauthorized)

	// current user info
	status, body := doRequest(c, server, http.MethodGet, usersMeEndpoint, token, nil)
	c.Assert(status, qt.Equals, http.StatusOK)
	info := &apicommon.UserInfo{}
	c.Assert(json.Unmarshal(body, info), qt.IsNil)
	c.Assert(info.Email, qt.Equals, testEmail)
	c.Assert(info.Role, qt.Equals, string(db.StudentRole))
	c.Assert(info.Password, qt.Equals, "")

	// token refresh
	status, body = doRequest(c, server, http.MethodPost, authRefreshTokenEndpoint, token, nil)
	c.Assert(status, qt.Equals, http.StatusOK)
	refreshed := &apicommon.LoginResponse{}
	c.Assert(json.Unmarshal(body, refreshed), qt.IsNil)
	c.Assert(refreshed.Token, qt.Not(qt.Equals), "")

	// protected routes reject missing tokens
	status, _ = doRequest(c, server, http.MethodGet, usersMeEndpoint, "", nil)
	c.Assert(status, qt.Equals, http.StatusUnauthorized)
}

func TestCourseDetailWithStatus(t *testing.T) {
	c := qt.New(t)
	server, database := newTestServer(c)
	token := registerAndLogin(c, server)

	// seed an instructor with a course and a lecture
	instructorID, err := database.SetUser(&db.User{
		Email:    "instructor@example.com",
		Password: testPassword,
		Name:     "Instructor",
		Role:     db.InstructorRole,
	})
	c.Assert(err, qt.IsNil)
	instructor, err := database.User(instructorID)
	c.Assert(err, qt.IsNil)
	course := &db.Course{
		Title:     "Mastering Go",
		Category:  "programming",
		Price:     499,
		CreatorID: instructor.ID,
		Published: true,
	}
	_, err = database.SetCourse(course)
	c.Assert(err, qt.IsNil)
	_, err = database.SetLecture(&db.Lecture{CourseID: course.ID, Title: "Introduction"})
	c.Assert(err, qt.IsNil)

	detailPath := fmt.Sprintf("/courses/%s/detail-with-status", course.ID.Hex())

	// not purchased yet
	status, body := doRequest(c, server, http.MethodGet, detailPath, token, nil)
	c.Assert(status, qt.Equals, http.StatusOK)
	detail := &apicommon.CourseDetailWithStatus{}
	c.Assert(json.Unmarshal(body, detail), qt.IsNil)
	c.Assert(detail.Purchased, qt.IsFalse)
	c.Assert(detail.Course.Title, qt.Equals, "Mastering Go")
	c.Assert(detail.Course.Lectures, qt.HasLen, 1)

	// a pending purchase already flips the flag
	student, err := database.UserByEmail(testEmail)
	c.Assert(err, qt.IsNil)
	_, err = database.SetPurchase(&db.Purchase{
		CourseID:  course.ID,
		UserID:    student.ID,
		Amount:    course.Price,
		PaymentID: "cs_test_pending",
	})
	c.Assert(err, qt.IsNil)
	status, body = doRequest(c, server, http.MethodGet, detailPath, token, nil)
	c.Assert(status, qt.Equals, http.StatusOK)
	c.Assert(json.Unmarshal(body, detail), qt.IsNil)
	c.Assert(detail.Purchased, qt.IsTrue)

	// unknown course
	status, _ = doRequest(c, server, http.MethodGet, "/courses/000000000000000000000000/detail-with-status", token, nil)
	c.Assert(status, qt.Equals, http.StatusNotFound)
}

func TestPurchasedCourses(t *testing.T) {
	c := qt.New(t)
	server, database := newTestServer(c)
	token := registerAndLogin(c, server)

	// empty list before any purchase
	status, body := doRequest(c, server, http.MethodGet, purchasedCoursesEndpoint, token, nil)
	c.Assert(status, qt.Equals, http.StatusOK)
	purchased := &apicommon.PurchasedCourses{}
	c.Assert(json.Unmarshal(body, purchased), qt.IsNil)
	c.Assert(purchased.PurchasedCourse, qt.HasLen, 0)

	// seed a course and complete a purchase for it
	instructorID, err := database.SetUser(&db.User{
		Email:    "instructor@example.com",
		Password: testPassword,
		Name:     "Instructor",
		Role:     db.InstructorRole,
	})
	c.Assert(err, qt.IsNil)
	instructor, err := database.User(instructorID)
	c.Assert(err, qt.IsNil)
	course := &db.Course{
		Title:     "Mastering Go",
		Category:  "programming",
		Price:     499,
		CreatorID: instructor.ID,
		Published: true,
	}
	_, err = database.SetCourse(course)
	c.Assert(err, qt.IsNil)
	student, err := database.UserByEmail(testEmail)
	c.Assert(err, qt.IsNil)
	_, err = database.SetPurchase(&db.Purchase{
		CourseID:  course.ID,
		UserID:    student.ID,
		Amount:    course.Price,
		PaymentID: "cs_test_done",
	})
	c.Assert(err, qt.IsNil)
	_, err = database.CompletePurchase("cs_test_done", 150.30)
	c.Assert(err, qt.IsNil)

	status, body = doRequest(c, server, http.MethodGet, purchasedCoursesEndpoint, token, nil)
	c.Assert(status, qt.Equals, http.StatusOK)
	c.Assert(json.Unmarshal(body, purchased), qt.IsNil)
	c.Assert(purchased.PurchasedCourse, qt.HasLen, 1)
	c.Assert(purchased.PurchasedCourse[0].Course.Title, qt.Equals, "Mastering Go")
}

func TestCheckoutSessionUnknownCourse(t *testing.T) {
	c := qt.New(t)
	server, database := newTestServer(c)
	token := registerAndLogin(c, server)

	// a checkout for a course that doesn't exist returns 404 and leaves no
	// purchase behind
	status, _ := doRequest(c, server, http.MethodPost, checkoutSessionEndpoint, token,
		&apicommon.CheckoutSessionRequest{CourseID: "000000000000000000000000"})
	c.Assert(status, qt.Equals, http.StatusNotFound)

	// missing course id
	status, _ = doRequest(c, server, http.MethodPost, checkoutSessionEndpoint, token,
		&apicommon.CheckoutSessionRequest{})
	c.Assert(status, qt.Equals, http.StatusBadRequest)

	student, err := database.UserByEmail(testEmail)
	c.Assert(err, qt.IsNil)
	_, err = database.PurchaseByUserAndCourse(student.ID.Hex(), "000000000000000000000000")
	c.Assert(err, qt.Equals, db.ErrNotFound)
}

func TestWebhookSignatureRejected(t *testing.T) {
	c := qt.New(t)
	server, _ := newTestServer(c)

	req, err := http.NewRequest(http.MethodPost, server.URL+purchasesWebhookEndpoint,
		bytes.NewReader([]byte(`{"id":"evt_1","type":"checkout.session.completed"}`)))
	c.Assert(err, qt.IsNil)
	req.Header.Set("Stripe-Signature", "t=1,v1=deadbeef")
	resp, err := http.DefaultClient.Do(req)
	c.Assert(err, qt.IsNil)
	defer func() {
		c.Assert(resp.Body.Close(), qt.IsNil)
	}()
	c.Assert(resp.StatusCode, qt.Equals, http.StatusBadRequest)
}
