package api

const (
	// auth routes

	// POST /auth/refresh to refresh the JWT token
	authRefreshTokenEndpoint = "/auth/refresh"
	// POST /auth/login to login and get a JWT token
	authLoginEndpoint = "/auth/login"

	// user routes

	// POST /users to register a new user
	usersEndpoint = "/users"
	// GET /users/me to get the current user information
	usersMeEndpoint = "/users/me"

	// purchase routes

	// POST /purchases/checkout-session to open a checkout session for a course
	checkoutSessionEndpoint = "/purchases/checkout-session"
	// POST /purchases/webhook to receive payment provider events
	purchasesWebhookEndpoint = "/purchases/webhook"
	// GET /purchases/courses to list the purchased courses of the current user
	purchasedCoursesEndpoint = "/purchases/courses"

	// course routes

	// GET /courses/{courseID}/detail-with-status to get the course detail and
	// the purchase status of the current user
	courseDetailWithStatusEndpoint = "/courses/{courseID}/detail-with-status"

	// object storage routes

	// POST /storage to upload an image
	objectStorageUploadEndpoint = "/storage"
	// GET /storage/{objectName} to download an image
	objectStorageDownloadEndpoint = "/storage/{objectName}"

	// health routes

	// GET /ping to check the server is alive
	pingEndpoint = "/ping"
)
