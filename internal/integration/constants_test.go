package integration_test

const (
	dbName         = "booking_api"
	dbUser         = "test_user"
	dbPassword     = "test_password"
	dbImageName    = "postgres:17-alpine"
	cacheImageName = "redis:7"

	TestUserFirstName = "Ana"
	TestUserLastName  = "Ruiz"
	TestUserEmail     = "ana@example.com"
	TestUserPassword  = "correct-horse-battery"

	TestOtherUserEmail = "bob@example.com"
	TestAdminEmail     = "admin@example.com"

	TestMovieID    = 1241982
	TestMovieTitle = "Vaiana 2"
	TestMovieSlug  = "vaiana-2"

	TestWebhookSecret = "whsec_integration"
)
