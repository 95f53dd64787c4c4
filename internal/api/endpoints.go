package api

// Account endpoints, relative to UserPrefix
const (
	UserPrefix = "/user"

	UserRegister       = "/"
	UserLogin          = "/login"
	UserVerifyMail     = "/verifyMail/{token}"
	UserCurrent        = "/current"
	UserLogout         = "/deleteToken"
	UserForgotPassword = "/forgot-password"
	UserResetPassword  = "/reset-password/{token}"
)

// Operational endpoints
const (
	Health  = "/healthz"
	Metrics = "/metrics"
)
