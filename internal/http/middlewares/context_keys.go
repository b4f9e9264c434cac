package middlewares

const (
	ctxUserIDKey   = "auth.userID"
	ctxUsernameKey = "auth.username"
	ctxEmailKey    = "auth.email"
)
