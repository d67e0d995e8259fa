package config

const (
	HCType        = "Content-Type"
	HETag         = "ETag"
	HCacheControl = "Cache-Control"

	CTypeJSON = "application/json"
	CTypeSSE  = "text/event-stream"
)

const (
	HTTPErrBadRequest = "Bad request"
)

const (
	CookieSessionID = "inkwell-session"
)
