package errorx

type Code int

var Unknown = Error{Code: 100000, Message: "Request failed"}

const (
	// Common codes
	BadRequest      Code = 100001
	BadResponse     Code = 100002
	NotFound        Code = 100004
	Unauthenticated Code = 100005
	Internal        Code = 100007
	Unavailable     Code = 100008
	NotImplemented  Code = 100009

	// Feed codes
	StaleChannel Code = 500001
	NotPending   Code = 500002
)
