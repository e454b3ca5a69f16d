package handler

const (
	// RootPath is the root path the route group.
	RootPath = "/"

	// ErrNilACDFatalLogMsg is used if app or cfg or db var pointer is nil.
	ErrNilACDFatalLogMsg = "app, cfg or db is nil"

	// DefaultPage is the page returned when none is requested.
	DefaultPage = 1
	// DefaultPageSize is the page size used when none is requested.
	DefaultPageSize = 10
	// MaxPageSize caps the requested page size.
	MaxPageSize = 100

	// OrderNewestFirst sorts list endpoints.
	OrderNewestFirst = "id DESC"
)
