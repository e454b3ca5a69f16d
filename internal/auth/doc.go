// Package auth provides authentication and authorization for the back office.
//
// # Authentication
//
// LocalProvider checks usernames and Argon2id password hashes against the local
// database and manages user accounts and their role bindings. TokenManager signs
// short lived access tokens and longer lived refresh tokens (HS256 JWT).
//
// # Permission Matrix
//
// Every role owns one boolean flag per catalog key. A key is named
// <resource>_<category>_<name>, for example expense_data_view_all or
// contract_action_edit. Data keys decide which records a user may list, action
// keys decide what a user may do.
//
// # Resolution
//
// Service.Resolve merges the flags of all enabled roles of a user with logical
// OR. The result always contains every catalog key. Scope turns the data flags of
// one resource into a gorm scope:
//   - view_all: no filter
//   - view_own: submitter is the user
//   - view_by_location: the location column contains a location of the user's roles
//   - view_department_submissions: submitter shares the user's department
//
// Granted scopes are combined with OR. Without any usable scope nothing matches.
//
// Example usage:
//
//	authService := auth.NewService(db, "admin")
//
//	app.Post("/expense/audit",
//	    auth.Authenticate(tokens),
//	    auth.RequireAction(authService, auth.ResourceExpense, auth.ActionAudit),
//	    handler,
//	)
//
//	access, err := auth.AccessFromContext(c, authService, auth.ResourceExpense)
//	db.Scopes(access.Scope(auth.Columns{Submitter: "submitter", Location: "company_location"}))
package auth
