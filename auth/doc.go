// Package auth implements the token authentication gate for the keeper API.
//
// Clients authenticate with a header of the form
//
//	Authorization: Token <value>
//
// The gate extracts <value> verbatim and hands it to an
// interfaces.IdentityResolver. Failures map to HTTP statuses:
//
//   - ErrMissing: no Authorization header, 400
//   - ErrMalformed: header does not match "Token <value>", 400
//   - ErrIdentityResolutionFailed: the resolver did not recognise the token, 401
//
// Identities are resolved on every request and never cached.
package auth
