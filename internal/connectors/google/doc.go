// Package google provides shared infrastructure for the Google API surface
// of the SDK.
//
// It contains the pieces every Workspace service client needs:
//   - TokenSource adapter bridging the auth service's TokenProvider to
//     oauth2.TokenSource
//   - Service factories for Gmail, Calendar, Drive, and Sheets clients
//   - Error handling for common Google API errors (401, 403, 404, 429)
//   - Rate limiting to respect Google API quotas
//
// # Usage
//
//	ts := google.NewTokenSource(ctx, authService)
//	svc, err := google.NewGmailService(ctx, ts)
//
// The token source defers to the auth service on every call, so refreshes
// and persistence happen transparently while API clients hold the source.
package google
