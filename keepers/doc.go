// Package keepers fetches the list of known keepers from the upstream
// forum API.
//
// The upstream publishes a snapshot at {base}/static/keepers_user_data:
//
//	{
//	  "update_time": 1700000000,
//	  "result": {"7": {"username": "alice"}}
//	}
//
// A Client performs exactly one request per Fetch call and never retries.
// Failures are reported as *FetchError values that match either ErrTransport
// or ErrDecode with errors.Is, so callers can tell an unreachable upstream
// from one that returned garbage.
package keepers
