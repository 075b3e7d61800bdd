// Package newsletter is the client for the remote subscription endpoint.
//
// It performs exactly one wire exchange: a JSON POST of {"email": ...}
// answered by a JSON body carrying a "success" field. The HTTP status code is
// deliberately not inspected; only the body decides between an accepted and
// a rejected subscription. Transport and decode failures are reported as
// ErrRequest so callers can map them to a single user-facing message.
package newsletter
