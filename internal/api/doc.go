// Package api handles incoming HTTP requests, routing, request validation,
// and response formatting. It adapts the capture sessions, the scoring core,
// the ink renderers and the external assessor to JSON and PNG over HTTP.
//
// Errors from lower layers are mapped to status codes by MapErrorToStatusCode
// and to client-safe messages by GetSafeErrorMessage; the full error is only
// ever logged, after redaction.
package api
