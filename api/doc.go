// Package api documents the onboardflow HTTP API.
//
// # API Overview
//
// onboardflow exposes the onboarding conversation over HTTP:
//   - Session events (text, fieldEdit, confirm, cancel, fileUpload)
//   - Spreadsheet upload as multipart form data
//   - Session snapshots and explicit session teardown
//   - Listing of committed employee records
//   - A websocket chat endpoint carrying the same events
//   - Health monitoring; Prometheus metrics on a separate port
//
// # Endpoints
//
//	POST   /api/v1/sessions                 allocate a session id
//	POST   /api/v1/sessions/{id}/events     {"kind":"text","value":"Onboard"}
//	POST   /api/v1/sessions/{id}/upload     multipart field "file"
//	GET    /api/v1/sessions/{id}            snapshot (state, draft, history)
//	DELETE /api/v1/sessions/{id}            end the session
//	GET    /api/v1/employees?limit=N        committed records, newest last
//	GET    /api/v1/ws?session_id=ID         websocket chat
//	GET    /health, /healthz, /ready, /version
//
// # Envelope
//
// Every JSON response uses the same envelope:
//
//	{"success": true, "data": {...}, "timestamp": "...", "request_id": "..."}
//	{"success": false, "error": {"code": "SESSION_BUSY", "message": "...", "retryable": true}}
//
// Workflow outcomes such as a rejected phone number or a duplicate record are
// part of the conversation and arrive with success=true and data.error set.
// Session-level failures (busy, limit, closed) use the error envelope with the
// matching HTTP status.
//
// # Base URL
//
// The default base URL for the API is:
//
//	http://localhost:8080
package api
