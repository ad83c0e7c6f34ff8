// Package http exposes the section editing API on a net/http ServeMux.
//
// Routes:
//   - Sections: GET/PUT/DELETE /api/section/{page}/{section_key}, POST /api/section,
//     GET /api/sections/{page}
//   - Preview: POST /api/markdown
//   - Session: POST /api/login, POST /api/logout
//   - Health: GET /healthz
//
// Every error body is {"detail": "..."}. All section routes and the preview
// route require the admin session resolved by auth.Middleware.
package http
