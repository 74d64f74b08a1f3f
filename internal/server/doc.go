// Package server hosts the browser version of the widget.
//
// It serves the directory holding the polled resource (so the widget's
// relative fetch of pending_jobs.txt resolves), the embedded widget page,
// and a JSON view of the same resource as seen by a server-side loader.
//
// # Endpoints
//
//   - GET /api/lines - current line buffer, cursor position and fetch time
//   - GET /api/config - resource path, container id and timings for the widget
//   - GET /healthz - liveness probe
//   - GET /<file> - files from the resource directory, which take
//     precedence over embedded assets
//   - GET / - embedded widget (index.html, style.css, script.js)
package server
