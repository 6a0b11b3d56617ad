// Package http exposes the localization admin endpoints as JSON handlers.
//
// Routes mount under a configurable prefix (default /localization):
//   - Files: /view, /compare, /update, /download-all
//   - Overrides: /overrides, /overrides/search, /overrides/original-values,
//     /overrides/store, /overrides/update, /overrides/delete
//
// Host applications register the handlers on their own mux.
package http
