// Package ui renders the subscription widget as a server-side HTML page.
//
// Pages are Liquid templates rendered from a form.View plus a locale copy
// deck. Locales are negotiated from an explicit ?lang= value, then the
// Accept-Language header, then the configured default.
package ui
