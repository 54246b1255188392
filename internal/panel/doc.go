// Package panel serves the dashboard page as an embedded asset.
//
// index.html, app.js and style.css are embedded into the binary with
// go:embed. The page is a thin renderer: it subscribes to the push hub,
// draws the five charts with Chart.js, shows the live readout and posts
// filter and power commands back to the API. All data handling happens
// server side.
//
// Cache-control headers are set to no-cache so edits to the page are
// picked up on reload.
package panel
