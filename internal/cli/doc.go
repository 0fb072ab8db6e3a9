package cli

// Package cli implements the model-updater command line interface: checking
// for updates, downloading a version, inspecting and erasing the installed
// artifact. Commands drive the same session state machine the UI consumes.
