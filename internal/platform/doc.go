package platform

// Package platform resolves platform-specific filesystem locations for the
// app-private data directory and provides small directory helpers.
