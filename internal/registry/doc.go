package registry

// Package registry resolves the latest published model version from the
// remote release registry. The reply is a releases/latest style JSON
// descriptor; only the tag field is consumed.
