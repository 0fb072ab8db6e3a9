package download

// Package download implements the artifact download pipeline: stream the
// model binary for one version tag to a temp file, validate size, and promote
// it through the store. It owns the temp file exclusively and cleans it up on
// every exit path.
