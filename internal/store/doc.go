package store

// Package store persists the installed model artifact: the binary file and
// the plain-text version marker next to it. It is the single writer for both
// files and the single source of truth for "what do we have installed".
