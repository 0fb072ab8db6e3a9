package ui

// Package ui renders the update session in a small Fyne status window. It
// collects no logic: it displays states and issues session commands.
