// Package ui narrates shell command lifecycle events for human-readable runs.
//
// The console event logger translates execshell notifications into concise
// messages so command feedback stays actionable while detailed telemetry keeps
// flowing through structured loggers.
package ui
