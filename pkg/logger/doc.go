// Package logger builds the structured slog logger shared by the binaries.
// Development and staging get a human readable text handler, production gets
// JSON. Every record carries the environment and service name.
package logger
