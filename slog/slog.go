// Package slog provides logging decorators for docsync services.
package slog
