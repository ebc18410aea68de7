// Package schedule is the visit scheduling engine: it expands a contract into
// dated visits, guards each visit's lifecycle, and indexes visits by day and
// by technician.
//
// Everything here is pure computation over model values. Persistence, locking
// and the current time are supplied by callers.
package schedule
