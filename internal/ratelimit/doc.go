// Package ratelimit implements fixed-window request counting per client key.
// Counters are held in memory and reset at window boundaries; admission is a
// bounded, non-blocking in-memory check.
package ratelimit
