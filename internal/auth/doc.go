// Package auth implements bearer token verification against a process-wide
// shared secret. It distinguishes missing credentials from invalid ones so
// the caller can map them to different HTTP statuses.
package auth
