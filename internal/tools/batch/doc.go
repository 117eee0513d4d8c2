// Package batch runs per-item work for tools that fan out over several Gmail
// calls, such as fetching the headers of every listed message.
//
// Map bounds concurrency with an errgroup limit and writes each result into
// the slot of its input, so output order always equals input order no matter
// which call finishes first.
package batch
