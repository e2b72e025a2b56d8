// Package redis notifies downstream consumers about stored bills by
// pushing JSON job envelopes onto a Redis list.
package redis
