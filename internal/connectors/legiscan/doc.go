// Package legiscan implements the rate-limited client for the
// LegiScan legislative-data API.
//
// The API is quota-billed and does not support filtering searches by
// date, so the client exposes exactly two operations - a broad search
// and a per-bill detail fetch - and leaves the decision of which
// details are worth fetching to the core diff filter.
//
// All outbound calls share one throttle per Client instance: a minimum
// inter-call spacing enforced even across retries, plus a fixed
// cooldown-and-retry policy on rate-limit rejections.
package legiscan
