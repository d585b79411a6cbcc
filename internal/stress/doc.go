// Package stress drives a load test against the MovieFlix API: it logs in,
// checks each endpoint once, simulates concurrent users browsing and
// searching the catalogue, then fires a burst of parallel requests.
//
// Every catalogue request is timed and collected into Stats; the resulting
// Report carries latency percentiles, throughput, the first errors seen and
// a grade for latency and success rate. Reports can be written as JSON, and
// the individual samples as CSV.
package stress
