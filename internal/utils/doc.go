// Package utils contains internal helpers shared across the SDK: JSON-body
// HTTP POST plumbing for both synchronous and SSE-streaming requests, an SSE
// line scanner, and a repair-capable string parser for model-produced JSON.
package utils
