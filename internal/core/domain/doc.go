// Package domain contains the core business entities and errors for the
// retrieval-and-grounding pipeline. It has no dependencies on adapters
// or infrastructure.
package domain
