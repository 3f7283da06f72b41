// Package driven defines the outbound ports of the pipeline: the
// capabilities (embedding, generation), storage (documents, vectors,
// result log), and the document source the core consumes but does not
// implement.
package driven
