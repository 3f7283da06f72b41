// Package driving defines the inbound ports: the operations the CLI and
// TUI invoke on the core services.
package driving
