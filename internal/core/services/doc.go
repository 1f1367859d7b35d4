// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// Services never import adapters directly; the composition root in
// cmd/recall wires concrete parsers, embedders and stores in.
package services
