// Package embedding holds helpers shared by the embedding provider adapters
// in its subpackages: response validation and a metrics decorator.
package embedding
