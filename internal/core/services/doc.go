// Package services implements the driving port interfaces.
// Services contain the core retrieval and build logic and orchestrate
// calls to driven ports (adapters).
package services
