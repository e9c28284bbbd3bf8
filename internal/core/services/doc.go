// Package services implements the driving port interfaces.
// Services contain the retrieval logic and orchestrate calls to
// driven ports (adapters).
//
// Every service acquires its backend handles once, in its constructor,
// through a driven.BackendFactory. Nothing is shared through package-level
// state, so a tool built after the environment is loaded never sees a
// half-configured client. Failures are returned as *domain.ToolError and
// turned into text only by the driving adapters.
package services
