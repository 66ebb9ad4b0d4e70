// Package integration contains the contract for talking to the remote
// e-commerce platform.
//
// Key concepts:
//   - Gateway: port for issuing signed calls against the platform open API
//   - GatewayResponse: the platform's uniform {error, message, response} envelope
//
// Design Pattern: Ports & Adapters
//   - Ports (interfaces) are defined here in the domain layer
//   - Adapters (implementations) are in the infrastructure layer
package integration
