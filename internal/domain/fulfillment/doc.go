// Package fulfillment contains the Fulfillment bounded context.
// It decides how a marketplace order is handed over to the carrier network,
// resolves the tracking number the platform assigns afterwards and keeps the
// locally cached order facts in step with what the platform reports.
//
// Key concepts:
//   - Order: locally cached order keyed by the platform order serial number
//   - TrackingFacts: set-once fulfillment facts attached to an order
//   - ShippingParameters: what the platform requires to ship a given order
//   - ShipmentPayload: the concrete pickup/dropoff/non-integrated submission
//   - LogisticsAPI: port for the platform logistics endpoints
//   - OrderRepository: port for the persistent order store
//
// Design Pattern: Ports & Adapters
//   - Ports (interfaces) are defined here in the domain layer
//   - Adapters (implementations) are in the infrastructure layer
package fulfillment
