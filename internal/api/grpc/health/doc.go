// Package health implements the gRPC transport for controller liveness.
//
// It adapts controller state changes to the standard grpc.health.v1 service,
// so ordinary gRPC health probes can tell whether the device is processing
// detections.
package health
