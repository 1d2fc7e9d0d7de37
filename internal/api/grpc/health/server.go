package health

import (
	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	domain "github.com/oshokin/door-sentry/internal/domain/device"
)

// ServiceName is the health service name of the controller.
const ServiceName = "doorsentry.Controller"

// Server reports controller state through grpc.health.v1.
type Server struct {
	// health is the standard implementation that holds per-service statuses.
	health *grpchealth.Server
}

// NewServer creates a health server reporting NOT_SERVING until the controller is idle.
func NewServer() *Server {
	s := &Server{
		health: grpchealth.NewServer(),
	}

	s.StateChanged(domain.StateBooting, domain.ModeUnknown)

	return s
}

// Register adds the health service to a gRPC server.
func (s *Server) Register(registrar grpc.ServiceRegistrar) {
	healthpb.RegisterHealthServer(registrar, s.health)
}

// StateChanged maps a controller state to serving status for both the
// overall server and ServiceName.
func (s *Server) StateChanged(state domain.State, _ domain.Mode) {
	status := toServingStatus(state)

	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
}

// Shutdown marks every service NOT_SERVING and ends watch streams.
func (s *Server) Shutdown() {
	s.health.Shutdown()
}

// toServingStatus converts a controller state to a health status.
func toServingStatus(state domain.State) healthpb.HealthCheckResponse_ServingStatus {
	if state.Serving() {
		return healthpb.HealthCheckResponse_SERVING
	}

	return healthpb.HealthCheckResponse_NOT_SERVING
}
