package server

import (
	"google.golang.org/grpc"

	"github.com/oggyb/vibeu-engine/internal/app"
)

// Registrar is a common interface for all gRPC service registrars
type Registrar interface {
	Register(s *grpc.Server)
}

// EngineRegistrar ties the Engine service into the gRPC server
type EngineRegistrar struct {
	appCtx *app.AppContext
}

// NewRegistrar creates a new registrar for the Engine service
func NewRegistrar(appCtx *app.AppContext) *EngineRegistrar {
	return &EngineRegistrar{appCtx: appCtx}
}

// Register attaches the Engine implementation to the gRPC server
func (r *EngineRegistrar) Register(s *grpc.Server) {
	s.RegisterService(&EngineServiceDesc, NewEngine(r.appCtx))
}
