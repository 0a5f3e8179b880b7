package endpoints

import (
	"github.com/doodlesbykumbi/seek-in-go/pkg/server"
)

// RegisterAll registers all API endpoints on the server
func RegisterAll(srv *server.Server) {
	RegisterStatusEndpoints(srv)
	RegisterSessionEndpoints(srv)
	RegisterSearchEndpoints(srv)
	RegisterProgrammeEndpoints(srv)
	RegisterMembershipEndpoints(srv)
	RegisterNodeEndpoints(srv)
	RegisterSampleEndpoints(srv)
	RegisterISAEndpoints(srv)
	RegisterPublicationEndpoints(srv)

	// Static files
	RegisterStaticFiles(srv)
}
