package middleware

import (
	"github.com/gin-gonic/gin"

	midsec "github.com/GabrielG71/online-chat/middleware/security"
)

// RouteOpt configures route registration.
type RouteOpt struct {
	IsAuth bool
}

// POST registers a POST route, with the auth middleware when required.
func POST(r gin.IRoutes, path string, handler gin.HandlerFunc, opt RouteOpt) {
	if opt.IsAuth {
		r.POST(path,
			midsec.Middleware(midsec.DefaultOptions()),
			handler,
		)
	} else {
		r.POST(path, handler)
	}
}

// GET registers a GET route, with the auth middleware when required.
func GET(r gin.IRoutes, path string, handler gin.HandlerFunc, opt RouteOpt) {
	if opt.IsAuth {
		r.GET(path,
			midsec.Middleware(midsec.DefaultOptions()),
			handler,
		)
	} else {
		r.GET(path, handler)
	}
}
