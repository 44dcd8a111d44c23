package api

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/stridehub/strideboard/app/api/controller"
	"github.com/stridehub/strideboard/app/api/types"
	"github.com/stridehub/strideboard/pkg/utils"
)

// NewServer creates the HTTP server and attaches the router to the app.
func NewServer(app *types.App) error {
	ctler := controller.NewController(app)
	router, err := ctler.NewRouter()
	if err != nil {
		return err
	}

	// use <ip>:<port> to bind to a specific interface or :<port> to bind to all interfaces
	addr := utils.Env("ADDR", ":3001")

	app.Server = &http.Server{Addr: addr, Handler: controller.WithCORS(router)}
	app.Logger.Info("Starting server", zap.String("addr", addr))

	return nil
}
