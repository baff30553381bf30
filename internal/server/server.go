package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"curryhouse/internal/config"
	menuhandlers "curryhouse/internal/menu/handlers"
	"curryhouse/internal/middlewares"
	orderhandlers "curryhouse/internal/orders/handlers"
	paymenthandlers "curryhouse/internal/payments/handlers"
	reghandlers "curryhouse/internal/registrations/handlers"
	settingshandlers "curryhouse/internal/settings/handlers"
)

const (
	readTimeout       = 1 * time.Minute
	readHeaderTimeout = 30 * time.Second
	writeTimeout      = 1 * time.Minute
)

type Handlers struct {
	Menu          *menuhandlers.MenuHandler
	Orders        *orderhandlers.OrderHandler
	Payments      *paymenthandlers.PaymentHandler
	Registrations *reghandlers.RegistrationHandler
	Settings      *settingshandlers.SettingsHandler
}

type Server struct {
	Router *mux.Router
	server *http.Server
}

func SetupRoutes(h Handlers, admin config.AdminConfig) *Server {
	router := mux.NewRouter()

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, `{"alive": true}`)
	}).Methods("GET")

	// customer-facing
	router.HandleFunc("/menu", h.Menu.GetMenu).Methods("GET")
	router.HandleFunc("/settings/latest", h.Settings.Latest).Methods("GET")
	router.HandleFunc("/register", h.Registrations.Register).Methods("POST")
	router.HandleFunc("/order", h.Orders.Create).Methods("POST")
	router.HandleFunc("/api/payment/client-config", h.Payments.ClientConfig).Methods("POST")
	router.HandleFunc("/api/payment/process", h.Payments.Process).Methods("POST")

	// back office
	adminRoutes := router.NewRoute().Subrouter()
	adminRoutes.Use(middlewares.AdminAuth(admin))

	adminRoutes.HandleFunc("/menu/all", h.Menu.GetAllSections).Methods("GET")
	adminRoutes.HandleFunc("/menu", h.Menu.CreateSection).Methods("POST")
	adminRoutes.HandleFunc("/menu/{id}", h.Menu.UpdateSection).Methods("PUT")
	adminRoutes.HandleFunc("/menu/{id}", h.Menu.DeleteSection).Methods("DELETE")
	adminRoutes.HandleFunc("/menu/category/{id}/item", h.Menu.AddItem).Methods("POST")
	adminRoutes.HandleFunc("/menu/category/{id}/item/{itemId}", h.Menu.UpdateItem).Methods("PUT")
	adminRoutes.HandleFunc("/menu/category/{id}/item/{itemId}", h.Menu.DeleteItem).Methods("DELETE")

	adminRoutes.HandleFunc("/order", h.Orders.List).Methods("GET")
	adminRoutes.HandleFunc("/order/kitchen", h.Orders.KitchenQueue).Methods("GET")
	adminRoutes.HandleFunc("/order/kitchen/{id}", h.Orders.DispatchTicket).Methods("PUT")
	adminRoutes.HandleFunc("/order/table/{tableNo}", h.Orders.TableBill).Methods("GET")
	adminRoutes.HandleFunc("/order/settle", h.Orders.Settle).Methods("PUT")
	adminRoutes.HandleFunc("/order/accept", h.Orders.Accept).Methods("PUT")
	adminRoutes.HandleFunc("/order/cancel", h.Orders.Cancel).Methods("PUT")

	adminRoutes.HandleFunc("/printer", h.Settings.GetPrinter).Methods("GET")
	adminRoutes.HandleFunc("/printer", h.Settings.SavePrinter).Methods("POST")
	adminRoutes.HandleFunc("/settings", h.Settings.List).Methods("GET")
	adminRoutes.HandleFunc("/settings", h.Settings.Save).Methods("POST")
	adminRoutes.HandleFunc("/register/all", h.Registrations.List).Methods("GET")

	return &Server{Router: router}
}

func (svr *Server) Run(port int) error {
	svr.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           svr.Router,
		ReadTimeout:       readTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
		WriteTimeout:      writeTimeout,
	}
	return svr.server.ListenAndServe()
}

func (svr *Server) Shutdown(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return svr.server.Shutdown(ctx)
}
