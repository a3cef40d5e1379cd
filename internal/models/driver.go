package models

import (
	"time"
)

// UnknownRouteName is shown for drivers whose routeId matches no route
const UnknownRouteName = "Ruta desconocida"

// Driver is a bus driver and the route they are assigned to.
// RouteID is a weak reference: it is never checked against the routes
// collection and deleting a route leaves it dangling.
type Driver struct {
	ID          string    `json:"id"`
	Nombre      string    `json:"nombre"`
	BusPlate    string    `json:"busPlate"`
	RouteID     *string   `json:"routeId"`
	Status      string    `json:"status"`
	Comment     string    `json:"comment"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// DriverWithRoute is a driver listing row with the assigned route's name
type DriverWithRoute struct {
	Driver
	RouteName string `json:"routeName"`
}
