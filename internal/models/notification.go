package models

type NotificationType string

const (
	NotificationSuccess NotificationType = "success"
	NotificationError   NotificationType = "error"
)

// Notification is a short, non-blocking message shown after a mutating action.
type Notification struct {
	Type    NotificationType `json:"type"`
	Message string           `json:"message"`
}

// Route is a navigation target of the presentation layer.
type Route string

const (
	RouteLogin      Route = "/"
	RouteRegister   Route = "/register"
	RouteDashboard  Route = "/dashboard"
	RouteEjercicios Route = "/ejercicios"
	RouteRutinas    Route = "/rutinas"
	RouteSocial     Route = "/social"
	RoutePerfil     Route = "/perfil"
)
