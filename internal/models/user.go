package models

// User is the profile returned by /users/me/. ID is assigned by the backend
// and never changes.
type User struct {
	ID        int    `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email,omitempty"`
	Nombre    string `json:"nombre,omitempty"`
	Apellidos string `json:"apellidos,omitempty"`
}

// Credentials is the token pair issued by the login endpoint.
type Credentials struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Username  string `json:"username" validate:"required,max=150"`
	Nombre    string `json:"nombre" validate:"required,max=255"`
	Apellidos string `json:"apellidos" validate:"required,max=255"`
	Password  string `json:"password" validate:"required"`
	Password2 string `json:"password2" validate:"required,eqfield=Password"`
}

// ProfileUpdate carries the editable profile fields. An empty password
// is omitted so the backend keeps the current one.
type ProfileUpdate struct {
	Nombre    string `json:"nombre" validate:"required,max=255"`
	Apellidos string `json:"apellidos" validate:"required,max=255"`
	Password  string `json:"password,omitempty"`
}

type RefreshRequest struct {
	Refresh string `json:"refresh"`
}
