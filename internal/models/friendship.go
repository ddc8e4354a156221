package models

type FriendshipStatus string

const (
	FriendshipPendiente FriendshipStatus = "pendiente"
	FriendshipAceptada  FriendshipStatus = "aceptada"
	FriendshipRechazada FriendshipStatus = "rechazada"
)

// FriendshipDirection is the perspective of the viewing user: "enviada" when
// they sent the request, "recibida" when they received it.
type FriendshipDirection string

const (
	FriendshipEnviada  FriendshipDirection = "enviada"
	FriendshipRecibida FriendshipDirection = "recibida"
)

type Friendship struct {
	ID              int                 `json:"id"`
	Usuario         int                 `json:"usuario"`
	Amigo           int                 `json:"amigo"`
	AmigoUsername   string              `json:"amigo_username"`
	UsuarioUsername string              `json:"usuario_username"`
	UsuarioEmail    string              `json:"usuario_email,omitempty"`
	Tipo            FriendshipDirection `json:"tipo"`
	Status          FriendshipStatus    `json:"status"`
}

// Counterpart is the display name of the other side of the relation.
func (f Friendship) Counterpart() string {
	if f.Tipo == FriendshipEnviada {
		return f.AmigoUsername
	}
	return f.UsuarioUsername
}

func (f Friendship) IsTerminal() bool {
	return f.Status == FriendshipAceptada || f.Status == FriendshipRechazada
}

// CanRespond reports whether the viewing user may accept or reject.
func (f Friendship) CanRespond() bool {
	return f.Status == FriendshipPendiente && f.Tipo == FriendshipRecibida
}

type FriendRequest struct {
	AmigoInput string `json:"amigo_input" validate:"required"`
}

type FriendshipStatusUpdate struct {
	Status FriendshipStatus `json:"status"`
}
