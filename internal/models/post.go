package models

import "time"

const DefaultPostTipo = "general"

type Post struct {
	ID            int       `json:"id"`
	Usuario       string    `json:"usuario"`
	Contenido     string    `json:"contenido"`
	Tipo          string    `json:"tipo"`
	FechaCreacion time.Time `json:"fecha_creacion"`
	LikesCount    int       `json:"likes_count"`
	LikedByUser   bool      `json:"liked_by_user"`
}

type PostDraft struct {
	Contenido string `json:"contenido" validate:"required"`
	Tipo      string `json:"tipo" validate:"required,max=50"`
}
