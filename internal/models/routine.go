package models

import (
	"fmt"
	"strings"
)

type Weekday string

const (
	Lunes     Weekday = "lunes"
	Martes    Weekday = "martes"
	Miercoles Weekday = "miercoles"
	Jueves    Weekday = "jueves"
	Viernes   Weekday = "viernes"
	Sabado    Weekday = "sabado"
	Domingo   Weekday = "domingo"
)

var weekdays = []Weekday{Lunes, Martes, Miercoles, Jueves, Viernes, Sabado, Domingo}

// Weekdays returns the seven day tags in calendar order starting on Monday.
func Weekdays() []Weekday {
	out := make([]Weekday, len(weekdays))
	copy(out, weekdays)
	return out
}

// ParseWeekday accepts a day tag in any case, with or without accents.
func ParseWeekday(s string) (Weekday, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	normalized = strings.NewReplacer("é", "e", "á", "a").Replace(normalized)
	for _, d := range weekdays {
		if string(d) == normalized {
			return d, nil
		}
	}
	return "", fmt.Errorf("unknown weekday %q", s)
}

// Index is the position of the day within the week, or -1 when unknown.
func (d Weekday) Index() int {
	for i, w := range weekdays {
		if w == d {
			return i
		}
	}
	return -1
}

type Routine struct {
	ID         int               `json:"id"`
	Nombre     string            `json:"nombre"`
	Usuario    int               `json:"usuario"`
	Dia        Weekday           `json:"dia"`
	Ejercicios []RoutineExercise `json:"ejercicios,omitempty"`
}

type RoutineDraft struct {
	Nombre  string  `json:"nombre" validate:"required,max=100"`
	Dia     Weekday `json:"dia" validate:"required"`
	Usuario int     `json:"usuario" validate:"required,gt=0"`
}

// RoutinePatch is sent with PUT /rutinas/{id}/; zero fields are omitted.
type RoutinePatch struct {
	Nombre string  `json:"nombre,omitempty"`
	Dia    Weekday `json:"dia,omitempty"`
}

type RoutineExercise struct {
	ID              int      `json:"id"`
	Rutina          int      `json:"rutina"`
	TipoEjercicio   int      `json:"tipo_ejercicio"`
	NombreEjercicio string   `json:"nombre_ejercicio,omitempty"`
	Sets            int      `json:"sets"`
	Repeticiones    int      `json:"repeticiones"`
	RecordPeso      *float64 `json:"record_peso"`
	Orden           int      `json:"orden"`
}

type RoutineExerciseDraft struct {
	Rutina        int      `json:"rutina" validate:"required,gt=0"`
	TipoEjercicio int      `json:"tipo_ejercicio" validate:"required,gt=0"`
	Sets          int      `json:"sets" validate:"gt=0"`
	Repeticiones  int      `json:"repeticiones" validate:"gt=0"`
	RecordPeso    *float64 `json:"record_peso" validate:"omitempty,gte=0"`
	Orden         int      `json:"orden" validate:"gte=0"`
}

// OrderEntry is one {id, orden} pair of a reorder batch.
type OrderEntry struct {
	ID    int `json:"id"`
	Orden int `json:"orden"`
}

type ReorderRequest struct {
	Ejercicios []OrderEntry `json:"ejercicios"`
}
