package models

import "strings"

type MuscleGroup string

const (
	MuscleGroupPecho   MuscleGroup = "pecho"
	MuscleGroupBrazos  MuscleGroup = "brazos"
	MuscleGroupEspalda MuscleGroup = "espalda"
	MuscleGroupPiernas MuscleGroup = "piernas"
	MuscleGroupCardio  MuscleGroup = "cardio"
)

// MuscleGroups lists the groups offered when creating an exercise type.
func MuscleGroups() []MuscleGroup {
	return []MuscleGroup{
		MuscleGroupPecho,
		MuscleGroupBrazos,
		MuscleGroupEspalda,
		MuscleGroupPiernas,
		MuscleGroupCardio,
	}
}

// Matches compares a stored tag against a filter value ignoring case.
func (g MuscleGroup) Matches(tag string) bool {
	return strings.EqualFold(string(g), tag)
}

type ExerciseType struct {
	ID            int    `json:"id"`
	Nombre        string `json:"nombre"`
	Descripcion   string `json:"descripcion"`
	GrupoMuscular string `json:"grupo_muscular"`
}

type ExerciseTypeDraft struct {
	Nombre        string `json:"nombre" validate:"required,max=100"`
	Descripcion   string `json:"descripcion" validate:"required"`
	GrupoMuscular string `json:"grupo_muscular" validate:"required,oneof=pecho brazos espalda piernas cardio"`
}
