package pets

import "time"

// PetType define los tipos de mascota soportados.
// Reemplaza a la antigua entidad Cat: una sola colección de pets
// con discriminador de tipo, en vez de una tabla por especie.
// @Enum cat, dog, bird, rabbit, other
type PetType string

const (
	TypeCat    PetType = "cat"
	TypeDog    PetType = "dog"
	TypeBird   PetType = "bird"
	TypeRabbit PetType = "rabbit"
	TypeOther  PetType = "other"
)

// ValidTypes es el set cerrado (pero extensible) de tipos reconocidos.
// Para sumar un tipo nuevo basta agregar la constante y la entrada acá.
var ValidTypes = map[PetType]struct{}{
	TypeCat:    {},
	TypeDog:    {},
	TypeBird:   {},
	TypeRabbit: {},
	TypeOther:  {},
}

// Pet representa una mascota registrada en el sistema.
type Pet struct {
	ID string

	// OwnerUserID es la columna legacy de dueño único.
	// Desde la generación typed-pet-multi-owner la fuente de verdad
	// pasa a ser el join pet_owners; la columna queda deprecada
	// (se conserva hasta verificar la migración, nunca se borra en el mismo paso).
	OwnerUserID string

	Name        string
	Description string
	Type        PetType

	// PhotoKey referencia el asset subido vía el port de archivos (puede estar vacío).
	PhotoKey string

	CreatedAt time.Time
	UpdatedAt time.Time
}
