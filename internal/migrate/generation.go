package migrate

import "fmt"

// Generation identifica la forma del esquema de ownership.
// Las transiciones son unidireccionales; volver atrás requiere
// una nueva migración hacia adelante, nunca un rollback automático.
type Generation string

const (
	// GenSingleOwnerCat: tabla legacy cats con FK de dueño único.
	GenSingleOwnerCat Generation = "single-owner-cat"
	// GenTypedPetSingleOwner: tabla pets unificada con tag de tipo, FK de dueño único.
	GenTypedPetSingleOwner Generation = "typed-pet-single-owner"
	// GenTypedPetMultiOwner: join pet_owners con metadata (added_at, is_primary).
	GenTypedPetMultiOwner Generation = "typed-pet-multi-owner"
)

// generations en orden de evolución.
var generations = []Generation{
	GenSingleOwnerCat,
	GenTypedPetSingleOwner,
	GenTypedPetMultiOwner,
}

func ParseGeneration(s string) (Generation, error) {
	for _, g := range generations {
		if string(g) == s {
			return g, nil
		}
	}
	return "", fmt.Errorf("unknown generation %q", s)
}

func (g Generation) ordinal() int {
	for i, o := range generations {
		if o == g {
			return i
		}
	}
	return -1
}

// Before devuelve true si g es una generación anterior a other.
func (g Generation) Before(other Generation) bool {
	return g.ordinal() < other.ordinal()
}

// Next devuelve la generación siguiente, o false si g es la última.
func (g Generation) Next() (Generation, bool) {
	i := g.ordinal()
	if i < 0 || i+1 >= len(generations) {
		return "", false
	}
	return generations[i+1], true
}

// Latest es la generación final de la secuencia.
func Latest() Generation {
	return generations[len(generations)-1]
}

// TransitionName nombra la transición from->to (key de los run records).
func TransitionName(from, to Generation) string {
	return string(from) + "->" + string(to)
}
