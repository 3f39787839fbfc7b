package ownership

import "time"

// Ownership es el join explícito User<->Pet con metadata.
// Se modela como entidad propia (no como array implícito en Pet)
// para mantener integridad referencial y poder crecer la metadata.
type Ownership struct {
	ID string

	PetID  string
	UserID string

	// IsPrimary marca al dueño principal. Invariantes post-migración:
	// toda mascota tiene al menos un dueño y exactamente un primary,
	// y el primary siempre pertenece al set de dueños.
	IsPrimary bool

	AddedAt time.Time
}
