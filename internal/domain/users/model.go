package users

import "time"

// User representa una identidad registrada en el sistema.
type User struct {
	// ID es inmutable desde el sign-up.
	ID string

	Email        string
	PasswordHash string

	// DisplayName se agregó en una generación posterior al sign-up original;
	// es puntero hasta que el backfill lo complete (nil = sin setear).
	DisplayName *string

	CreatedAt time.Time
	UpdatedAt time.Time
}
