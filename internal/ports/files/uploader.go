package files

import (
	"context"
	"io"
)

// Uploader es la caja negra de subida de archivos: recibe el blob de una
// mascota y devuelve la referencia del asset guardado. El backend real
// (S3, disco, etc.) queda fuera de este core.
type Uploader interface {
	Upload(ctx context.Context, petID string, blob io.Reader) (key string, err error)
}
