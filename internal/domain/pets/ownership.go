package pets

import "context"

// LegacyOwnerOf expone el ownerUserID de la columna legacy de dueño único.
// Lo consume el módulo ownership antes del cutover a multi-owner;
// se expone como método para evitar ciclos de imports (pets <-> ownership).
func (s *Service) LegacyOwnerOf(ctx context.Context, petID string) (string, error) {
	p, err := s.GetByID(ctx, petID)
	if err != nil {
		return "", err
	}
	return p.OwnerUserID, nil
}
