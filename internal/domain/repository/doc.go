// Package repository define los modelos de dominio y los contratos de
// persistencia del provider OAuth2/OIDC.
//
// Los drivers (pg, memory) implementan estas interfaces. El provider es
// stateless: todo el estado durable vive detrás de estos contratos.
//
// Dos operaciones son sensibles a races y exigen un update condicional
// atómico del driver:
//   - CodeRepository.Consume (flip used=false → used=true)
//   - RefreshTokenRepository.Consume (flip revoked_at NULL → NOW)
//
// Solo un caller concurrente puede ganar cada flip.
package repository
