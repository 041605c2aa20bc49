package dto

// PageRequest paginación para listados.
type PageRequest struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

// Límites de paginación.
const (
	DefaultPageLimit = 100
	MaxPageLimit     = 500
)

// Normalize aplica valores por defecto y topes.
func (p PageRequest) Normalize() PageRequest {
	if p.Limit <= 0 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// PageResponse metadatos de página en respuestas.
type PageResponse struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Field     string `json:"field,omitempty"`
	Retryable bool   `json:"retryable,omitempty"`
	Details   any    `json:"details,omitempty"`
}
