package dto

// Límites de paginación. Los diarios usan un límite por defecto mayor.
const (
	DefaultPageLimit    = 20
	DefaultJournalLimit = 100
	MaxPageLimit        = 500
)

// PageRequest paginación para listados. Limit cero toma el valor por defecto del listado.
type PageRequest struct {
	Limit  int `query:"limit" validate:"omitempty,min=1,max=500"`
	Offset int `query:"offset" validate:"min=0"`
}

// DefaultPage completa Limit si es cero y acota los valores fuera de rango.
func (p *PageRequest) DefaultPage(defaultLimit int) {
	if p.Limit <= 0 {
		p.Limit = defaultLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}

// PageResponse metadatos de página en respuestas.
type PageResponse struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total,omitempty"`
}

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
