package entity

// Roles reconocidos en el token de identidad.
const (
	RoleAdmin      = "admin"
	RolePharmacist = "pharmacien"
	RoleCashier    = "caissier"
)

// Actor identidad de la petición: agencia, empleado y etiqueta legible.
// El ledger no autentica; solo registra quién hizo cada operación.
type Actor struct {
	TenantID string
	UserID   string
	Label    string // código de empleado, ej. ADM-001
	Role     string
}

// IsAdmin indica si el actor tiene rol administrador.
func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }
