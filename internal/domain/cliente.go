package domain

// Ciudad is a read-only city reference supplied by GET /ciudades.
type Ciudad struct {
	ID           int    `json:"id"`
	Nombre       string `json:"nombre"`
	Departamento string `json:"departamento,omitempty"`
}

// Cliente is a customer record. CiudadID is optional; Ciudad is the
// denormalized snapshot the API attaches when the reference is set.
type Cliente struct {
	ID        int     `json:"id"`
	Nombre    string  `json:"nombre"`
	Documento string  `json:"documento,omitempty"`
	Telefono  string  `json:"telefono,omitempty"`
	Email     string  `json:"email,omitempty"`
	Direccion string  `json:"direccion,omitempty"`
	CiudadID  *int    `json:"ciudadId,omitempty"`
	Ciudad    *Ciudad `json:"ciudad,omitempty"`
}

// NuevoCliente is the create/update payload for /clients.
type NuevoCliente struct {
	Nombre    string `json:"nombre"`
	Documento string `json:"documento,omitempty"`
	Telefono  string `json:"telefono,omitempty"`
	Email     string `json:"email,omitempty"`
	Direccion string `json:"direccion,omitempty"`
	CiudadID  *int   `json:"ciudadId,omitempty"`
}
