package domain

// Usuario is a staff account. Inactive users keep their history but can no
// longer log in; the backend enforces this, the client only displays it.
type Usuario struct {
	ID     int    `json:"id"`
	Nombre string `json:"nombre"`
	Email  string `json:"email"`
	Rol    Rol    `json:"rol"`
	Activo bool   `json:"activo"`
}

// NuevoUsuario is the create/update payload for /users. Password is only
// sent on create; updates leave it empty.
type NuevoUsuario struct {
	Nombre   string `json:"nombre"`
	Email    string `json:"email"`
	Password string `json:"password,omitempty"`
	Rol      Rol    `json:"rol"`
	Activo   bool   `json:"activo"`
}

// Maquina is a processing machine with a stage affinity.
type Maquina struct {
	ID      int           `json:"id"`
	Nombre  string        `json:"nombre"`
	Proceso Proceso       `json:"proceso"`
	Estado  EstadoMaquina `json:"estado"`
}

// NuevaMaquina is the create/update payload for /maquinas.
type NuevaMaquina struct {
	Nombre  string        `json:"nombre"`
	Proceso Proceso       `json:"proceso"`
	Estado  EstadoMaquina `json:"estado"`
}
