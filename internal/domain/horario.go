package domain

// Franja is one time range inside a shift schedule, e.g. 06:00–14:00 on
// LUNES. Hours are HH:MM strings as the backend sends them.
type Franja struct {
	Dia        Dia    `json:"dia"`
	HoraInicio string `json:"horaInicio"`
	HoraFin    string `json:"horaFin"`
}

// Horario is a named shift schedule with per-weekday time ranges.
type Horario struct {
	ID      int      `json:"id"`
	Nombre  string   `json:"nombre"`
	Franjas []Franja `json:"franjas"`
	Activo  bool     `json:"activo"`
}

// FranjasDe returns the schedule's time ranges for one weekday.
func (h *Horario) FranjasDe(d Dia) []Franja {
	var out []Franja
	for _, f := range h.Franjas {
		if f.Dia == d {
			out = append(out, f)
		}
	}
	return out
}

// NuevoHorario is the create/update payload for /horarios.
type NuevoHorario struct {
	Nombre  string   `json:"nombre"`
	Franjas []Franja `json:"franjas"`
	Activo  bool     `json:"activo"`
}
