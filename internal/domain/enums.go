package domain

// EstadoPedido is the server-side lifecycle state of an order. The client
// never computes or validates transitions; the values exist for display,
// filtering and badge colors only.
type EstadoPedido string

const (
	EstadoRegistrado       EstadoPedido = "REGISTRADO"
	EstadoTrillado         EstadoPedido = "TRILLADO"
	EstadoMaquila          EstadoPedido = "MAQUILA"
	EstadoTostion          EstadoPedido = "TOSTION"
	EstadoProduccion       EstadoPedido = "PRODUCCION"
	EstadoFacturacion      EstadoPedido = "FACTURACION"
	EstadoListoParaEntrega EstadoPedido = "LISTO_PARA_ENTREGA"
	EstadoEntregado        EstadoPedido = "ENTREGADO"
)

// EstadosPedido lists every estado in pipeline order, used to build
// filter selects and the dashboard breakdown.
var EstadosPedido = []EstadoPedido{
	EstadoRegistrado,
	EstadoTrillado,
	EstadoMaquila,
	EstadoTostion,
	EstadoProduccion,
	EstadoFacturacion,
	EstadoListoParaEntrega,
	EstadoEntregado,
}

// Etiqueta returns the human label shown in tables and badges.
func (e EstadoPedido) Etiqueta() string {
	switch e {
	case EstadoRegistrado:
		return "Registrado"
	case EstadoTrillado:
		return "Trillado"
	case EstadoMaquila:
		return "En maquila"
	case EstadoTostion:
		return "En tostión"
	case EstadoProduccion:
		return "En producción"
	case EstadoFacturacion:
		return "En facturación"
	case EstadoListoParaEntrega:
		return "Listo para entrega"
	case EstadoEntregado:
		return "Entregado"
	default:
		return string(e)
	}
}

type Rol string

const (
	RolAdmin       Rol = "ADMIN"
	RolOperario    Rol = "OPERARIO"
	RolFacturacion Rol = "FACTURACION"
)

// Roles is the canonical set of selectable roles for the user form.
var Roles = []Rol{RolAdmin, RolOperario, RolFacturacion}

func (r Rol) Etiqueta() string {
	switch r {
	case RolAdmin:
		return "Administrador"
	case RolOperario:
		return "Operario"
	case RolFacturacion:
		return "Facturación"
	default:
		return string(r)
	}
}

type EstadoMaquina string

const (
	MaquinaActiva          EstadoMaquina = "ACTIVA"
	MaquinaMantenimiento   EstadoMaquina = "MANTENIMIENTO"
	MaquinaFueraDeServicio EstadoMaquina = "FUERA_DE_SERVICIO"
)

var EstadosMaquina = []EstadoMaquina{MaquinaActiva, MaquinaMantenimiento, MaquinaFueraDeServicio}

func (e EstadoMaquina) Etiqueta() string {
	switch e {
	case MaquinaActiva:
		return "Activa"
	case MaquinaMantenimiento:
		return "Mantenimiento"
	case MaquinaFueraDeServicio:
		return "Fuera de servicio"
	default:
		return string(e)
	}
}

// Proceso identifies the physical production stage a machine is assigned to.
type Proceso string

const (
	ProcesoTrillado   Proceso = "TRILLADO"
	ProcesoTostion    Proceso = "TOSTION"
	ProcesoProduccion Proceso = "PRODUCCION"
)

var Procesos = []Proceso{ProcesoTrillado, ProcesoTostion, ProcesoProduccion}

// Dia is a weekday key as the backend names them in schedules.
type Dia string

const (
	Lunes     Dia = "LUNES"
	Martes    Dia = "MARTES"
	Miercoles Dia = "MIERCOLES"
	Jueves    Dia = "JUEVES"
	Viernes   Dia = "VIERNES"
	Sabado    Dia = "SABADO"
	Domingo   Dia = "DOMINGO"
)

// Dias lists the weekdays in calendar order for schedule rendering.
var Dias = []Dia{Lunes, Martes, Miercoles, Jueves, Viernes, Sabado, Domingo}

func (d Dia) Etiqueta() string {
	switch d {
	case Lunes:
		return "Lunes"
	case Martes:
		return "Martes"
	case Miercoles:
		return "Miércoles"
	case Jueves:
		return "Jueves"
	case Viernes:
		return "Viernes"
	case Sabado:
		return "Sábado"
	case Domingo:
		return "Domingo"
	default:
		return string(d)
	}
}
