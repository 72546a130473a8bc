package backend

// Vehicle is a fleet vehicle as listed by the backend.
type Vehicle struct {
	UID           string  `json:"uid"`
	IDVehiculo    string  `json:"idVehiculo,omitempty"`
	IDCategoria   string  `json:"idCategoria,omitempty"`
	Placa         string  `json:"placa"`
	Marca         string  `json:"marca"`
	Modelo        string  `json:"modelo"`
	Anio          int     `json:"anio"`
	Capacidad     int     `json:"capacidad"`
	PrecioDia     float64 `json:"precioDia"`
	Estado        string  `json:"estado"`
	FotoPrincipal string  `json:"fotoPrincipal,omitempty"`
}

// ID returns whichever identifier the backend populated.
func (v Vehicle) ID() string {
	if v.UID != "" {
		return v.UID
	}
	return v.IDVehiculo
}

// Available reports whether the vehicle can be reserved.
func (v Vehicle) Available() bool {
	return v.Estado == "Disponible"
}

// Reservation is a vehicle reservation.
type Reservation struct {
	UID          string    `json:"uid"`
	UsuarioUID   string    `json:"usuarioUid"`
	FechaReserva string    `json:"fechaReserva,omitempty"`
	FechaInicio  string    `json:"fechaInicio,omitempty"`
	FechaFin     string    `json:"fechaFin,omitempty"`
	Estado       string    `json:"estado"`
	TotalPrecio  float64   `json:"totalPrecio"`
	Vehiculos    []Vehicle `json:"vehiculos,omitempty"`
}

// Status returns the reservation state, defaulting to Pendiente.
func (r Reservation) Status() string {
	if r.Estado == "" {
		return "Pendiente"
	}
	return r.Estado
}

// Vehicle returns the first reserved vehicle, if any.
func (r Reservation) Vehicle() (Vehicle, bool) {
	if len(r.Vehiculos) == 0 {
		return Vehicle{}, false
	}
	return r.Vehiculos[0], true
}

// errorBody is the backend's error envelope.
type errorBody struct {
	Message string `json:"message"`
}
