package geo

// Entidades de referencia del dataset georef. Solo lectura:
// se consumen frescas por sesión, nunca se persisten localmente.

type Province struct {
	ID   string
	Name string
}

type Department struct {
	ID   string
	Name string
}

type Locality struct {
	ID         string
	Name       string
	Province   Province
	Department Department
}

const (
	// MaxLocalities acota el fetch de localidades por provincia.
	MaxLocalities = 5000

	// FilterDisplayCap acota cuántas localidades filtradas se muestran
	// (provincias grandes pueden devolver miles de entradas).
	FilterDisplayCap = 200
)
