package game

// Point rappresenta una cella della griglia.
type Point struct {
	X, Y int
}

// Direction rappresenta una direzione cardinale. Gli indici 0..3 devono
// coincidere con lo spazio delle azioni dell'agente e con il segmento
// one-hot del vettore di stato.
type Direction int

const (
	Up Direction = iota // 0
	Right
	Down
	Left

	// NumDirections è la dimensione dello spazio delle azioni.
	NumDirections = 4
)

// Vector converte una Direction in un vettore di spostamento unitario.
func (d Direction) Vector() Point {
	switch d {
	case Up:
		return Point{X: 0, Y: -1} // Su (decrementa Y)
	case Right:
		return Point{X: 1, Y: 0}
	case Down:
		return Point{X: 0, Y: 1} // Giù (incrementa Y)
	case Left:
		return Point{X: -1, Y: 0}
	default:
		return Point{X: 0, Y: 0}
	}
}

// Opposite restituisce la direzione opposta.
func (d Direction) Opposite() Direction {
	switch d {
	case Up:
		return Down
	case Right:
		return Left
	case Down:
		return Up
	case Left:
		return Right
	default:
		return d
	}
}

// Valid riporta se d è un indice di azione ammesso.
func (d Direction) Valid() bool {
	return d >= Up && d <= Left
}

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Right:
		return "right"
	case Down:
		return "down"
	case Left:
		return "left"
	default:
		return "none"
	}
}
