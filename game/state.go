package game

// StateEncoder converte lo stato grezzo del gioco in un vettore numerico
// a lunghezza fissa 2*G*G + 4: la maschera di occupazione del corpo
// (G*G), la one-hot del frutto (G*G) e la one-hot della direzione (4).
// Le celle sono appiattite per righe (indice y*G + x).
type StateEncoder struct {
	gridSize int
}

// NewStateEncoder crea un encoder per una griglia gridSize x gridSize.
func NewStateEncoder(gridSize int) *StateEncoder {
	return &StateEncoder{gridSize: gridSize}
}

// Size restituisce la lunghezza del vettore prodotto da Encode.
func (e *StateEncoder) Size() int {
	return 2*e.gridSize*e.gridSize + NumDirections
}

// Encode produce il vettore di stato. Invarianti: esattamente un 1 nel
// segmento direzione, al più un 1 nel segmento frutto, tanti 1 nella
// maschera del corpo quante sono le celle occupate.
func (e *StateEncoder) Encode(body []Point, fruit Point, dir Direction) []float64 {
	cells := e.gridSize * e.gridSize
	state := make([]float64, e.Size())

	for _, p := range body {
		if e.inside(p) {
			state[p.Y*e.gridSize+p.X] = 1
		}
	}
	if e.inside(fruit) {
		state[cells+fruit.Y*e.gridSize+fruit.X] = 1
	}
	state[2*cells+int(dir)] = 1

	return state
}

func (e *StateEncoder) inside(p Point) bool {
	return p.X >= 0 && p.X < e.gridSize && p.Y >= 0 && p.Y < e.gridSize
}
