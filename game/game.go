package game

import (
	"fmt"

	"golang.org/x/exp/rand"
)

// Parametri del gioco e dei reward. I reward sono componenti additive:
// una collisione con il muro accumula anche la penalità self, così gli
// sconfinamenti pesano più di una collisione con il corpo.
const (
	DefaultGridSize = 15
	StartLength     = 3

	FruitReward = 10.0
	StepPenalty = -1.0
	WallPenalty = -10.0
	SelfPenalty = -10.0
)

// Cause descrive l'esito di un singolo passo.
type Cause string

const (
	CauseStep  Cause = "step"
	CauseFruit Cause = "fruit"
	CauseWall  Cause = "wall"
	CauseSelf  Cause = "self"
)

// Game rappresenta una singola istanza del gioco: griglia, serpente,
// frutto e generatore casuale dedicato. La simulazione è deterministica
// dato il seed del generatore.
type Game struct {
	gridSize      int
	body          []Point // testa in posizione 0
	dir           Direction
	fruit         Point
	pendingGrowth int

	steps  int
	fruits int
	reward float64

	encoder *StateEncoder
	rng     *rand.Rand
}

// Snapshot è una vista di sola lettura dello stato corrente, pensata per
// il renderer: può essere prelevata in qualunque momento tra due passi.
type Snapshot struct {
	GridSize      int
	Body          []Point
	Fruit         Point
	Direction     Direction
	PendingGrowth int
	Steps         int
	Fruits        int
	Reward        float64
}

// NewGame crea un nuovo gioco su una griglia gridSize x gridSize.
// Il generatore è posseduto dal chiamante e viene usato solo per la
// generazione dei frutti.
func NewGame(gridSize int, rng *rand.Rand) *Game {
	g := &Game{
		gridSize: gridSize,
		encoder:  NewStateEncoder(gridSize),
		rng:      rng,
	}
	g.Reset()
	return g
}

// GridSize restituisce il lato della griglia.
func (g *Game) GridSize() int { return g.gridSize }

// StateSize restituisce la lunghezza del vettore di stato prodotto.
func (g *Game) StateSize() int { return g.encoder.Size() }

// Reset riporta il gioco allo stato iniziale: serpente di lunghezza
// StartLength centrato sulla griglia rivolto verso destra, frutto su una
// cella libera casuale. Restituisce il vettore di stato iniziale.
func (g *Game) Reset() []float64 {
	center := g.gridSize / 2
	g.body = make([]Point, 0, StartLength)
	for i := 0; i < StartLength; i++ {
		g.body = append(g.body, Point{X: center - i, Y: center})
	}
	g.dir = Right
	g.pendingGrowth = 0
	g.steps = 0
	g.fruits = 0
	g.reward = 0
	g.fruit = g.spawnFruit()
	return g.encode()
}

// Step applica un'azione (indice di direzione in [0,4)) e restituisce il
// prossimo vettore di stato, il reward, il flag di terminazione e la
// causa del passo. Un'azione fuori range è una violazione di
// precondizione e produce un errore, mai un clamp silenzioso.
//
// Se l'azione richiesta è l'esatto opposto della direzione corrente il
// serpente prosegue nella direzione corrente: non può invertirsi su se
// stesso. Sui passi terminali lo stato restituito è quello pre-terminale.
func (g *Game) Step(action int) ([]float64, float64, bool, Cause, error) {
	dir := Direction(action)
	if !dir.Valid() {
		return nil, 0, false, "", fmt.Errorf("invalid action index %d: must be in [0,%d)", action, NumDirections)
	}

	// Guardia anti-inversione
	if dir == g.dir.Opposite() {
		dir = g.dir
	}
	g.dir = dir
	g.steps++

	v := dir.Vector()
	head := g.body[0]
	newHead := Point{X: head.X + v.X, Y: head.Y + v.Y}

	if newHead.X < 0 || newHead.X >= g.gridSize || newHead.Y < 0 || newHead.Y >= g.gridSize {
		r := StepPenalty + WallPenalty + SelfPenalty
		g.reward += r
		return g.encode(), r, true, CauseWall, nil
	}
	for _, p := range g.body {
		if newHead == p {
			r := StepPenalty + SelfPenalty
			g.reward += r
			return g.encode(), r, true, CauseSelf, nil
		}
	}

	g.body = append([]Point{newHead}, g.body...)

	cause := CauseStep
	reward := StepPenalty
	if newHead == g.fruit {
		cause = CauseFruit
		reward = StepPenalty + FruitReward
		g.fruits++
		g.pendingGrowth++
		g.fruit = g.spawnFruit()
	}

	if g.pendingGrowth > 0 {
		g.pendingGrowth--
	} else {
		g.body = g.body[:len(g.body)-1]
	}

	g.reward += reward
	return g.encode(), reward, false, cause, nil
}

// Snapshot restituisce una copia dello stato corrente per il renderer.
func (g *Game) Snapshot() Snapshot {
	body := make([]Point, len(g.body))
	copy(body, g.body)
	return Snapshot{
		GridSize:      g.gridSize,
		Body:          body,
		Fruit:         g.fruit,
		Direction:     g.dir,
		PendingGrowth: g.pendingGrowth,
		Steps:         g.steps,
		Fruits:        g.fruits,
		Reward:        g.reward,
	}
}

// spawnFruit sceglie una cella libera uniformemente a caso. Se il corpo
// copre l'intera griglia non esistono celle libere e il frutto ricade
// sulla testa: la partita può solo chiudersi al passo successivo.
func (g *Game) spawnFruit() Point {
	free := make([]Point, 0, g.gridSize*g.gridSize-len(g.body))
	occupied := make(map[Point]bool, len(g.body))
	for _, p := range g.body {
		occupied[p] = true
	}
	for y := 0; y < g.gridSize; y++ {
		for x := 0; x < g.gridSize; x++ {
			p := Point{X: x, Y: y}
			if !occupied[p] {
				free = append(free, p)
			}
		}
	}
	if len(free) == 0 {
		return g.body[0]
	}
	return free[g.rng.Intn(len(free))]
}

func (g *Game) encode() []float64 {
	return g.encoder.Encode(g.body, g.fruit, g.dir)
}
