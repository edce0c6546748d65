package qlearning

import (
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

// Iperparametri di default dell'agente.
const (
	LearningRate       = 0.005
	Gamma              = 0.95
	InitialEpsilon     = 1.0
	EpsilonDecay       = 0.9995 // decadimento per passo, non per episodio
	MinEpsilon         = 0.01
	BatchSize          = 32
	ReplayBufferSize   = 5000
	TargetSyncInterval = 100
	HiddenLayerSize    = 128
)

// Config raccoglie gli iperparametri dell'agente. È immutabile dopo la
// costruzione: solo epsilon (decadimento) e i parametri delle reti
// (apprendimento) cambiano durante il training.
type Config struct {
	LearningRate       float64
	Gamma              float64
	Epsilon            float64
	EpsilonMin         float64
	EpsilonDecay       float64
	BatchSize          int
	TargetSyncInterval int
	BufferSize         int
	HiddenSizes        []int
}

// DefaultConfig restituisce la configurazione di default.
func DefaultConfig() Config {
	return Config{
		LearningRate:       LearningRate,
		Gamma:              Gamma,
		Epsilon:            InitialEpsilon,
		EpsilonMin:         MinEpsilon,
		EpsilonDecay:       EpsilonDecay,
		BatchSize:          BatchSize,
		TargetSyncInterval: TargetSyncInterval,
		BufferSize:         ReplayBufferSize,
		HiddenSizes:        []int{HiddenLayerSize},
	}
}

// Agent rappresenta l'agente Double-DQN: rete online, rete target
// (copia ritardata della online), buffer di replay ed epsilon corrente.
type Agent struct {
	online *Network
	target *Network
	buffer *ReplayBuffer

	Config     Config
	Epsilon    float64
	LearnSteps int

	rng *rand.Rand
}

// NewAgent crea un nuovo agente per stati di dimensione inputSize e
// numActions azioni discrete. La rete target parte come copia esatta
// della rete online.
func NewAgent(cfg Config, inputSize, numActions int, rng *rand.Rand) *Agent {
	sizes := make([]int, 0, len(cfg.HiddenSizes)+2)
	sizes = append(sizes, inputSize)
	sizes = append(sizes, cfg.HiddenSizes...)
	sizes = append(sizes, numActions)

	online := NewNetwork(sizes, rng)
	return &Agent{
		online:  online,
		target:  online.Copy(),
		buffer:  NewReplayBuffer(cfg.BufferSize, rng),
		Config:  cfg,
		Epsilon: cfg.Epsilon,
		rng:     rng,
	}
}

// Online restituisce la rete online.
func (a *Agent) Online() *Network { return a.online }

// Target restituisce la rete target.
func (a *Agent) Target() *Network { return a.target }

// BufferLen restituisce il numero di transizioni nel buffer di replay.
func (a *Agent) BufferLen() int { return a.buffer.Len() }

// SelectAction seleziona un'azione con politica epsilon-greedy: con
// probabilità epsilon (ignorata in modalità greedy) un'azione casuale,
// altrimenti l'argmax dei Q-value della rete online. A parità di massimo
// vince il primo indice che lo raggiunge, regola deterministica.
func (a *Agent) SelectAction(state []float64, greedy bool) int {
	if !greedy && a.rng.Float64() < a.Epsilon {
		return a.rng.Intn(a.online.OutputSize())
	}
	return argmax(a.online.Predict(state))
}

// Push inoltra una transizione al buffer di replay.
func (a *Agent) Push(t Transition) {
	a.buffer.Add(t)
}

// Learn esegue un passo di apprendimento Double-Q. Finché il buffer
// contiene meno di BatchSize transizioni non c'è aggiornamento e
// restituisce ok=false. Altrimenti campiona un batch, calcola il target
// di Bellman scegliendo l'azione con la rete online e leggendone il
// valore dalla rete target, e retropropaga solo attraverso la rete
// online. Ogni TargetSyncInterval passi la rete target viene riscritta
// con una copia completa dei parametri online (hard sync).
//
// Restituisce la loss scalare (mezzo errore quadratico medio sul batch).
// Nessuna guardia contro NaN/overflow: combinazioni divergenti di
// learning rate e gamma sono una limitazione nota.
func (a *Agent) Learn() (float64, bool) {
	if a.buffer.Len() < a.Config.BatchSize {
		return 0, false
	}

	batch, err := a.buffer.Sample(a.Config.BatchSize)
	if err != nil {
		return 0, false
	}
	size := batch.Size()

	states := rowMatrix(batch.States, a.online.InputSize())
	nextStates := rowMatrix(batch.NextStates, a.online.InputSize())

	qOnline, cache := a.online.Forward(states, true)
	qNextOnline, _ := a.online.Forward(nextStates, false)
	qNextTarget, _ := a.target.Forward(nextStates, false)

	grad := mat.NewDense(size, a.online.OutputSize(), nil)
	loss := 0.0
	for i := 0; i < size; i++ {
		target := batch.Rewards[i]
		if !batch.Dones[i] {
			best := argmax(mat.Row(nil, i, qNextOnline))
			target += a.Config.Gamma * qNextTarget.At(i, best)
		}
		residual := qOnline.At(i, batch.Actions[i]) - target
		loss += residual * residual

		// Il gradiente fluisce solo dalla colonna dell'azione eseguita
		grad.Set(i, batch.Actions[i], residual/float64(size))
	}
	loss /= 2 * float64(size)

	a.online.Backward(grad, cache, a.Config.LearningRate)

	a.LearnSteps++
	if a.LearnSteps%a.Config.TargetSyncInterval == 0 {
		a.SyncTarget()
	}
	return loss, true
}

// DecayEpsilon applica il decadimento moltiplicativo a epsilon,
// rispettando il minimo configurato. Monotono non crescente.
func (a *Agent) DecayEpsilon() {
	a.Epsilon *= a.Config.EpsilonDecay
	if a.Epsilon < a.Config.EpsilonMin {
		a.Epsilon = a.Config.EpsilonMin
	}
}

// SyncTarget sovrascrive integralmente la rete target con una copia
// indipendente dei parametri della rete online.
func (a *Agent) SyncTarget() {
	a.target = a.online.Copy()
}

// argmax restituisce il primo indice che raggiunge il valore massimo.
func argmax(values []float64) int {
	best := 0
	for i, v := range values {
		if v > values[best] {
			best = i
		}
	}
	return best
}

// rowMatrix impila i vettori di stato come righe di una matrice densa.
func rowMatrix(rows [][]float64, cols int) *mat.Dense {
	m := mat.NewDense(len(rows), cols, nil)
	for i, r := range rows {
		m.SetRow(i, r)
	}
	return m
}
