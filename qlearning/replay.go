package qlearning

import (
	"fmt"

	"golang.org/x/exp/rand"
)

// Transition rappresenta un singolo step nell'ambiente. Una volta
// inserita nel buffer non viene più modificata.
type Transition struct {
	State     []float64
	Action    int
	Reward    float64
	NextState []float64
	Done      bool
}

// Batch è un campione di transizioni rimodellato in array paralleli
// allineati per indice.
type Batch struct {
	States     [][]float64
	Actions    []int
	Rewards    []float64
	NextStates [][]float64
	Dones      []bool
}

// Size restituisce il numero di campioni nel batch.
func (b *Batch) Size() int { return len(b.Actions) }

// ReplayBuffer memorizza le esperienze per il training in un ring buffer
// a capacità fissa: raggiunta la capacità, la transizione più vecchia
// viene espulsa per far posto alla nuova.
type ReplayBuffer struct {
	buffer   []Transition
	maxSize  int
	position int
	size     int
	rng      *rand.Rand
}

// NewReplayBuffer crea un nuovo buffer di replay con capacità maxSize.
// Il generatore casuale è iniettato per rendere il campionamento
// riproducibile nei test.
func NewReplayBuffer(maxSize int, rng *rand.Rand) *ReplayBuffer {
	return &ReplayBuffer{
		buffer:  make([]Transition, maxSize),
		maxSize: maxSize,
		rng:     rng,
	}
}

// Len restituisce il numero di transizioni attualmente memorizzate.
func (b *ReplayBuffer) Len() int { return b.size }

// Cap restituisce la capacità del buffer.
func (b *ReplayBuffer) Cap() int { return b.maxSize }

// Add aggiunge una transizione al buffer, O(1) ammortizzato.
func (b *ReplayBuffer) Add(t Transition) {
	b.buffer[b.position] = t
	b.position = (b.position + 1) % b.maxSize
	if b.size < b.maxSize {
		b.size++
	}
}

// Sample restituisce un batch di batchSize transizioni distinte estratte
// uniformemente senza ripetizione. Chiedere più transizioni di quante ne
// contenga il buffer è una violazione di precondizione: il chiamante
// deve controllare Len() prima di campionare.
func (b *ReplayBuffer) Sample(batchSize int) (*Batch, error) {
	if batchSize > b.size {
		return nil, fmt.Errorf("sample size %d exceeds buffer size %d", batchSize, b.size)
	}

	batch := &Batch{
		States:     make([][]float64, batchSize),
		Actions:    make([]int, batchSize),
		Rewards:    make([]float64, batchSize),
		NextStates: make([][]float64, batchSize),
		Dones:      make([]bool, batchSize),
	}
	for i, idx := range b.rng.Perm(b.size)[:batchSize] {
		t := b.buffer[idx]
		batch.States[i] = t.State
		batch.Actions[i] = t.Action
		batch.Rewards[i] = t.Reward
		batch.NextStates[i] = t.NextState
		batch.Dones[i] = t.Done
	}
	return batch, nil
}
