package qlearning

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

const (
	// DataDir è la directory di default per i file persistiti.
	DataDir = "data"
	// ModelFile è il percorso di default del modello salvato.
	ModelFile = DataDir + "/dqn_model.gob"
)

// ModelArchive è il formato persistito del modello: topologia come lista
// ordinata di dimensioni, iperparametri scalari e, per ogni strato,
// matrice dei pesi e vettore dei bias in forma piatta.
type ModelArchive struct {
	Sizes []int

	LearningRate       float64
	Gamma              float64
	Epsilon            float64
	EpsilonMin         float64
	EpsilonDecay       float64
	BatchSize          int
	TargetSyncInterval int
	BufferSize         int
	LearnSteps         int

	Layers []LayerArchive
}

// LayerArchive contiene i parametri di un singolo strato.
type LayerArchive struct {
	In      int
	Out     int
	Weights []float64
	Bias    []float64
}

// Archive costruisce l'archivio persistibile dall'agente corrente.
func (a *Agent) Archive() *ModelArchive {
	arch := &ModelArchive{
		Sizes:              append([]int(nil), a.online.Sizes...),
		LearningRate:       a.Config.LearningRate,
		Gamma:              a.Config.Gamma,
		Epsilon:            a.Epsilon,
		EpsilonMin:         a.Config.EpsilonMin,
		EpsilonDecay:       a.Config.EpsilonDecay,
		BatchSize:          a.Config.BatchSize,
		TargetSyncInterval: a.Config.TargetSyncInterval,
		BufferSize:         a.Config.BufferSize,
		LearnSteps:         a.LearnSteps,
		Layers:             make([]LayerArchive, len(a.online.Layers)),
	}
	for l, layer := range a.online.Layers {
		in, out := layer.W.Dims()
		arch.Layers[l] = LayerArchive{
			In:      in,
			Out:     out,
			Weights: append([]float64(nil), layer.W.RawMatrix().Data...),
			Bias:    append([]float64(nil), layer.B.RawVector().Data...),
		}
	}
	return arch
}

// SaveModel salva l'agente su file in formato gob.
func (a *Agent) SaveModel(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create model directory: %v", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create model file: %v", err)
	}
	defer f.Close()

	if err := gob.NewEncoder(f).Encode(a.Archive()); err != nil {
		return fmt.Errorf("failed to encode model: %v", err)
	}
	return nil
}

// LoadAgent ricostruisce un agente funzionante da un modello salvato.
// Un archivio con topologia internamente incoerente (numero o forma
// degli strati che non combacia con le dimensioni dichiarate) è un
// errore fatale di caricamento, senza recupero parziale. La rete target
// viene sincronizzata immediatamente dalla rete online caricata.
func LoadAgent(path string, rng *rand.Rand) (*Agent, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open model file: %v", err)
	}
	defer f.Close()

	var arch ModelArchive
	if err := gob.NewDecoder(f).Decode(&arch); err != nil {
		return nil, fmt.Errorf("failed to decode model: %v", err)
	}
	return restoreAgent(&arch, rng)
}

func restoreAgent(arch *ModelArchive, rng *rand.Rand) (*Agent, error) {
	if len(arch.Sizes) < 2 {
		return nil, fmt.Errorf("corrupt model: topology needs at least 2 layer sizes, got %d", len(arch.Sizes))
	}
	if len(arch.Layers) != len(arch.Sizes)-1 {
		return nil, fmt.Errorf("corrupt model: %d layer sizes but %d stored layers", len(arch.Sizes), len(arch.Layers))
	}

	online := &Network{
		Sizes:  append([]int(nil), arch.Sizes...),
		Layers: make([]Layer, len(arch.Layers)),
	}
	for l, stored := range arch.Layers {
		in, out := arch.Sizes[l], arch.Sizes[l+1]
		if stored.In != in || stored.Out != out {
			return nil, fmt.Errorf("corrupt model: layer %d has shape %dx%d, topology says %dx%d",
				l, stored.In, stored.Out, in, out)
		}
		if len(stored.Weights) != in*out || len(stored.Bias) != out {
			return nil, fmt.Errorf("corrupt model: layer %d stores %d weights and %d biases for shape %dx%d",
				l, len(stored.Weights), len(stored.Bias), in, out)
		}
		online.Layers[l] = Layer{
			W: mat.NewDense(in, out, append([]float64(nil), stored.Weights...)),
			B: mat.NewVecDense(out, append([]float64(nil), stored.Bias...)),
		}
	}

	cfg := Config{
		LearningRate:       arch.LearningRate,
		Gamma:              arch.Gamma,
		Epsilon:            arch.Epsilon,
		EpsilonMin:         arch.EpsilonMin,
		EpsilonDecay:       arch.EpsilonDecay,
		BatchSize:          arch.BatchSize,
		TargetSyncInterval: arch.TargetSyncInterval,
		BufferSize:         arch.BufferSize,
		HiddenSizes:        append([]int(nil), arch.Sizes[1:len(arch.Sizes)-1]...),
	}

	return &Agent{
		online:     online,
		target:     online.Copy(),
		buffer:     NewReplayBuffer(cfg.BufferSize, rng),
		Config:     cfg,
		Epsilon:    arch.Epsilon,
		LearnSteps: arch.LearnSteps,
		rng:        rng,
	}, nil
}
