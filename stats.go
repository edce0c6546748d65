package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/Nomarcus/Snake-ML/qlearning"
)

const StatsFile = qlearning.DataDir + "/training_stats.json"

// EpisodeRecord rappresenta i dati di un singolo episodio di training.
type EpisodeRecord struct {
	Episode int     `json:"episode"`
	Reward  float64 `json:"reward"`
	Steps   int     `json:"steps"`
	Fruits  int     `json:"fruits"`
	Epsilon float64 `json:"epsilon"`
	Loss    float64 `json:"loss"` // ultima loss dell'episodio, 0 se nessun update
}

// TrainingStats raccoglie i record degli episodi di una run di training.
// Il mutex protegge le letture del renderer mentre il loop scrive.
type TrainingStats struct {
	RunID     string          `json:"runId"`
	StartTime time.Time       `json:"startTime"`
	Episodes  []EpisodeRecord `json:"episodes"`
	mutex     sync.RWMutex
}

// NewTrainingStats crea le statistiche per una nuova run.
func NewTrainingStats() *TrainingStats {
	return &TrainingStats{
		RunID:     uuid.New().String(),
		StartTime: time.Now(),
		Episodes:  make([]EpisodeRecord, 0),
	}
}

// AddEpisode registra un episodio concluso.
func (s *TrainingStats) AddEpisode(rec EpisodeRecord) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.Episodes = append(s.Episodes, rec)
}

// EpisodesPlayed restituisce il numero di episodi registrati.
func (s *TrainingStats) EpisodesPlayed() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.Episodes)
}

// AverageReward calcola il reward medio per episodio.
func (s *TrainingStats) AverageReward() float64 {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if len(s.Episodes) == 0 {
		return 0
	}
	total := 0.0
	for _, e := range s.Episodes {
		total += e.Reward
	}
	return total / float64(len(s.Episodes))
}

// BestReward restituisce il reward massimo registrato.
func (s *TrainingStats) BestReward() float64 {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if len(s.Episodes) == 0 {
		return 0
	}
	best := s.Episodes[0].Reward
	for _, e := range s.Episodes {
		if e.Reward > best {
			best = e.Reward
		}
	}
	return best
}

// SaveToFile salva le statistiche su file in formato JSON.
func (s *TrainingStats) SaveToFile(path string) error {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create stats directory: %v", err)
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal stats: %v", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write stats file: %v", err)
	}
	return nil
}

// PlotRewards disegna la curva dei reward per episodio e la salva come
// PNG nel percorso indicato.
func (s *TrainingStats) PlotRewards(path string) error {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	p := plot.New()
	p.Title.Text = "Reward per episodio"
	p.X.Label.Text = "Episodio"
	p.Y.Label.Text = "Reward totale"

	points := make(plotter.XYs, len(s.Episodes))
	for i, e := range s.Episodes {
		points[i] = plotter.XY{X: float64(e.Episode), Y: e.Reward}
	}
	line, err := plotter.NewLine(points)
	if err != nil {
		return fmt.Errorf("failed to build reward line: %v", err)
	}
	line.Color = plotutil.Color(0)
	p.Add(line)
	p.Legend.Add("reward", line)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create plot directory: %v", err)
	}
	if err := p.Save(8*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save reward plot: %v", err)
	}
	return nil
}
