package main

import (
	"fmt"
	"os"

	"golang.org/x/exp/rand"

	"github.com/Nomarcus/Snake-ML/game"
	"github.com/Nomarcus/Snake-ML/qlearning"
	"github.com/Nomarcus/Snake-ML/ui"
)

// TrainConfig raccoglie i parametri del loop di training.
type TrainConfig struct {
	Episodes  int
	MaxSteps  int // budget di passi per episodio
	GridSize  int
	Seed      uint64
	ModelPath string
	SaveEvery int
	PlotPath  string // vuoto: nessun grafico
	Watch     bool   // rendering live, degrada a headless se non disponibile
}

// Train esegue l'addestramento dell'agente: per ogni episodio reset del
// gioco, poi selezione azione, passo dell'ambiente, memorizzazione della
// transizione, passo di apprendimento e decadimento di epsilon fino al
// termine o all'esaurimento del budget di passi.
func Train(cfg TrainConfig) error {
	rng := rand.New(rand.NewSource(cfg.Seed))
	g := game.NewGame(cfg.GridSize, rng)

	agent, err := loadOrNewAgent(cfg.ModelPath, g.StateSize(), rng)
	if err != nil {
		return err
	}

	stats := NewTrainingStats()

	var renderer *ui.Renderer
	if cfg.Watch {
		renderer = ui.NewRenderer("Snake-ML - Training", cfg.GridSize)
		if !renderer.Available() {
			// Il rendering non deve mai interrompere il training
			fmt.Println("Display not available, continuing headless")
			renderer = nil
		} else {
			defer func() {
				if renderer != nil {
					renderer.Close()
				}
			}()
		}
	}

	for episode := 1; episode <= cfg.Episodes; episode++ {
		state := g.Reset()
		totalReward := 0.0
		lastLoss := 0.0
		steps := 0
		done := false

		for steps = 0; steps < cfg.MaxSteps && !done; steps++ {
			action := agent.SelectAction(state, false)
			next, reward, terminal, _, err := g.Step(action)
			if err != nil {
				return fmt.Errorf("environment step failed: %v", err)
			}

			agent.Push(qlearning.Transition{
				State:     state,
				Action:    action,
				Reward:    reward,
				NextState: next,
				Done:      terminal,
			})
			if loss, ok := agent.Learn(); ok {
				lastLoss = loss
			}
			agent.DecayEpsilon()

			state = next
			totalReward += reward
			done = terminal

			if renderer != nil {
				if renderer.ShouldClose() {
					renderer.Close()
					renderer = nil
					fmt.Println("Window closed, continuing headless")
				} else {
					renderer.Draw(g.Snapshot(), ui.HUD{
						Episode:    episode,
						Episodes:   cfg.Episodes,
						Epsilon:    agent.Epsilon,
						Reward:     totalReward,
						Loss:       lastLoss,
						BestReward: stats.BestReward(),
					})
				}
			}
		}

		snap := g.Snapshot()
		stats.AddEpisode(EpisodeRecord{
			Episode: episode,
			Reward:  totalReward,
			Steps:   steps,
			Fruits:  snap.Fruits,
			Epsilon: agent.Epsilon,
			Loss:    lastLoss,
		})

		if episode%50 == 0 {
			fmt.Printf("Episode %d/%d reward=%.1f avg=%.1f best=%.1f epsilon=%.3f loss=%.5f\n",
				episode, cfg.Episodes, totalReward, stats.AverageReward(),
				stats.BestReward(), agent.Epsilon, lastLoss)
		}
		if cfg.SaveEvery > 0 && episode%cfg.SaveEvery == 0 {
			if err := agent.SaveModel(cfg.ModelPath); err != nil {
				fmt.Printf("Error saving model at episode %d: %v\n", episode, err)
			}
		}
	}

	if err := agent.SaveModel(cfg.ModelPath); err != nil {
		return fmt.Errorf("failed to save final model: %v", err)
	}
	if err := stats.SaveToFile(StatsFile); err != nil {
		fmt.Printf("Error saving stats: %v\n", err)
	}
	if cfg.PlotPath != "" {
		if err := stats.PlotRewards(cfg.PlotPath); err != nil {
			fmt.Printf("Error plotting rewards: %v\n", err)
		}
	}

	fmt.Printf("Training finished: %d episodes, avg reward %.1f, best %.1f\n",
		stats.EpisodesPlayed(), stats.AverageReward(), stats.BestReward())
	return nil
}

// loadOrNewAgent riprende un modello salvato se esiste, altrimenti crea
// un agente nuovo con la configurazione di default.
func loadOrNewAgent(modelPath string, stateSize int, rng *rand.Rand) (*qlearning.Agent, error) {
	if _, err := os.Stat(modelPath); err == nil {
		agent, err := qlearning.LoadAgent(modelPath, rng)
		if err != nil {
			return nil, fmt.Errorf("failed to load model %s: %v", modelPath, err)
		}
		if agent.Online().InputSize() != stateSize {
			return nil, fmt.Errorf("model %s expects state size %d, environment produces %d",
				modelPath, agent.Online().InputSize(), stateSize)
		}
		fmt.Printf("Resuming from %s (epsilon %.3f, %d learn steps)\n",
			modelPath, agent.Epsilon, agent.LearnSteps)
		return agent, nil
	}
	return qlearning.NewAgent(qlearning.DefaultConfig(), stateSize, game.NumDirections, rng), nil
}
