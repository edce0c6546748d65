package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/exp/rand"

	"github.com/Nomarcus/Snake-ML/game"
	"github.com/Nomarcus/Snake-ML/qlearning"
	"github.com/Nomarcus/Snake-ML/ui"
)

func main() {
	if err := rootCommand().Execute(); err != nil {
		fmt.Println(err)
	}
}

func rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "snake-ml",
		Short: "Addestra e valuta un agente Double-DQN che gioca a Snake",
	}
	root.AddCommand(trainCommand())
	root.AddCommand(playCommand())
	root.AddCommand(evalCommand())
	return root
}

func trainCommand() *cobra.Command {
	cfg := TrainConfig{}
	var seed int64

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Esegue il loop di training",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.Seed = resolveSeed(seed)
			return Train(cfg)
		},
	}
	cmd.Flags().IntVarP(&cfg.Episodes, "episodes", "e", 2000, "Number of training episodes")
	cmd.Flags().IntVar(&cfg.MaxSteps, "max-steps", 1000, "Step budget per episode")
	cmd.Flags().IntVar(&cfg.GridSize, "grid", game.DefaultGridSize, "Grid side length")
	cmd.Flags().Int64Var(&seed, "seed", 0, "Random seed (0 = time-based)")
	cmd.Flags().StringVar(&cfg.ModelPath, "model", qlearning.ModelFile, "Model file to save/resume")
	cmd.Flags().IntVar(&cfg.SaveEvery, "save-every", 500, "Save the model every N episodes (0 = only at the end)")
	cmd.Flags().StringVar(&cfg.PlotPath, "plot", "", "Write a reward curve PNG to this path")
	cmd.Flags().BoolVar(&cfg.Watch, "watch", false, "Render the game while training")
	return cmd
}

func playCommand() *cobra.Command {
	var (
		modelPath string
		gridSize  int
		episodes  int
		maxSteps  int
		delay     int
		seed      int64
	)

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Mostra un modello addestrato che gioca in modalità greedy",
		RunE: func(cmd *cobra.Command, args []string) error {
			rng := rand.New(rand.NewSource(resolveSeed(seed)))
			agent, g, err := loadAgentForGrid(modelPath, gridSize, rng)
			if err != nil {
				return err
			}

			renderer := ui.NewRenderer("Snake-ML", gridSize)
			if !renderer.Available() {
				fmt.Println("Display not available, printing episode results instead")
				report, err := Evaluate(agent, g, episodes, maxSteps)
				if err != nil {
					return err
				}
				printReport(report)
				return nil
			}
			defer renderer.Close()

			interval := time.Duration(delay) * time.Millisecond
			for episode := 1; episode <= episodes; episode++ {
				state := g.Reset()
				totalReward := 0.0
				done := false

				for step := 0; step < maxSteps && !done; step++ {
					if renderer.ShouldClose() {
						return nil
					}
					action := agent.SelectAction(state, true)
					next, reward, terminal, _, err := g.Step(action)
					if err != nil {
						return fmt.Errorf("environment step failed: %v", err)
					}
					state = next
					totalReward += reward
					done = terminal

					renderer.Draw(g.Snapshot(), ui.HUD{
						Episode:  episode,
						Episodes: episodes,
						Reward:   totalReward,
					})
					time.Sleep(interval)
				}
				fmt.Printf("Episode %d/%d reward=%.1f\n", episode, episodes, totalReward)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&modelPath, "model", qlearning.ModelFile, "Model file to load")
	cmd.Flags().IntVar(&gridSize, "grid", game.DefaultGridSize, "Grid side length")
	cmd.Flags().IntVarP(&episodes, "episodes", "e", 5, "Number of episodes to play")
	cmd.Flags().IntVar(&maxSteps, "max-steps", 1000, "Step budget per episode")
	cmd.Flags().IntVar(&delay, "delay", 80, "Delay between frames in milliseconds")
	cmd.Flags().Int64Var(&seed, "seed", 0, "Random seed (0 = time-based)")
	return cmd
}

func evalCommand() *cobra.Command {
	var (
		modelPath string
		gridSize  int
		episodes  int
		maxSteps  int
		seed      int64
	)

	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Valuta un modello addestrato su episodi greedy",
		RunE: func(cmd *cobra.Command, args []string) error {
			rng := rand.New(rand.NewSource(resolveSeed(seed)))
			agent, g, err := loadAgentForGrid(modelPath, gridSize, rng)
			if err != nil {
				return err
			}
			report, err := Evaluate(agent, g, episodes, maxSteps)
			if err != nil {
				return err
			}
			printReport(report)
			return nil
		},
	}
	cmd.Flags().StringVar(&modelPath, "model", qlearning.ModelFile, "Model file to load")
	cmd.Flags().IntVar(&gridSize, "grid", game.DefaultGridSize, "Grid side length")
	cmd.Flags().IntVarP(&episodes, "episodes", "e", 100, "Number of evaluation episodes")
	cmd.Flags().IntVar(&maxSteps, "max-steps", 1000, "Step budget per episode")
	cmd.Flags().Int64Var(&seed, "seed", 0, "Random seed (0 = time-based)")
	return cmd
}

// loadAgentForGrid carica un modello salvato e crea il gioco associato,
// verificando che la topologia del modello combaci con la griglia.
func loadAgentForGrid(modelPath string, gridSize int, rng *rand.Rand) (*qlearning.Agent, *game.Game, error) {
	agent, err := qlearning.LoadAgent(modelPath, rng)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load model %s: %v", modelPath, err)
	}
	g := game.NewGame(gridSize, rng)
	if agent.Online().InputSize() != g.StateSize() {
		return nil, nil, fmt.Errorf("model %s expects state size %d, a %dx%d grid produces %d",
			modelPath, agent.Online().InputSize(), gridSize, gridSize, g.StateSize())
	}
	return agent, g, nil
}

func printReport(report *EvalReport) {
	fmt.Printf("Evaluation over %d episodes: mean=%.1f max=%.1f min=%.1f\n",
		report.Episodes, report.Mean, report.Max, report.Min)
}

func resolveSeed(seed int64) uint64 {
	if seed == 0 {
		return uint64(time.Now().UnixNano())
	}
	return uint64(seed)
}
