package main

import (
	"fmt"

	"github.com/Nomarcus/Snake-ML/game"
	"github.com/Nomarcus/Snake-ML/qlearning"
)

// EvalReport riassume la distribuzione dei reward totali per episodio di
// una valutazione greedy.
type EvalReport struct {
	Episodes int
	Mean     float64
	Max      float64
	Min      float64
	Rewards  []float64
}

// Evaluate esegue episodi puramente greedy (nessuna esplorazione) e
// riporta media, massimo e minimo del reward totale per episodio. Non
// modifica né i parametri dell'agente né il suo buffer di replay.
func Evaluate(agent *qlearning.Agent, g *game.Game, episodes, maxSteps int) (*EvalReport, error) {
	report := &EvalReport{
		Episodes: episodes,
		Rewards:  make([]float64, 0, episodes),
	}

	for episode := 0; episode < episodes; episode++ {
		state := g.Reset()
		totalReward := 0.0
		done := false

		for step := 0; step < maxSteps && !done; step++ {
			action := agent.SelectAction(state, true)
			next, reward, terminal, _, err := g.Step(action)
			if err != nil {
				return nil, fmt.Errorf("environment step failed: %v", err)
			}
			state = next
			totalReward += reward
			done = terminal
		}
		report.Rewards = append(report.Rewards, totalReward)
	}

	report.Mean = mean(report.Rewards)
	if len(report.Rewards) > 0 {
		report.Max = report.Rewards[0]
		report.Min = report.Rewards[0]
	}
	for _, r := range report.Rewards {
		if r > report.Max {
			report.Max = r
		}
		if r < report.Min {
			report.Min = r
		}
	}
	return report, nil
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total / float64(len(values))
}
