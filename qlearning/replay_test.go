package qlearning

import (
	"testing"

	"golang.org/x/exp/rand"
)

func transitionWithID(id int) Transition {
	return Transition{
		State:     []float64{float64(id)},
		Action:    id,
		Reward:    float64(id),
		NextState: []float64{float64(id + 1)},
	}
}

func TestReplayBufferEvictsOldest(t *testing.T) {
	const capacity = 10
	const extra = 3
	b := NewReplayBuffer(capacity, rand.New(rand.NewSource(1)))

	for i := 0; i < capacity+extra; i++ {
		b.Add(transitionWithID(i))
	}
	if b.Len() != capacity {
		t.Fatalf("Len() = %d, want %d", b.Len(), capacity)
	}

	batch, err := b.Sample(capacity)
	if err != nil {
		t.Fatalf("Sample(%d) returned error: %v", capacity, err)
	}
	for _, action := range batch.Actions {
		if action < extra {
			t.Errorf("transition %d still in buffer after eviction", action)
		}
	}
}

func TestSampleWithoutReplacement(t *testing.T) {
	const size = 20
	b := NewReplayBuffer(size, rand.New(rand.NewSource(2)))
	for i := 0; i < size; i++ {
		b.Add(transitionWithID(i))
	}

	batch, err := b.Sample(size)
	if err != nil {
		t.Fatalf("Sample returned error: %v", err)
	}
	seen := make(map[int]bool)
	for _, action := range batch.Actions {
		if seen[action] {
			t.Errorf("transition %d sampled twice", action)
		}
		seen[action] = true
	}
	if len(seen) != size {
		t.Errorf("sampled %d distinct transitions, want %d", len(seen), size)
	}
}

func TestSampleParallelArraysAligned(t *testing.T) {
	b := NewReplayBuffer(8, rand.New(rand.NewSource(3)))
	for i := 0; i < 8; i++ {
		b.Add(transitionWithID(i))
	}

	batch, err := b.Sample(4)
	if err != nil {
		t.Fatalf("Sample returned error: %v", err)
	}
	if batch.Size() != 4 {
		t.Fatalf("Size() = %d, want 4", batch.Size())
	}
	for i := 0; i < batch.Size(); i++ {
		id := batch.Actions[i]
		if batch.States[i][0] != float64(id) {
			t.Errorf("sample %d: state %v does not match action %d", i, batch.States[i], id)
		}
		if batch.Rewards[i] != float64(id) {
			t.Errorf("sample %d: reward %v does not match action %d", i, batch.Rewards[i], id)
		}
		if batch.NextStates[i][0] != float64(id+1) {
			t.Errorf("sample %d: next state %v does not match action %d", i, batch.NextStates[i], id)
		}
	}
}

func TestSampleTooLargeFails(t *testing.T) {
	b := NewReplayBuffer(10, rand.New(rand.NewSource(4)))
	for i := 0; i < 5; i++ {
		b.Add(transitionWithID(i))
	}

	if _, err := b.Sample(6); err == nil {
		t.Error("Sample larger than buffer contents did not fail")
	}
}
