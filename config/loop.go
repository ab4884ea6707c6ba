package config

import (
	"time"
)

type HistoryConfig struct {
	MaxMessages int `mapstructure:"max_messages"`
	MaxChars    int `mapstructure:"max_chars"`
}

type LoopConfig struct {
	MaxRounds   int           `mapstructure:"max_rounds"`
	Temperature float64       `mapstructure:"temperature"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Stop        []string      `mapstructure:"stop"`
	CallTimeout time.Duration `mapstructure:"call_timeout"`

	// LiveHistory bounds the message sequence of a single turn, DurableHistory
	// the conversation kept between turns.
	LiveHistory    HistoryConfig `mapstructure:"live_history"`
	DurableHistory HistoryConfig `mapstructure:"durable_history"`

	// MemoryBudget is the token budget handed to the memory store when
	// rendering context into the system prompt. Zero disables memory context.
	MemoryBudget int `mapstructure:"memory_budget"`
}

var (
	DefaultStop = []string{"RESULT:", "Result:", "Observation:", "\nUser:", "\nYou:", "\nuser:"}
	WorkerStop  = []string{"Observation:", "# Observation", "## Observation", "**Observation", "\nObservation\n"}
)

func NewSingleLoopConfig() *LoopConfig {
	return &LoopConfig{
		MaxRounds:      4,
		Temperature:    0.4,
		MaxTokens:      400,
		Stop:           append([]string(nil), DefaultStop...),
		CallTimeout:    300 * time.Second,
		LiveHistory:    HistoryConfig{MaxMessages: 4, MaxChars: 400},
		DurableHistory: HistoryConfig{MaxMessages: 4, MaxChars: 400},
		MemoryBudget:   200,
	}
}

func NewCoordinatorLoopConfig() *LoopConfig {
	return &LoopConfig{
		MaxRounds:      12,
		Temperature:    0.6,
		MaxTokens:      1536,
		Stop:           append(append([]string(nil), WorkerStop...), "Worker Result:"),
		CallTimeout:    300 * time.Second,
		DurableHistory: HistoryConfig{MaxMessages: 16, MaxChars: 600},
		MemoryBudget:   300,
	}
}

func NewWorkerLoopConfig() *LoopConfig {
	return &LoopConfig{
		MaxRounds:   5,
		Temperature: 0.5,
		MaxTokens:   1024,
		Stop:        append([]string(nil), WorkerStop...),
		CallTimeout: 120 * time.Second,
	}
}
