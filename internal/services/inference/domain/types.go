// Package domain defines scoring results, request states and the inference ports
package domain

import (
	"context"

	"predictkit/internal/core/estimator"
	"predictkit/internal/core/table"
	artifacts "predictkit/internal/services/artifacts/domain"
)

// State is where a scoring request ended up
type State string

// Request states. A request moves forward one step at a time; any validation failure ends it
// in StateRejected
const (
	StateReceived  State = "RECEIVED"
	StateValidated State = "VALIDATED"
	StateScored    State = "SCORED"
	StateRelabeled State = "RELABELED"
	StateDelivered State = "DELIVERED"
	StateRejected  State = "REJECTED"
)

// Terminal reports whether no further transition is possible
func (s State) Terminal() bool { return s == StateDelivered || s == StateRejected }

// Result is a fully scored batch: every input column plus the prediction column
type Result struct {
	Task   string         `json:"task"`
	Model  estimator.Kind `json:"model"`
	Column string         `json:"column"`
	Table  *table.Table   `json:"-"`
	Rows   int            `json:"rows"`
	Counts map[string]int `json:"counts"`
	State  State          `json:"state"`
}

// Preview returns the first n scored rows; n <= 0 means all
func (r Result) Preview(n int) *table.Table {
	if r.Table == nil {
		return nil
	}
	if n <= 0 {
		return r.Table
	}
	return r.Table.Head(n)
}

// Filename is the download name for the scored batch
func (r Result) Filename() string { return r.Task + "_predictions.csv" }

// ScorerPort scores batches for one (task, model)
type ScorerPort interface {
	Key() artifacts.Key
	Score(ctx context.Context, t *table.Table) (Result, error)
}

// RegistryPort hands out one scorer per (task, model)
type RegistryPort interface {
	Scorer(ctx context.Context, task, model string) (ScorerPort, error)
	Models(ctx context.Context, task string) ([]artifacts.Ref, error)
}
