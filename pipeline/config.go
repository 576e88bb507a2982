// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package pipeline

import (
	"runtime"
	"time"
)

// Default configuration values for the pipeline phases.
const (
	// DefaultTopK is the number of similar quotes stored per keyword artifact.
	DefaultTopK = 50

	// DefaultBatchSize is the number of quotes embedded and upserted per batch.
	DefaultBatchSize = 1000

	// DefaultReportInterval is how often progress is reported, in items.
	DefaultReportInterval = 100

	// DefaultMaxRetries is the number of attempts for embedder and store calls.
	DefaultMaxRetries = 3

	// DefaultRetryDelay is the base delay between retry attempts.
	DefaultRetryDelay = time.Second

	// DefaultCallTimeout bounds each embedding or vector-store call. The
	// default is sized for a full embedding batch against a local model.
	DefaultCallTimeout = 60 * time.Second
)

// Config holds tunable parameters shared by the Indexer and Materializer.
type Config struct {
	// TopK is the number of nearest quotes written into each keyword artifact.
	TopK int

	// BatchSize is the number of quotes embedded per request during indexing.
	BatchSize int

	// Workers is the worker pool size for concurrent batches and queries.
	// Default is runtime.NumCPU() / 2, with a minimum of 1.
	Workers int

	// ReportInterval controls progress reporting granularity.
	ReportInterval int

	// MaxRetries is the maximum number of attempts for transient failures.
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff between attempts.
	RetryDelay time.Duration

	// CallTimeout is the deadline applied to each individual embedding or
	// vector-store call, so one stuck call fails the attempt instead of
	// stalling the run.
	CallTimeout time.Duration

	// EmbeddingModel is the model identifier recorded in the stats artifact.
	EmbeddingModel string
}

// DefaultConfig returns a Config populated with the default values.
func DefaultConfig() *Config {
	workers := runtime.NumCPU() / 2
	if workers < 1 {
		workers = 1
	}

	return &Config{
		TopK:           DefaultTopK,
		BatchSize:      DefaultBatchSize,
		Workers:        workers,
		ReportInterval: DefaultReportInterval,
		MaxRetries:     DefaultMaxRetries,
		RetryDelay:     DefaultRetryDelay,
		CallTimeout:    DefaultCallTimeout,
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.TopK <= 0 {
		return ErrInvalidTopK
	}
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}
	if c.Workers <= 0 {
		return ErrInvalidWorkers
	}
	if c.MaxRetries <= 0 {
		return ErrInvalidMaxAttempts
	}
	if c.CallTimeout <= 0 {
		return ErrInvalidCallTimeout
	}
	return nil
}
