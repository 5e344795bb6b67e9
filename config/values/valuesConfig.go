package values

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration parses yaml values like "500ms" or "1m".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("parsing duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

// SyncValues are the run-level tunables of the reconciliation engine. The
// core never reads these from the process environment; they are decoded here
// and passed in explicitly.
type SyncValues struct {
	MaxBatchSize           int      `yaml:"max_batch_size"`
	RequestIntervalFloor   Duration `yaml:"request_interval_floor"`
	RetryAttempts          int      `yaml:"retry_attempts"`
	RetryBackoffBase       Duration `yaml:"retry_backoff_base"`
	RetryBackoffMultiplier float64  `yaml:"retry_backoff_multiplier"`
	IncludeRemovals        bool     `yaml:"include_removals"`
	PricePrecision         int      `yaml:"price_precision"`
	MissingSKUPolicy       string   `yaml:"missing_sku_policy"`
}
