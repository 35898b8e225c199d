// Package config loads analysis defaults from the environment.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"goplsc/domain/plsc"
)

// Load builds analysis options from PLSC_* environment variables, starting
// from DefaultOptions. A .env file in the working directory is honored when
// present. Invalid values fail validation rather than being silently clamped.
func Load() (plsc.Options, error) {
	// Missing .env is fine; the environment may be set directly
	_ = godotenv.Load()

	o := plsc.DefaultOptions()

	o.DesignMode = plsc.DesignMode(getEnvOrDefault("PLSC_DESIGN_MODE", string(o.DesignMode)))
	o.ImagingNorm = plsc.NormalizationMode(getEnvIntOrDefault("PLSC_IMAGING_NORM", int(o.ImagingNorm)))
	o.BehaviorNorm = plsc.NormalizationMode(getEnvIntOrDefault("PLSC_BEHAVIOR_NORM", int(o.BehaviorNorm)))

	o.GroupedPLS = getEnvBoolOrDefault("PLSC_GROUPED_PLS", o.GroupedPLS)
	o.GroupedPermutation = getEnvBoolOrDefault("PLSC_GROUPED_PERMUTATION", o.GroupedPermutation)
	o.GroupedBootstrap = getEnvBoolOrDefault("PLSC_GROUPED_BOOTSTRAP", o.GroupedBootstrap)

	o.NumPermutations = getEnvIntOrDefault("PLSC_NUM_PERMUTATIONS", o.NumPermutations)
	o.NumBootstraps = getEnvIntOrDefault("PLSC_NUM_BOOTSTRAPS", o.NumBootstraps)
	o.ProcrustesMode = plsc.ProcrustesMode(getEnvIntOrDefault("PLSC_PROCRUSTES_MODE", int(o.ProcrustesMode)))
	o.SaveBootstrapSamples = getEnvBoolOrDefault("PLSC_SAVE_BOOTSTRAP_SAMPLES", o.SaveBootstrapSamples)

	o.Alpha = getEnvFloatOrDefault("PLSC_ALPHA", o.Alpha)
	o.Seed = int64(getEnvIntOrDefault("PLSC_SEED", int(o.Seed)))
	o.Workers = getEnvIntOrDefault("PLSC_WORKERS", o.Workers)

	if err := o.Validate(); err != nil {
		return plsc.Options{}, err
	}
	return o, nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
