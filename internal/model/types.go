package model

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// RunRecord describes one recorded evolution run.
type RunRecord struct {
	VersionedRecord
	ID          string  `json:"id"`
	Label       string  `json:"label,omitempty"`
	GenomeLen   int     `json:"genome_len"`
	PopSize     int     `json:"pop_size"`
	Islands     int     `json:"islands,omitempty"`
	Generations int     `json:"generations"`
	Seed        int64   `json:"seed"`
	BestFitness float64 `json:"best_fitness"`
	CreatedAt   string  `json:"created_at"`
}

// GenerationStats summarizes one generation of one population.
type GenerationStats struct {
	Generation   int     `json:"generation"`
	Island       int     `json:"island,omitempty"`
	BestFitness  float64 `json:"best_fitness"`
	MeanFitness  float64 `json:"mean_fitness"`
	FitnessVar   float64 `json:"fitness_variance"`
	Evaluations  int     `json:"evaluations"`
	ScopingScale float64 `json:"scoping_scale"`
}
