package storage

import (
	"encoding/json"
	"errors"

	"archipelago/internal/model"
)

const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

var ErrVersionMismatch = errors.New("record version mismatch")

func EncodeRun(run model.RunRecord) ([]byte, error) {
	return json.Marshal(run)
}

func DecodeRun(data []byte) (model.RunRecord, error) {
	var run model.RunRecord
	if err := json.Unmarshal(data, &run); err != nil {
		return model.RunRecord{}, err
	}
	if err := checkVersion(run.VersionedRecord); err != nil {
		return model.RunRecord{}, err
	}
	return run, nil
}

func EncodeFitnessHistory(history []float64) ([]byte, error) {
	return json.Marshal(history)
}

func DecodeFitnessHistory(data []byte) ([]float64, error) {
	var history []float64
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, err
	}
	return history, nil
}

func EncodeGenerationStats(generations []model.GenerationStats) ([]byte, error) {
	return json.Marshal(generations)
}

func DecodeGenerationStats(data []byte) ([]model.GenerationStats, error) {
	var generations []model.GenerationStats
	if err := json.Unmarshal(data, &generations); err != nil {
		return nil, err
	}
	return generations, nil
}

func checkVersion(v model.VersionedRecord) error {
	if v.SchemaVersion != CurrentSchemaVersion || v.CodecVersion != CurrentCodecVersion {
		return ErrVersionMismatch
	}
	return nil
}
