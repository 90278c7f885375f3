package models

import (
	"fmt"
)

type ModelConfig struct {
	Algorithm string
	K         int
	Distance  string
}

func CreateModel(config ModelConfig) (Model, error) {
	switch config.Algorithm {
	case "knn":
		if config.K <= 0 {
			return nil, fmt.Errorf("n_neighbors must be positive, got %d", config.K)
		}
		if config.Distance == "" {
			config.Distance = "euclidean"
		}
		return NewKNN(config.K, config.Distance), nil

	default:
		return nil, fmt.Errorf("unknown algorithm: %s", config.Algorithm)
	}
}

// KNNFactory returns a Factory producing KNN models with the given distance.
func KNNFactory(distance string) Factory {
	return func(neighbors int) (Model, error) {
		return CreateModel(ModelConfig{
			Algorithm: "knn",
			K:         neighbors,
			Distance:  distance,
		})
	}
}
