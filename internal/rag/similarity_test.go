package rag

import (
	"math"
	"testing"
)

func TestCosineSimilarityIdentical(t *testing.T) {
	v := []float32{0.5, 0.2, 0.9}
	sim, err := CosineSimilarity(v, v)
	if err != nil {
		t.Fatalf("CosineSimilarity returned error: %v", err)
	}
	if math.Abs(float64(sim)-1) > 1e-6 {
		t.Fatalf("got %f, want 1.0", sim)
	}
}

func TestCosineSimilarityOrthogonal(t *testing.T) {
	sim, err := CosineSimilarity([]float32{1, 0}, []float32{0, 1})
	if err != nil {
		t.Fatalf("CosineSimilarity returned error: %v", err)
	}
	if math.Abs(float64(sim)) > 1e-6 {
		t.Fatalf("got %f, want 0.0", sim)
	}
}

func TestCosineSimilarityMismatchedLengths(t *testing.T) {
	if _, err := CosineSimilarity([]float32{1, 2}, []float32{1, 2, 3}); err == nil {
		t.Fatal("expected error for mismatched vector lengths")
	}
}

func TestCosineSimilarityZeroVector(t *testing.T) {
	sim, err := CosineSimilarity([]float32{0, 0}, []float32{1, 2})
	if err != nil {
		t.Fatalf("CosineSimilarity returned error: %v", err)
	}
	if sim != 0 {
		t.Fatalf("got %f for zero magnitude vector, want 0", sim)
	}
}

func TestCosineSimilarityEmptyVector(t *testing.T) {
	if _, err := CosineSimilarity(nil, []float32{1}); err == nil {
		t.Fatal("expected error for empty vector")
	}
}
