package llm

import (
	"context"
	"math"
	"testing"
)

func TestHashEmbedderDeterministic(t *testing.T) {
	e := NewHashEmbedder(128)

	a, err := e.Embed(context.Background(), "market volatility and risk")
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	b, err := e.Embed(context.Background(), "market volatility and risk")
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("component %d differs between identical inputs", i)
		}
	}
}

func TestHashEmbedderDimAndNorm(t *testing.T) {
	e := NewHashEmbedder(64)

	v, err := e.Embed(context.Background(), "alpha beta gamma delta")
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	if len(v) != 64 {
		t.Fatalf("dim = %d, want 64", len(v))
	}
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if math.Abs(math.Sqrt(sum)-1) > 1e-5 {
		t.Fatalf("norm = %v, want 1", math.Sqrt(sum))
	}
}

func TestHashEmbedderEmptyInput(t *testing.T) {
	e := NewHashEmbedder(16)

	v, err := e.Embed(context.Background(), "")
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	for i, x := range v {
		if x != 0 {
			t.Fatalf("component %d = %v, want 0 for empty input", i, x)
		}
	}
}

func TestHashEmbedderCaseInsensitive(t *testing.T) {
	e := NewHashEmbedder(128)

	a, _ := e.Embed(context.Background(), "Volatility")
	b, _ := e.Embed(context.Background(), "volatility")
	for i := range a {
		if a[i] != b[i] {
			t.Fatal("case must not change the embedding")
		}
	}
}
