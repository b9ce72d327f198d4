package usecase

import (
	"testing"

	"github.com/pricescout/backend/internal/domain"
)

func scored(link, name string, price, relevance float64, priority int) domain.ScoredListing {
	return domain.ScoredListing{
		ExtractedListing: domain.ExtractedListing{
			Link:        link,
			ProductName: name,
			Price:       price,
			Currency:    "USD",
		},
		Relevance:      relevance,
		SourcePriority: priority,
	}
}

func TestNormalizeProductName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"iPhone 16 Pro 128GB - Black", "iphone 16 pro 128gb black"},
		{"iphone 16 pro 128gb black", "iphone 16 pro 128gb black"},
		{"  Sony   WH-1000XM5!!  ", "sony wh 1000xm5"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := normalizeProductName(tt.input); got != tt.want {
				t.Errorf("normalizeProductName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestDedupe(t *testing.T) {
	t.Run("collapses same domain and normalized name", func(t *testing.T) {
		listings := []domain.ScoredListing{
			scored("https://www.shop.example.com/a", "iPhone 16 Pro 128GB - Black", 799.99, 0.9, 0),
			scored("https://shop.example.com/b", "iphone 16 pro 128gb black", 799.99, 0.8, 1),
		}

		result := Dedupe(listings)
		if len(result) != 1 {
			t.Fatalf("len = %d, want 1", len(result))
		}
		// Higher relevance wins
		if result[0].Link != "https://www.shop.example.com/a" {
			t.Errorf("kept %q, want the higher-relevance listing", result[0].Link)
		}
	})

	t.Run("same name on different domains survives", func(t *testing.T) {
		listings := []domain.ScoredListing{
			scored("https://a.example.com/x", "iPhone 16 Pro", 799.99, 0.9, 0),
			scored("https://b.example.org/x", "iPhone 16 Pro", 810.00, 0.9, 1),
		}

		if got := len(Dedupe(listings)); got != 2 {
			t.Errorf("len = %d, want 2", got)
		}
	})

	t.Run("lower price breaks relevance ties", func(t *testing.T) {
		listings := []domain.ScoredListing{
			scored("https://shop.example.com/a", "Widget", 20.00, 0.9, 0),
			scored("https://shop.example.com/b", "Widget", 15.00, 0.9, 1),
		}

		result := Dedupe(listings)
		if len(result) != 1 || result[0].Price != 15.00 {
			t.Errorf("result = %+v, want the cheaper listing", result)
		}
	})

	t.Run("earlier source priority is the final tie-break", func(t *testing.T) {
		listings := []domain.ScoredListing{
			scored("https://shop.example.com/a", "Widget", 20.00, 0.9, 3),
			scored("https://shop.example.com/b", "Widget", 20.00, 0.9, 1),
		}

		result := Dedupe(listings)
		if len(result) != 1 || result[0].SourcePriority != 1 {
			t.Errorf("result = %+v, want source priority 1", result)
		}
	})

	t.Run("winner keeps the original position", func(t *testing.T) {
		listings := []domain.ScoredListing{
			scored("https://first.example.com/x", "Alpha", 10, 0.9, 0),
			scored("https://shop.example.com/a", "Widget", 20, 0.5, 1),
			scored("https://last.example.com/y", "Omega", 30, 0.9, 2),
			scored("https://shop.example.com/b", "Widget", 20, 0.8, 3),
		}

		result := Dedupe(listings)
		if len(result) != 3 {
			t.Fatalf("len = %d, want 3", len(result))
		}
		if result[1].Relevance != 0.8 {
			t.Errorf("position 1 relevance = %v, want the better duplicate (0.8)", result[1].Relevance)
		}
	})

	t.Run("empty and single inputs pass through", func(t *testing.T) {
		if got := Dedupe(nil); len(got) != 0 {
			t.Errorf("Dedupe(nil) = %v", got)
		}
		one := []domain.ScoredListing{scored("https://a.example.com", "X", 1, 1, 0)}
		if got := Dedupe(one); len(got) != 1 {
			t.Errorf("len = %d, want 1", len(got))
		}
	})
}

func TestRegistrableDomain(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"https://www.amazon.co.uk/dp/B0ABC", "amazon.co.uk"},
		{"https://smile.amazon.com/gp/product/1", "amazon.com"},
		{"https://shop.example.com/item", "example.com"},
		{"amazon.com", "amazon.com"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := registrableDomain(tt.input); got != tt.want {
				t.Errorf("registrableDomain(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
