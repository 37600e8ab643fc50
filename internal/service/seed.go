package service

import "bakery-service/internal/models"

func floatPtr(v float64) *float64 { return &v }

// SampleProducts returns the sample brownies used to seed an empty catalog.
// Seeding skips any name that already exists, so it is safe to run twice.
func SampleProducts() []models.Product {
	return []models.Product{
		{
			Name:        "Brownie Tradicional",
			Description: "Brownie clássico, textura fudge. Aproximadamente 80g.",
			Price:       8.9,
			Images:      []string{"https://images.unsplash.com/photo-1551024601-bec78aea704b?auto=format&fit=crop&w=800&q=80"},
			IsAvailable: true,
		},
		{
			Name:        "Brownie com Nozes",
			Description: "Brownie com pedaços crocantes de nozes. 80g.",
			Price:       10.5,
			Images:      []string{"https://images.unsplash.com/photo-1558969763-d92e2d43ba9a?auto=format&fit=crop&w=800&q=80"},
			IsAvailable: true,
		},
		{
			Name:          "Brownie de Doce de Leite",
			Description:   "Brownie recheado com doce de leite artesanal.",
			Price:         11.9,
			HasDiscount:   true,
			DiscountPrice: floatPtr(10.9),
			Images:        []string{"https://images.unsplash.com/photo-1518887577700-6e1837a3f1df?auto=format&fit=crop&w=800&q=80"},
			IsAvailable:   true,
		},
		{
			Name:        "Brownie Nutella",
			Description: "Brownie com cobertura de Nutella generosa.",
			Price:       12.9,
			Images:      []string{"https://images.unsplash.com/photo-1505253216365-3c5197b71f82?auto=format&fit=crop&w=800&q=80"},
			IsAvailable: true,
		},
		{
			Name:        "Brownie Oreo",
			Description: "Brownie com pedaços de Oreo na massa.",
			Price:       11.5,
			Images:      []string{"https://images.unsplash.com/photo-1564936281391-5ab6a96baa65?auto=format&fit=crop&w=800&q=80"},
			IsAvailable: true,
		},
	}
}
