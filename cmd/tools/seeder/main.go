package main

import (
	"context"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/noah-isme/checkout-api/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}
	defer pool.Close()

	seedClients(ctx, pool)
	seedProducts(ctx, pool)
	log.Println("seeding completed")
}

func seedClients(ctx context.Context, pool *pgxpool.Pool) {
	clients := []struct {
		Name  string
		Email string
		Tier  string
	}{
		{"Ana Souza", "ana@example.com", "GOLD"},
		{"Bruno Lima", "bruno@example.com", "SILVER"},
		{"Carla Mendes", "carla@example.com", "BRONZE"},
		{"Diego Costa", "diego@example.com", "BRONZE"},
		{"Elisa Rocha", "elisa@example.com", "SILVER"},
	}

	log.Println("seeding clients...")
	for _, c := range clients {
		_, err := pool.Exec(ctx, `
			INSERT INTO clients (name, email, tier)
			VALUES ($1, $2, $3)
			ON CONFLICT (email) DO UPDATE SET tier = EXCLUDED.tier`,
			c.Name, c.Email, c.Tier)
		if err != nil {
			log.Printf("seed client %s: %v", c.Email, err)
		}
	}
}

func seedProducts(ctx context.Context, pool *pgxpool.Pool) {
	products := []struct {
		Name     string
		Price    string
		Weight   string
		Category string
	}{
		{"Wireless Headphones", "299.90", "0.35", "electronics"},
		{"Mechanical Keyboard", "450.00", "1.10", "electronics"},
		{"Standing Desk", "1200.00", "32.00", "furniture"},
		{"Office Chair", "850.00", "18.50", "furniture"},
		{"USB-C Cable", "29.90", "0.05", "accessories"},
		{"Laptop Backpack", "189.90", "0.90", "accessories"},
		{"4K Monitor", "1599.00", "6.20", "electronics"},
		{"Desk Lamp", "99.90", "1.30", "furniture"},
	}

	log.Println("seeding products...")
	for _, p := range products {
		_, err := pool.Exec(ctx, `
			INSERT INTO products (name, price, weight, category)
			SELECT $1, $2::numeric, $3::numeric, $4
			WHERE NOT EXISTS (SELECT 1 FROM products WHERE name = $1)`,
			p.Name, p.Price, p.Weight, p.Category)
		if err != nil {
			log.Printf("seed product %s: %v", p.Name, err)
		}
	}
}
