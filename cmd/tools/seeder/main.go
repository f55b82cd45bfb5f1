package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/lib/pq"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping DB: %v", err)
	}

	seedProducts(db)
	seedDiscountRules(db)

	log.Println("Seeding completed successfully!")
}

func seedProducts(db *sql.DB) {
	products := []struct {
		ID       string
		Name     string
		Category string
		Brand    string
		Price    int64
	}{
		{"KOPI-TUBRUK", "Kopi Tubruk 250g", "drinks", "Kapal Api", 18500},
		{"KOPI-SUSU", "Kopi Susu Botol", "drinks", "Kapal Api", 12000},
		{"TEH-MELATI", "Teh Melati Celup", "drinks", "Sosro", 9500},
		{"TEH-BOTOL", "Teh Botol 450ml", "drinks", "Sosro", 6000},
		{"AIR-MINERAL", "Air Mineral 600ml", "drinks", "", 4000},
		{"ROTI-TAWAR", "Roti Tawar Gandum", "bakery", "Sari Roti", 16000},
		{"ROTI-COKLAT", "Roti Sobek Coklat", "bakery", "Sari Roti", 14500},
		{"DONAT-GULA", "Donat Gula Isi 6", "bakery", "", 21000},
		{"MIE-GORENG", "Mie Goreng Instan", "instant", "Indomie", 3500},
		{"MIE-KUAH", "Mie Kuah Ayam Bawang", "instant", "Indomie", 3500},
		{"KECAP-MANIS", "Kecap Manis 275ml", "pantry", "Bango", 19500},
		{"GULA-PASIR", "Gula Pasir 1kg", "pantry", "", 17500},
		{"MINYAK-GORENG", "Minyak Goreng 2L", "pantry", "Bimoli", 38000},
		{"SUSU-UHT", "Susu UHT Full Cream 1L", "dairy", "Ultra Milk", 19000},
		{"KEJU-CHEDDAR", "Keju Cheddar 165g", "dairy", "Kraft", 24500},
	}

	fmt.Println("Seeding Products...")
	for _, p := range products {
		brand := sql.NullString{String: p.Brand, Valid: p.Brand != ""}
		_, err := db.Exec(`
			INSERT INTO products (id, name, category, brand, price)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (id) DO UPDATE SET
				name = EXCLUDED.name,
				category = EXCLUDED.category,
				brand = EXCLUDED.brand,
				price = EXCLUDED.price;
		`, p.ID, p.Name, p.Category, brand, p.Price)
		if err != nil {
			log.Fatalf("Failed to seed product %s: %v", p.ID, err)
		}
	}
}

func seedDiscountRules(db *sql.DB) {
	rules := []struct {
		ID          string
		RuleType    string
		Category    string
		Brand       string
		ProductID   string
		BundleItems []string
		Threshold   int64
		MinCount    int32
		Amount      int64
		PercentBps  int32
		Exclusive   bool
		Stackable   bool
		RuleGroup   string
		Position    int32
	}{
		{
			ID: "BUNDLE-SARAPAN", RuleType: "bundle",
			BundleItems: []string{"ROTI-TAWAR", "SUSU-UHT"},
			Amount:      5000, Exclusive: true, Position: 10,
		},
		{
			ID: "PROMO-KEJU", RuleType: "single_item",
			ProductID: "KEJU-CHEDDAR", PercentBps: 1500,
			Exclusive: true, Position: 20,
		},
		{
			ID: "DRINKS-50K", RuleType: "threshold_by_category",
			Category: "drinks", Threshold: 50000, Amount: 5000,
			Stackable: true, RuleGroup: "drinks-promo", Position: 30,
		},
		{
			ID: "DRINKS-100K", RuleType: "threshold_by_category",
			Category: "drinks", Threshold: 100000, Amount: 12000,
			Stackable: true, RuleGroup: "drinks-promo", Position: 40,
		},
		{
			ID: "MIE-BORONGAN", RuleType: "count_threshold",
			Category: "instant", MinCount: 5, Amount: 3000,
			Stackable: true, Position: 50,
		},
		{
			ID: "PANTRY-HEMAT", RuleType: "category_percent",
			Category: "pantry", PercentBps: 500,
			Stackable: true, Position: 60,
		},
		{
			ID: "SARI-ROTI-WEEK", RuleType: "brand_percent",
			Brand: "Sari Roti", PercentBps: 1000,
			Stackable: false, Position: 70,
		},
		{
			ID: "GAJIAN-SALE", RuleType: "time_limited",
			PercentBps: 250, Stackable: true, Position: 80,
		},
	}

	fmt.Println("Seeding Discount Rules...")
	for _, r := range rules {
		_, err := db.Exec(`
			INSERT INTO discount_rules (
				id, rule_type, category, brand, product_id, bundle_items,
				threshold, min_count, amount, percent_bps,
				exclusive, stackable, rule_group, position
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
			ON CONFLICT (id) DO UPDATE SET
				rule_type = EXCLUDED.rule_type,
				category = EXCLUDED.category,
				brand = EXCLUDED.brand,
				product_id = EXCLUDED.product_id,
				bundle_items = EXCLUDED.bundle_items,
				threshold = EXCLUDED.threshold,
				min_count = EXCLUDED.min_count,
				amount = EXCLUDED.amount,
				percent_bps = EXCLUDED.percent_bps,
				exclusive = EXCLUDED.exclusive,
				stackable = EXCLUDED.stackable,
				rule_group = EXCLUDED.rule_group,
				position = EXCLUDED.position;
		`, r.ID, r.RuleType, r.Category, r.Brand, r.ProductID, pq.Array(r.BundleItems),
			r.Threshold, r.MinCount, r.Amount, r.PercentBps,
			r.Exclusive, r.Stackable, r.RuleGroup, r.Position)
		if err != nil {
			log.Fatalf("Failed to seed rule %s: %v", r.ID, err)
		}
	}
}
