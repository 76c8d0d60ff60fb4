package main

import (
	"context"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/pricing/backend/internal/domain/analytics"
	"github.com/pricing/backend/internal/domain/catalog"
	"github.com/pricing/backend/internal/infrastructure/config"
	"github.com/pricing/backend/internal/infrastructure/logger"
	"github.com/pricing/backend/internal/infrastructure/persistence"
)

type seedProduct struct {
	sku         string
	name        string
	description string
	category    string
	basePrice   float64
	costPrice   float64
	inventory   int
	sales30     int
	rating      float64
}

var sampleProducts = []seedProduct{
	{"P001", "Wireless Bluetooth Headphones", "Premium wireless headphones with noise cancellation", "Electronics", 100, 60, 15, 120, 4.5},
	{"P002", "Designer Cotton T-Shirt", "Comfortable premium cotton t-shirt", "Apparel", 200, 80, 50, 40, 4.0},
	{"P003", "Smart Home Security Camera", "WiFi-enabled security camera with mobile app", "Home", 50, 25, 5, 10, 3.8},
	{"P004", "Gaming Mechanical Keyboard", "RGB backlit mechanical keyboard for gaming", "Electronics", 150, 90, 25, 75, 4.7},
	{"P005", "Premium Leather Jacket", "Genuine leather jacket with modern fit", "Apparel", 300, 150, 8, 15, 4.3},
	{"P006", "Smart WiFi Thermostat", "Energy-efficient smart thermostat with app control", "Home", 120, 70, 30, 45, 4.1},
	{"P007", "Portable Power Bank", "20000mAh portable charger with fast charging", "Electronics", 45, 20, 100, 200, 4.0},
	{"P008", "Yoga Mat Premium", "Non-slip premium yoga mat with carrying strap", "Home", 80, 35, 40, 60, 4.4},
	{"P009", "Running Sneakers", "Lightweight running shoes with cushioned sole", "Apparel", 180, 90, 35, 85, 4.2},
	{"P010", "Coffee Maker Deluxe", "Programmable coffee maker with thermal carafe", "Home", 220, 120, 12, 25, 4.6},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.NewForEnvironment(cfg.App.Env)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	products := persistence.NewGormProductRepository(db.DB)
	sales := persistence.NewGormSaleRepository(db.DB)

	ctx := context.Background()

	seeded, err := seedProducts(ctx, products, log)
	if err != nil {
		log.Fatal("Failed to seed products", zap.Error(err))
	}

	if err := seedSales(ctx, sales, seeded, cfg.Seed.SalesHistoryDays, log); err != nil {
		log.Fatal("Failed to seed sales", zap.Error(err))
	}

	log.Info("Sample data initialization completed")
}

func seedProducts(ctx context.Context, repo catalog.ProductRepository, log *zap.Logger) ([]catalog.Product, error) {
	seeded := make([]catalog.Product, 0, len(sampleProducts))
	created := 0
	for _, sp := range sampleProducts {
		exists, err := repo.ExistsBySKU(ctx, sp.sku)
		if err != nil {
			return nil, err
		}
		if exists {
			existing, err := repo.FindBySKU(ctx, sp.sku)
			if err != nil {
				return nil, err
			}
			seeded = append(seeded, *existing)
			continue
		}

		product, err := catalog.NewProduct(sp.sku, sp.name, sp.category,
			decimal.NewFromFloat(sp.basePrice), decimal.NewFromFloat(sp.costPrice))
		if err != nil {
			return nil, err
		}
		if err := product.Update(sp.name, sp.description, sp.category); err != nil {
			return nil, err
		}
		if err := product.SetInventory(sp.inventory); err != nil {
			return nil, err
		}
		if err := product.SetSalesLast30Days(sp.sales30); err != nil {
			return nil, err
		}
		if err := product.SetAverageRating(sp.rating); err != nil {
			return nil, err
		}
		if err := repo.Save(ctx, product); err != nil {
			return nil, err
		}
		seeded = append(seeded, *product)
		created++
	}
	log.Info("Seeded products", zap.Int("created", created), zap.Int("total", len(seeded)))
	return seeded, nil
}

func seedSales(ctx context.Context, repo analytics.SaleRepository, products []catalog.Product, days int, log *zap.Logger) error {
	if days <= 0 {
		days = 60
	}
	start := time.Now().AddDate(0, 0, -days)

	batch := make([]*analytics.Sale, 0, len(products)*days)
	for i := range products {
		p := &products[i]
		baseDaily := p.SalesLast30Days / 30

		for day := 0; day < days; day++ {
			date := start.AddDate(0, 0, day)

			units := baseDaily + rand.Intn(6) - 2
			// Weekend boost for browse-heavy categories
			if wd := date.Weekday(); wd == time.Saturday || wd == time.Sunday {
				if p.Category == "Electronics" || p.Category == "Home" {
					units = int(float64(units) * 1.3)
				}
			}
			// Holiday season boost
			if m := date.Month(); m == time.November || m == time.December {
				units = int(float64(units) * 1.5)
			}
			if units <= 0 {
				continue
			}

			// Sale price drifts a few percent around the current price
			drift := decimal.NewFromFloat(1 + (rand.Float64()-0.5)*0.1)
			price := p.CurrentPrice.Mul(drift).Round(2)

			batch = append(batch, analytics.NewSale(p.ID, date, units, price))
		}
	}

	if len(batch) == 0 {
		return nil
	}
	if err := repo.SaveBatch(ctx, batch); err != nil {
		return err
	}
	log.Info("Seeded sales", zap.Int("records", len(batch)), zap.Int("days", days))
	return nil
}
