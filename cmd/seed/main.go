package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"inmo-marketplace/internal/config"
	"inmo-marketplace/internal/domain"
	"inmo-marketplace/internal/domain/model"
	"inmo-marketplace/internal/domain/ports/repository"
	pg "inmo-marketplace/internal/infra/db/postgres"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, false)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 4)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	planRepo := pg.NewPlanRepo(pool)
	productRepo := pg.NewBoostProductRepo(pool)
	txm := pg.NewTxManager(pool)

	seedPlans := []struct {
		Code  string
		Name  string
		Price float64
		Limit int
	}{
		{"basico", "Básico", 4_999, 3},
		{"pro", "Pro", 14_999, 20},
		{"agencia", "Agencia", 39_999, 200},
	}
	seedProducts := []struct {
		Code  string
		Name  string
		Price float64
		Hours int
	}{
		{"destacado_24h", "Destacado 24 horas", 1_999, 24},
		{"destacado_72h", "Destacado 72 horas", 4_499, 72},
		{"destacado_7d", "Destacado 7 días", 8_999, 168},
	}

	// Seed everything or nothing. Rows already present by code are kept
	// untouched so re-running after a partial rollout is safe.
	err = txm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		for _, s := range seedPlans {
			if existing, err := planRepo.FindByCode(ctx, tx, s.Code); err == nil {
				fmt.Printf("plan %q already present (id=%s). Skipping.\n", existing.Code, existing.ID)
				continue
			} else if !errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("find plan %q: %w", s.Code, err)
			}
			p, err := model.NewPlan(uuid.NewString(), s.Code, s.Name, s.Price, s.Limit)
			if err != nil {
				return fmt.Errorf("plan %q: %w", s.Code, err)
			}
			if err := planRepo.Save(ctx, tx, p); err != nil {
				return fmt.Errorf("save plan %q: %w", s.Code, err)
			}
			fmt.Printf("seeded plan: %s (id=%s, limit=%d, price=%.0f ARS)\n", p.Name, p.ID, p.ListingLimit, p.PriceARS)
		}
		existing, err := productRepo.ListAll(ctx, tx)
		if err != nil {
			return fmt.Errorf("list boost products: %w", err)
		}
		present := make(map[string]bool, len(existing))
		for _, p := range existing {
			present[p.Code] = true
		}
		for _, s := range seedProducts {
			if present[s.Code] {
				fmt.Printf("boost product %q already present. Skipping.\n", s.Code)
				continue
			}
			p := &model.BoostProduct{
				ID:            uuid.NewString(),
				Code:          s.Code,
				Name:          s.Name,
				PriceARS:      s.Price,
				DurationHours: s.Hours,
			}
			if err := productRepo.Save(ctx, tx, p); err != nil {
				return fmt.Errorf("save boost product %q: %w", s.Code, err)
			}
			fmt.Printf("seeded boost product: %s (id=%s, hours=%d, price=%.0f ARS)\n", p.Name, p.ID, p.DurationHours, p.PriceARS)
		}
		return nil
	})
	if err != nil {
		log.Fatalf("seed: %v", err)
	}

	fmt.Println("Seeding complete. Run the plan provisioning endpoint to register plans with MercadoPago.")
}
