package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/fixora/assetdash/internal/adapter/auth"
	"github.com/fixora/assetdash/internal/config"
	"github.com/fixora/assetdash/internal/domain"
)

var departments = []string{"IT", "Operations", "Finance", "Logistics", "Facilities"}

var categories = []domain.AssetCategory{
	domain.AssetCategoryITEquipment,
	domain.AssetCategoryVehicle,
	domain.AssetCategoryOfficeFurniture,
	domain.AssetCategoryBuildingInfra,
	domain.AssetCategoryMachinery,
	domain.AssetCategoryOther,
}

var conditions = []domain.AssetCondition{
	domain.AssetConditionNew,
	domain.AssetConditionGood,
	domain.AssetConditionGood,
	domain.AssetConditionFair,
	domain.AssetConditionPoor,
}

var issueTypes = []domain.IssueType{
	domain.IssueTypeBreakdown,
	domain.IssueTypeDamage,
	domain.IssueTypeMalfunction,
	domain.IssueTypeOther,
}

func main() {
	assetCount := flag.Int("assets", 50, "number of demo assets to create")
	months := flag.Int("months", 12, "months of event history to generate")
	seed := flag.Int64("seed", time.Now().UnixNano(), "random seed")
	flag.Parse()
	if *months < 1 {
		log.Fatal("months must be at least 1")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := sql.Open("postgres", cfg.GetDatabaseURL())
	if err != nil {
		log.Fatalf("failed to connect db: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("failed to ping db: %v", err)
	}

	s := &seeder{db: db, rng: rand.New(rand.NewSource(*seed)), now: time.Now().UTC()}
	events, issues, err := s.run(ctx, *assetCount, *months)
	if err != nil {
		log.Fatalf("failed to seed data: %v", err)
	}
	fmt.Printf("Seeded %d assets, %d events, %d issues\n", *assetCount, events, issues)

	identity, err := auth.NewJWTIdentityProvider(cfg.Security.JWTSecret, cfg.Security.JWTIssuer)
	if err != nil {
		log.Fatalf("failed to create identity provider: %v", err)
	}
	token, err := identity.IssueToken(&domain.Staff{
		ID:    uuid.NewString(),
		Name:  "Demo Admin",
		Email: "admin@example.com",
		Role:  domain.StaffRoleAdmin,
	}, 24*time.Hour)
	if err != nil {
		log.Fatalf("failed to issue demo token: %v", err)
	}
	fmt.Printf("Demo admin token (24h): %s\n", token)
}

type seeder struct {
	db  *sql.DB
	rng *rand.Rand
	now time.Time
}

func (s *seeder) run(ctx context.Context, assetCount, months int) (int, int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, err
	}
	defer tx.Rollback()

	var events, issues int
	for i := 0; i < assetCount; i++ {
		asset := s.randomAsset(i, months)
		_, err := tx.ExecContext(ctx, `
			INSERT INTO assets (id, name, category, department, purchase_price, purchase_date,
				available_status, current_condition, last_used_at, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			asset.ID, asset.Name, string(asset.Category), asset.Department, asset.PurchasePrice,
			asset.PurchaseDate, string(asset.AvailableStatus), string(asset.CurrentCondition),
			asset.LastUsedAt, asset.CreatedAt,
		)
		if err != nil {
			return 0, 0, fmt.Errorf("failed to insert asset: %w", err)
		}

		n, err := s.insertHistory(ctx, tx, asset, months)
		if err != nil {
			return 0, 0, err
		}
		events += n

		n, err = s.insertIssues(ctx, tx, asset, months)
		if err != nil {
			return 0, 0, err
		}
		issues += n
	}

	return events, issues, tx.Commit()
}

func (s *seeder) randomAsset(i, months int) *domain.Asset {
	category := categories[s.rng.Intn(len(categories))]
	purchased := s.now.AddDate(-s.rng.Intn(9), -s.rng.Intn(12), 0)
	lastUsed := s.now.AddDate(0, 0, -s.rng.Intn(90))
	return &domain.Asset{
		ID:               uuid.NewString(),
		Name:             fmt.Sprintf("%s #%03d", category, i+1),
		Category:         category,
		Department:       departments[s.rng.Intn(len(departments))],
		PurchasePrice:    float64(200+s.rng.Intn(40000)) + float64(s.rng.Intn(100))/100,
		PurchaseDate:     &purchased,
		AvailableStatus:  domain.AssetStatusAvailable,
		CurrentCondition: conditions[s.rng.Intn(len(conditions))],
		LastUsedAt:       &lastUsed,
		CreatedAt:        s.now.AddDate(0, -months, 0),
	}
}

// insertHistory walks the asset through checkout, return and maintenance cycles
// and leaves it in the final status reached.
func (s *seeder) insertHistory(ctx context.Context, tx *sql.Tx, asset *domain.Asset, months int) (int, error) {
	status := domain.AssetStatusAvailable
	at := asset.CreatedAt
	count := 0

	for {
		at = at.Add(time.Duration(2+s.rng.Intn(20)) * 24 * time.Hour)
		if !at.Before(s.now) {
			break
		}

		next := domain.AssetStatusInUse
		switch status {
		case domain.AssetStatusInUse:
			next = domain.AssetStatusAvailable
			if s.rng.Intn(5) == 0 {
				next = domain.AssetStatusMaintenance
			}
		case domain.AssetStatusMaintenance:
			next = domain.AssetStatusAvailable
		}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO asset_events (id, asset_id, event_type, from_value, to_value, at)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			uuid.NewString(), asset.ID, string(domain.EventTypeStatusChange), string(status), string(next), at,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert asset event: %w", err)
		}
		status = next
		count++
	}

	if _, err := tx.ExecContext(ctx, `UPDATE assets SET available_status = $1 WHERE id = $2`, string(status), asset.ID); err != nil {
		return 0, fmt.Errorf("failed to update asset status: %w", err)
	}
	return count, nil
}

func (s *seeder) insertIssues(ctx context.Context, tx *sql.Tx, asset *domain.Asset, months int) (int, error) {
	n := s.rng.Intn(4)
	for i := 0; i < n; i++ {
		reported := s.now.Add(-time.Duration(s.rng.Intn(months*30*24)+1) * time.Hour)
		var resolved *time.Time
		if s.rng.Intn(4) > 0 {
			r := reported.Add(time.Duration(1+s.rng.Intn(48)) * time.Hour)
			if r.Before(s.now) {
				resolved = &r
			}
		}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO asset_issues (id, asset_id, issue_type, reported_at, resolved_at)
			VALUES ($1, $2, $3, $4, $5)`,
			uuid.NewString(), asset.ID, string(issueTypes[s.rng.Intn(len(issueTypes))]), reported, resolved,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert asset issue: %w", err)
		}
	}
	return n, nil
}
