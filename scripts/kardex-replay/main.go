// Command kardex-replay dry-runs the extraction and allocation stages against
// kardex fixtures dumped from the academic records service. It talks to no
// database and commits nothing; the point is to inspect what the pipeline
// would compute for a group before running it for real.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/diegocaceres21/saae-discount-api/internal/models"
	"github.com/diegocaceres21/saae-discount-api/internal/service"
)

type fixture struct {
	TargetTerms []string `json:"target_terms"`
	Tiers       []models.DiscountTier
	Students    []studentFixture `json:"students"`
}

type studentFixture struct {
	Document string                   `json:"document"`
	FullName string                   `json:"full_name"`
	Kardex   []models.KardexTermBlock `json:"kardex"`
}

func main() {
	var (
		fixturePath string
		aggregate   bool
	)
	flag.StringVar(&fixturePath, "fixture", "fixture.json", "Path to JSON kardex fixture")
	flag.BoolVar(&aggregate, "aggregate", false, "Sum credits across all matching terms (bulk-mode semantics)")
	flag.Parse()

	fx, err := loadFixture(fixturePath)
	if err != nil {
		log.Fatalf("failed to load fixture: %v", err)
	}

	group := &models.SiblingGroup{}
	for _, sf := range fx.Students {
		credits, career, err := service.ExtractTermInfo(sf.Kardex, fx.TargetTerms, aggregate)
		if err != nil {
			log.Fatalf("extraction failed for %s: %v", sf.FullName, err)
		}
		group.Students = append(group.Students, &models.StudentRecord{
			Document:     sf.Document,
			FullName:     sf.FullName,
			Career:       career,
			TotalCredits: credits,
		})
	}

	allocator := service.NewDiscountAllocator(zap.NewNop())
	allocator.Allocate(group, fx.Tiers)

	fmt.Printf("target terms: %s\n\n", strings.Join(fx.TargetTerms, ", "))
	fmt.Printf("%-4s %-12s %-30s %-28s %8s %9s\n", "rank", "document", "name", "career", "credits", "discount")
	for _, rec := range group.Students {
		fmt.Printf("%-4d %-12s %-30s %-28s %8d %8.0f%%\n",
			rec.Position, rec.Document, rec.FullName, rec.Career, rec.TotalCredits, rec.DiscountPct*100)
	}
}

func loadFixture(path string) (*fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var fx fixture
	if err := json.Unmarshal(data, &fx); err != nil {
		return nil, err
	}
	if len(fx.Students) == 0 {
		return nil, fmt.Errorf("no students defined in %s", path)
	}
	if len(fx.TargetTerms) == 0 {
		return nil, fmt.Errorf("no target terms defined in %s", path)
	}
	return &fx, nil
}
