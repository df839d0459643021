//go:build ignore

package main

import (
	"compress/gzip"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"foodhub/internal/coupon"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Writes a gzipped YAML coupon catalogue containing the built-in coupons
// plus a cuisine-scoped and, when -restaurant is given, a restaurant-scoped
// coupon. Load it with COUPON_RULES_PATH=data/coupons/rules.yaml.gz.
func main() {
	out := flag.String("out", "data/coupons/rules.yaml.gz", "output file")
	restaurant := flag.String("restaurant", "", "restaurant id for the HOUSE20 coupon")
	flag.Parse()

	rules := coupon.DefaultRules()
	rules = append(rules, coupon.Rule{
		Code:    "THAI15",
		Percent: decimal.RequireFromString("0.15"),
		Scope:   coupon.ScopeCuisine,
		Cuisine: "Thai",
	})

	if *restaurant != "" {
		id, err := uuid.Parse(*restaurant)
		if err != nil {
			log.Fatalf("Invalid restaurant id: %v", err)
		}
		rules = append(rules, coupon.Rule{
			Code:         "HOUSE20",
			Percent:      decimal.RequireFromString("0.20"),
			Scope:        coupon.ScopeRestaurant,
			RestaurantID: id,
		})
	}

	// Fail before writing anything if a rule is malformed
	if _, err := coupon.NewRuleSet(rules); err != nil {
		log.Fatalf("Invalid coupon rules: %v", err)
	}

	if err := os.MkdirAll(filepath.Dir(*out), 0755); err != nil {
		log.Fatalf("Failed to create directory: %v", err)
	}

	if err := writeRules(*out, rules); err != nil {
		log.Fatalf("Failed to create %s: %v", *out, err)
	}

	fmt.Printf("Created %s with %d coupons\n", *out, len(rules))
	for _, r := range rules {
		fmt.Printf("  - %-10s %s%% off (%s)\n", r.Code, r.Percent.Shift(2).String(), r.Scope)
	}
}

func writeRules(filePath string, rules []coupon.Rule) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	gzipWriter := gzip.NewWriter(file)
	if err := coupon.EncodeRules(gzipWriter, rules); err != nil {
		gzipWriter.Close()
		return err
	}
	return gzipWriter.Close()
}
