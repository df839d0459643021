package coupon

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// ruleFile is the on-disk YAML layout of a rule catalogue.
type ruleFile struct {
	Coupons []ruleEntry `yaml:"coupons"`
}

type ruleEntry struct {
	Code         string   `yaml:"code"`
	Percent      string   `yaml:"percent"`
	Scope        string   `yaml:"scope"`
	RestaurantID string   `yaml:"restaurant_id,omitempty"`
	Cuisine      string   `yaml:"cuisine,omitempty"`
	Keywords     []string `yaml:"keywords,omitempty"`
}

func (e ruleEntry) toRule() (Rule, error) {
	percent, err := decimal.NewFromString(strings.TrimSpace(e.Percent))
	if err != nil {
		return Rule{}, fmt.Errorf("coupon %s: invalid percent %q: %w", e.Code, e.Percent, err)
	}

	rule := Rule{
		Code:     NormalizeCode(e.Code),
		Percent:  percent,
		Scope:    Scope(strings.ToLower(strings.TrimSpace(e.Scope))),
		Cuisine:  strings.TrimSpace(e.Cuisine),
		Keywords: e.Keywords,
	}
	if rule.Scope == "" {
		rule.Scope = ScopeGlobal
	}
	if e.RestaurantID != "" {
		id, err := uuid.Parse(e.RestaurantID)
		if err != nil {
			return Rule{}, fmt.Errorf("coupon %s: invalid restaurant id: %w", e.Code, err)
		}
		rule.RestaurantID = id
	}
	return rule, nil
}

// EncodeRules writes rules in the YAML catalogue layout.
func EncodeRules(w io.Writer, rules []Rule) error {
	file := ruleFile{Coupons: make([]ruleEntry, 0, len(rules))}
	for _, r := range rules {
		entry := ruleEntry{
			Code:     r.Code,
			Percent:  r.Percent.String(),
			Scope:    string(r.Scope),
			Cuisine:  r.Cuisine,
			Keywords: r.Keywords,
		}
		if r.RestaurantID != uuid.Nil {
			entry.RestaurantID = r.RestaurantID.String()
		}
		file.Coupons = append(file.Coupons, entry)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(file); err != nil {
		return fmt.Errorf("failed to encode coupon rules: %w", err)
	}
	return enc.Close()
}

// decodeRules parses a rule catalogue, un-gzipping it first when gzipped is set.
func decodeRules(ctx context.Context, r io.Reader, gzipped bool) (RuleSet, error) {
	if gzipped {
		gzipReader, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		defer gzipReader.Close()
		r = gzipReader
	}

	var file ruleFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		if err == io.EOF {
			return NewRuleSet(nil)
		}
		return nil, fmt.Errorf("failed to decode coupon rules: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rules := make([]Rule, 0, len(file.Coupons))
	for _, entry := range file.Coupons {
		rule, err := entry.toRule()
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return NewRuleSet(rules)
}

// fileLoader implements Loader for reading rule files from local disk.
type fileLoader struct {
	logger zerolog.Logger
}

// NewFileLoader creates a new file-based coupon loader.
func NewFileLoader(logger zerolog.Logger) Loader {
	return &fileLoader{
		logger: logger.With().Str("component", "coupon-loader").Logger(),
	}
}

// Load reads a rule file and returns a RuleSet.
func (l *fileLoader) Load(ctx context.Context, filePath string) (RuleSet, error) {
	l.logger.Info().Str("file", filePath).Msg("loading coupon rules")

	file, err := os.Open(filePath)
	if err != nil {
		l.logger.Error().Err(err).Str("file", filePath).Msg("failed to open coupon rules")
		return nil, fmt.Errorf("failed to open coupon rules %s: %w", filePath, err)
	}
	defer file.Close()

	set, err := decodeRules(ctx, file, strings.HasSuffix(filePath, ".gz"))
	if err != nil {
		l.logger.Error().Err(err).Str("file", filePath).Msg("error reading coupon rules")
		return nil, fmt.Errorf("error reading coupon rules %s: %w", filePath, err)
	}

	l.logger.Info().
		Str("file", filePath).
		Int("coupons_loaded", set.Size()).
		Msg("coupon rules loaded successfully")

	return set, nil
}
