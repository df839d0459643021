package coupon

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
)

// objectGetter is the subset of the S3 client the loader needs.
type objectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// s3Loader reads rule catalogues stored under a key prefix of one bucket.
type s3Loader struct {
	client objectGetter
	bucket string
	prefix string
	logger zerolog.Logger
}

// NewS3Loader creates a Loader that resolves rule file names to
// s3://bucket/prefix+name.
func NewS3Loader(ctx context.Context, bucket, region, prefix string, logger zerolog.Logger) (Loader, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	logger.Info().
		Str("bucket", bucket).
		Str("region", region).
		Str("prefix", prefix).
		Msg("coupon rules will be read from S3")

	return newS3Loader(s3.NewFromConfig(awsCfg), bucket, prefix, logger), nil
}

func newS3Loader(client objectGetter, bucket, prefix string, logger zerolog.Logger) *s3Loader {
	return &s3Loader{
		client: client,
		bucket: bucket,
		prefix: prefix,
		logger: logger.With().Str("component", "s3-coupon-loader").Logger(),
	}
}

func (l *s3Loader) Load(ctx context.Context, name string) (RuleSet, error) {
	key := l.prefix + name
	log := l.logger.With().Str("bucket", l.bucket).Str("key", key).Logger()

	obj, err := l.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(l.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to fetch coupon rules")
		return nil, fmt.Errorf("failed to get s3://%s/%s: %w", l.bucket, key, err)
	}
	defer obj.Body.Close()

	set, err := decodeRules(ctx, obj.Body, strings.HasSuffix(key, ".gz"))
	if err != nil {
		log.Error().Err(err).Msg("invalid coupon rules object")
		return nil, fmt.Errorf("failed to decode s3://%s/%s: %w", l.bucket, key, err)
	}

	log.Info().Int("coupons_loaded", set.Size()).Msg("coupon rules loaded from S3")
	return set, nil
}

// fallbackLoader reads from primary and, when that fails or is absent,
// from secondary with the same name.
type fallbackLoader struct {
	primary   Loader
	secondary Loader
	logger    zerolog.Logger
}

// NewFallbackLoader chains two loaders. A nil primary means only secondary
// is consulted.
func NewFallbackLoader(primary, secondary Loader, logger zerolog.Logger) Loader {
	return &fallbackLoader{
		primary:   primary,
		secondary: secondary,
		logger:    logger.With().Str("component", "fallback-coupon-loader").Logger(),
	}
}

func (l *fallbackLoader) Load(ctx context.Context, name string) (RuleSet, error) {
	if l.primary != nil {
		set, err := l.primary.Load(ctx, name)
		if err == nil {
			return set, nil
		}
		l.logger.Warn().Err(err).Str("name", name).Msg("primary coupon source failed, trying local copy")
	}
	return l.secondary.Load(ctx, name)
}
