package config

import (
	"context"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Secrets backup bucket (S3-compatible). Used only as a fallback when the
// corresponding environment variables are absent, so a re-provisioned node
// can come up without manual secret distribution.
func backupBucketConfigured() bool {
	return os.Getenv("SECRETS_BUCKET") != "" && os.Getenv("SECRETS_ACCESS_KEY") != ""
}

// fetchSecretFromBackup fetches a single secret object from the backup
// bucket. Returns "" on any failure; callers decide whether that is fatal.
func fetchSecretFromBackup(key string) string {
	if !backupBucketConfigured() {
		return ""
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	region := os.Getenv("SECRETS_REGION")
	if region == "" {
		region = "auto"
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			os.Getenv("SECRETS_ACCESS_KEY"),
			os.Getenv("SECRETS_SECRET_KEY"),
			"",
		)),
		awsconfig.WithRegion(region),
	)
	if err != nil {
		log.Printf("[Config] Failed to configure secrets backup client: %v", err)
		return ""
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint := os.Getenv("SECRETS_ENDPOINT"); endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})

	result, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(os.Getenv("SECRETS_BUCKET")),
		Key:    aws.String(key),
	})
	if err != nil {
		log.Printf("[Config] Failed to fetch %s from secrets backup: %v", key, err)
		return ""
	}
	defer result.Body.Close()

	secret, err := io.ReadAll(result.Body)
	if err != nil {
		log.Printf("[Config] Failed to read secret %s: %v", key, err)
		return ""
	}

	return strings.TrimSpace(string(secret))
}
