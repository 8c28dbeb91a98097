package config

import (
	"fmt"
	"os"
)

type S3Config struct {
	BucketName string
	Region     string
	Enabled    bool
}

func GetS3Config() (*S3Config, error) {
	bucketName := os.Getenv("BUCKET_NAME")
	if bucketName == "" {
		return &S3Config{}, nil
	}

	region := os.Getenv("REGION")
	if region == "" {
		return nil, fmt.Errorf("REGION must be set when BUCKET_NAME is set")
	}

	return &S3Config{
		BucketName: bucketName,
		Region:     region,
		Enabled:    true,
	}, nil
}
