package config

import (
	"fmt"
	"os"
	"strconv"
)

type DynamoConfig struct {
	TableName  string
	TtlMinutes int
	Enabled    bool
}

func GetDynamoConfig() (*DynamoConfig, error) {
	tableName := os.Getenv("DYNAMO_TABLE_NAME")
	if tableName == "" {
		return &DynamoConfig{}, nil
	}

	ttlMinutes := 24 * 60
	if ttl := os.Getenv("DYNAMO_TTL_MINUTES"); ttl != "" {
		val, err := strconv.Atoi(ttl)
		if err != nil {
			return nil, fmt.Errorf("failed to parse DYNAMO_TTL_MINUTES")
		}
		ttlMinutes = val
	}

	return &DynamoConfig{
		TableName:  tableName,
		TtlMinutes: ttlMinutes,
		Enabled:    true,
	}, nil
}
