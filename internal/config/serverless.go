package config

import (
	"os"
	"sync"
)

// ServerlessConfig holds serverless-specific configuration
type ServerlessConfig struct {
	IsLambda     bool
	FunctionName string
	Region       string
	Stage        string
}

var (
	serverlessConfig *ServerlessConfig
	serverlessOnce   sync.Once
)

// GetServerlessConfig returns the serverless configuration
func GetServerlessConfig() *ServerlessConfig {
	serverlessOnce.Do(func() {
		serverlessConfig = &ServerlessConfig{
			IsLambda:     isRunningInLambda(),
			FunctionName: os.Getenv("AWS_LAMBDA_FUNCTION_NAME"),
			Region:       os.Getenv("AWS_REGION"),
			Stage:        GetEnv("STAGE", ""),
		}
	})
	return serverlessConfig
}

// isRunningInLambda detects if the application is running in AWS Lambda
func isRunningInLambda() bool {
	return os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != ""
}

// IsServerlessMode returns true if running in serverless mode
func IsServerlessMode() bool {
	return GetServerlessConfig().IsLambda
}

// GetDeploymentMode returns the current deployment mode
func GetDeploymentMode() string {
	if IsServerlessMode() {
		return "serverless"
	}
	return "server"
}

// AdaptConfigForServerless modifies configuration for a Lambda deployment.
// API Gateway strips the stage from the path it hands to the function, but
// clients see it, so it becomes the URL prefix of derived app URLs.
func AdaptConfigForServerless(sc *ServerlessConfig, cfg *Config) *Config {
	if !sc.IsLambda {
		return cfg
	}

	if cfg.URLPrefix == "" && cfg.Index.AppURL == "" && sc.Stage != "" {
		cfg.URLPrefix = "/" + sc.Stage
	}

	// Throttling is left to API Gateway.
	cfg.Limits.RequestsPerSecond = 0

	return cfg
}

// GetOptimizedConfig returns configuration optimized for the current deployment mode
func GetOptimizedConfig() (*Config, error) {
	cfg, err := Load("")
	if err != nil {
		return nil, err
	}

	return AdaptConfigForServerless(GetServerlessConfig(), cfg), nil
}
