package main

import (
	awslambda "github.com/aws/aws-lambda-go/lambda"
	"github.com/sirupsen/logrus"

	"pkgindex-web/internal/config"
	"pkgindex-web/pkg/lambda"
)

func main() {
	rt := lambda.NewRuntime(config.GetOptimizedConfig)

	awslambda.StartWithOptions(rt.Handle, awslambda.WithEnableSIGTERM(func() {
		if err := rt.Cleanup(); err != nil {
			logrus.WithError(err).Error("Failed to clean up runtime")
		}
	}))
}
