package cmd

import (
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/isometry/webhook-relay/internal/config"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func cmdLambda() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lambda",
		Short: "Run the relay inside the AWS Lambda runtime",
	}
	cmd.AddCommand(
		cmdLambdaHTTP(),
		cmdLambdaEvent(),
	)
	bindEnvMap(cmd, lambdaEnvMapString)

	return cmd
}

// cmdLambdaHTTP is the command for running the lambda-http mode.
func cmdLambdaHTTP() *cobra.Command {
	return &cobra.Command{
		Use:         "http",
		Short:       "Handle API Gateway and function URL requests",
		Annotations: map[string]string{modeAnnotation: config.ModeLambdaHTTP},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLambdaHTTP(cmd)
		},
	}
}

// cmdLambdaEvent is the command for running the lambda in event mode.
func cmdLambdaEvent() *cobra.Command {
	return &cobra.Command{
		Use:         "event",
		Short:       "Handle direct invocations whose event is the payload",
		Annotations: map[string]string{modeAnnotation: config.ModeLambdaEvent},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLambdaEvent(cmd)
		},
	}
}

func runLambdaHTTP(cmd *cobra.Command) error {
	rtm, err := setup(cmd, nil)
	if err != nil {
		return errors.Wrap(err, "failed to setup lambda")
	}

	logger.Info("lambda starting...", "payloadType", config.Lambda.PayloadType)
	lambda.StartWithOptions(rtm.Lambda,
		lambda.WithContext(cmd.Context()))
	return nil
}

func runLambdaEvent(cmd *cobra.Command) error {
	rtm, err := setup(cmd, nil)
	if err != nil {
		return errors.Wrap(err, "failed to setup lambda")
	}

	logger.Info("lambda starting...")
	lambda.StartWithOptions(rtm.LambdaForEvent,
		lambda.WithContext(cmd.Context()))
	return nil
}
