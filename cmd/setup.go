package cmd

import (
	"strings"

	"github.com/isometry/webhook-relay/internal/config"
	"github.com/isometry/webhook-relay/internal/controllers/aws"
	"github.com/isometry/webhook-relay/internal/metrics"
	"github.com/isometry/webhook-relay/internal/relay"
	"github.com/isometry/webhook-relay/internal/runtime"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// setup resolves the webhook URL once and builds the relay runtime. m may be nil.
func setup(cmd *cobra.Command, m *metrics.Metrics) (*runtime.Runtime, error) {
	var secrets relay.SecretGetter
	value := config.Relay.WebhookURL
	if strings.EqualFold(strings.TrimSpace(config.Relay.Source), relay.SourceSSM) {
		logger.Debug("creating AWS controller...")
		ctl, err := aws.NewController(
			aws.WithContext(cmd.Context()),
			aws.WithLogger(logger.With("component", "aws-controller")))
		if err != nil {
			return nil, errors.Wrap(err, "failed to create AWS controller")
		}
		secrets = ctl
		value = config.Relay.SSMKey
	}

	logger.Debug("resolving webhook URL...", "source", config.Relay.Source)
	webhookURL, err := relay.ResolveWebhookURL(config.Relay.Source, value, secrets)
	if err != nil {
		return nil, err
	}
	if webhookURL == "" {
		logger.Warn("no webhook URL configured, every invocation will be refused")
	}

	logger.Debug("creating relay...")
	r := relay.NewRelay(
		relay.WithWebhookURL(webhookURL),
		relay.WithTimeout(config.Relay.Timeout),
		relay.WithMetrics(m),
		relay.WithLogger(logger.With("component", "relay")))

	logger.Debug("creating runtime...")
	rtm, err := runtime.NewRuntime(r,
		runtime.WithPayloadType(config.Lambda.PayloadType),
		runtime.WithMaxBodyBytes(config.Service.MaxBodyBytes),
		runtime.WithLogger(logger.With("component", "runtime")))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create runtime")
	}
	return rtm, nil
}
