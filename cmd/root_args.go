package cmd

import (
	"time"

	"github.com/isometry/webhook-relay/internal/config"
	"github.com/isometry/webhook-relay/internal/helpers"
)

var envMapString = map[*string]boundEnvVar[string]{
	&config.Global.Mode: {
		Name:        "mode",
		Description: "The application runtime mode. Possible values are 'lambda-http', 'lambda-event' and 'service'",
		Short:       helpers.Ptr("m"),
	},
	&config.Relay.WebhookURL: {
		Name:        "webhook-url",
		Description: "The URL every payload is forwarded to",
		Short:       helpers.Ptr("u"),
		Env:         helpers.Ptr("WEBHOOK_URL"),
	},
	&config.Relay.Source: {
		Name:        "webhook-url-source",
		Description: "Where the webhook URL is resolved from at start-up. Supported values are 'env' and 'ssm'",
	},
	&config.Relay.SSMKey: {
		Name:        "webhook-url-ssm-key",
		Description: "The SSM parameter holding the webhook URL when the source is 'ssm'",
	},
}

var envMapBool = map[*bool]boundEnvVar[bool]{
	&config.Global.Logging.CallerTrace: {
		Name:        "verbosity-caller-trace",
		Description: "Enable caller trace in logs",
		Short:       helpers.Ptr("V"),
	},
}

var envMapCount = map[*int]boundEnvVar[int]{
	&config.Global.Logging.Verbosity: {
		Name:        "verbosity",
		Description: "Increase logger verbosity (default WarnLevel)",
		Short:       helpers.Ptr("v"),
	},
}

var envMapDuration = map[*time.Duration]boundEnvVar[time.Duration]{
	&config.Relay.Timeout: {
		Name:        "webhook-timeout",
		Description: "The timeout for the outbound webhook call",
	},
}
