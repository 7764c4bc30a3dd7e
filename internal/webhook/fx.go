package webhook

import "go.uber.org/fx"

var Module = fx.Module("webhook.dispatcher",
	fx.Provide(NewSeenEvents),
	fx.Provide(NewService),
)
