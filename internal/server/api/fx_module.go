package api

import (
	"go.uber.org/fx"
)

var Module = fx.Module("api",
	fx.Provide(NewAuthHandlers),
	fx.Provide(NewUserHandlers),
	fx.Provide(NewGroupHandlers),
	fx.Provide(NewProfileHandlers),
	fx.Provide(NewTagHandlers),
	fx.Provide(NewPostHandlers),
	fx.Provide(NewCommentHandlers),
	fx.Provide(NewReactionHandlers),
)
