package biz

import (
	"go.uber.org/fx"
)

var Module = fx.Module("biz",
	fx.Provide(NewAuthService),
	fx.Provide(NewUserService),
	fx.Provide(NewGroupService),
	fx.Provide(NewProfileService),
	fx.Provide(NewTagService),
	fx.Provide(NewPostService),
	fx.Provide(NewCommentService),
	fx.Provide(NewReactionService),
)
