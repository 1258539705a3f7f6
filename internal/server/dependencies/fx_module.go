package dependencies

import (
	"go.uber.org/fx"

	"github.com/DavidSemke/TechstackApi/internal/log"
	"github.com/DavidSemke/TechstackApi/internal/server/db"
)

var Module = fx.Module("dependencies",
	fx.Provide(log.NewLogger),
	fx.Provide(db.New),
)
