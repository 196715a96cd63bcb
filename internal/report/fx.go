package report

import (
	"github.com/freshvale/dairyops/internal/providers/pdf"
	"go.uber.org/fx"
)

var Module = fx.Module("report",
	fx.Provide(NewHTMLRenderer),
	fx.Provide(pdf.New),
)
