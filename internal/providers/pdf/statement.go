package pdf

import (
	"bytes"
	"context"
	"io"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

type StatementData struct {
	BusinessName string
	Period       string

	CustomerName  string
	CustomerPhone string

	SubscriptionLines []StatementLine
	Sales             []StatementLine
	Payments          []StatementLine

	SubscriptionTotal string
	SalesTotal        string
	PaymentsTotal     string
	TotalOutstanding  string
	UnappliedCredit   string
}

type StatementLine struct {
	Label    string
	Detail   string
	Quantity string
	Amount   string
}

func (p *PDFProvider) GenerateStatement(ctx context.Context, data StatementData) (io.Reader, error) {
	m := maroto.New(pageConfig())

	m.AddRow(12,
		text.NewCol(12, data.BusinessName, props.Text{
			Size:  16,
			Style: fontstyle.Bold,
		}),
	)
	m.AddRow(14,
		col.New(6).Add(
			text.New("Statement "+data.Period, props.Text{Size: 10}),
		),
		col.New(6).Add(
			text.New(data.CustomerName, props.Text{Size: 10, Style: fontstyle.Bold}),
			text.New(data.CustomerPhone, props.Text{Size: 9, Top: 5}),
		),
	)

	addLineSection(m, "Subscription deliveries", data.SubscriptionLines, data.SubscriptionTotal)
	addLineSection(m, "Sales", data.Sales, data.SalesTotal)
	addLineSection(m, "Payments", data.Payments, data.PaymentsTotal)

	addTotalRow(m, "Total outstanding", data.TotalOutstanding, true)
	if data.UnappliedCredit != "" {
		addTotalRow(m, "Unapplied credit", data.UnappliedCredit, false)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(doc.GetBytes()), nil
}

func addLineSection(m core.Maroto, title string, lines []StatementLine, total string) {
	if len(lines) == 0 {
		return
	}
	m.AddRow(8,
		text.NewCol(12, title, props.Text{Size: 10, Style: fontstyle.Bold}),
	)
	for _, line := range lines {
		m.AddRow(6,
			text.NewCol(4, line.Label, props.Text{Size: 9}),
			text.NewCol(4, line.Detail, props.Text{Size: 9}),
			text.NewCol(2, line.Quantity, props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, line.Amount, props.Text{Size: 9, Align: align.Right}),
		)
	}
	addTotalRow(m, "Total", total, false)
}
