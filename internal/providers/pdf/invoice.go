// Package pdf renders invoices and outstanding statements as PDF
// documents.
package pdf

import (
	"bytes"
	"context"
	"io"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/core/entity"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

type InvoiceData struct {
	BusinessName    string
	BusinessAddress string
	BusinessPhone   string

	InvoiceNumber string
	Period        string
	IssueDate     string

	CustomerName    string
	CustomerPhone   string
	CustomerAddress string

	Items []InvoiceItem

	SubscriptionAmount string
	SalesAmount        string
	GSTAmount          string
	Total              string
	AmountPaid         string
	AmountOutstanding  string
}

type InvoiceItem struct {
	Description string
	Quantity    string
	UnitPrice   string
	Amount      string
}

type PDFProvider struct{}

func New() Provider {
	return &PDFProvider{}
}

func (p *PDFProvider) GenerateInvoice(ctx context.Context, data InvoiceData) (io.Reader, error) {
	m := maroto.New(pageConfig())

	m.AddRow(12,
		text.NewCol(12, data.BusinessName, props.Text{
			Size:  18,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
	)
	m.AddRow(12,
		col.New(12).Add(
			text.New(data.BusinessAddress, props.Text{Size: 9}),
			text.New(data.BusinessPhone, props.Text{Size: 9, Top: 4}),
		),
	)

	m.AddRow(10,
		text.NewCol(12, "Invoice "+data.InvoiceNumber, props.Text{
			Size:  14,
			Style: fontstyle.Bold,
		}),
	)
	m.AddRow(16,
		col.New(6).Add(
			text.New("Period: "+data.Period, props.Text{Size: 9}),
			text.New("Issued: "+data.IssueDate, props.Text{Size: 9, Top: 4}),
		),
		col.New(6).Add(
			text.New(data.CustomerName, props.Text{Size: 9, Style: fontstyle.Bold}),
			text.New(data.CustomerAddress, props.Text{Size: 9, Top: 4}),
			text.New(data.CustomerPhone, props.Text{Size: 9, Top: 8}),
		),
	)

	m.AddRow(8,
		text.NewCol(6, "Description", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, "Qty", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Unit price", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Amount", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)
	for _, item := range data.Items {
		m.AddRow(7,
			text.NewCol(6, item.Description, props.Text{Size: 9}),
			text.NewCol(2, item.Quantity, props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, item.UnitPrice, props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, item.Amount, props.Text{Size: 9, Align: align.Right}),
		)
	}

	addTotalRow(m, "Subscriptions", data.SubscriptionAmount, false)
	addTotalRow(m, "Sales", data.SalesAmount, false)
	addTotalRow(m, "GST", data.GSTAmount, false)
	addTotalRow(m, "Total", data.Total, true)
	addTotalRow(m, "Paid", data.AmountPaid, false)
	addTotalRow(m, "Outstanding", data.AmountOutstanding, true)

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(doc.GetBytes()), nil
}

func pageConfig() *entity.Config {
	return config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()
}

func addTotalRow(m core.Maroto, label, value string, bold bool) {
	style := props.Text{Size: 9, Align: align.Right}
	if bold {
		style.Style = fontstyle.Bold
	}
	m.AddRow(7,
		col.New(8),
		text.NewCol(2, label, style),
		text.NewCol(2, value, style),
	)
}
