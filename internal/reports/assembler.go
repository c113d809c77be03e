package reports

import (
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/merchantiq/pricewise-backend/internal/pricing"
	"github.com/merchantiq/pricewise-backend/pkg/db/models"
	"github.com/merchantiq/pricewise-backend/pkg/enums"
	"github.com/merchantiq/pricewise-backend/pkg/types"
)

// ReportMeta carries the header/footer fields stamped into every document.
type ReportMeta struct {
	ClientName      string
	ProjectName     string
	PreparedBy      string
	CompanyName     string
	ContactEmail    string
	PlatformVersion string
	GeneratedAt     time.Time
}

// AssembleInput is everything the assembler needs to render one document.
// A nil Template selects the fixed legacy layout.
type AssembleInput struct {
	Meta           ReportMeta
	Template       *models.ReportTemplate
	Summary        pricing.Summary
	GlobalDiscount types.GlobalDiscount
	ConfigFields   []models.ConfigurationDefinition
}

type lineView struct {
	Name        string
	Description string
	Unit        string
	Quantity    int
	UnitPrice   string
	Discount    string
	Total       string
	IsFree      bool
	IsOneTime   bool
}

type categoryView struct {
	Slug  string
	Total string
}

type sectionView struct {
	Number int
	Title  string
	IsHTML bool
	HTML   template.HTML
	Text   string
}

type configFieldView struct {
	Name   string
	Labels []string
}

type reportView struct {
	Meta            ReportMeta
	TemplateName    string
	Sections        []sectionView
	Lines           []lineView
	Categories      []categoryView
	ConfigFields    []configFieldView
	ShowGlobal      bool
	GlobalLabel     string
	ShowSavings     bool
	Savings         string
	SavingsRate     string
	HasRecurring    bool
	OneTimeTotal    string
	MonthlyTotal    string
	YearlyTotal     string
	TotalProject    string
	GeneratedAtText string
}

// Assembler renders pricing reports as self-contained HTML documents.
type Assembler struct {
	legacy *template.Template
	custom *template.Template
}

// NewAssembler parses the report layouts once.
func NewAssembler() *Assembler {
	return &Assembler{
		legacy: template.Must(template.New("legacy").Parse(legacyLayout)),
		custom: template.Must(template.New("custom").Parse(customLayout)),
	}
}

// Render produces the report document. Legacy mode is the fallback layout
// used before any template exists; custom mode walks the template sections.
func (a *Assembler) Render(input AssembleInput) (string, error) {
	view := buildView(input)

	layout := a.legacy
	if input.Template != nil && !input.Template.IsLegacy {
		layout = a.custom
	}

	var b strings.Builder
	if err := layout.Execute(&b, view); err != nil {
		return "", fmt.Errorf("rendering report: %w", err)
	}
	return b.String(), nil
}

func buildView(input AssembleInput) reportView {
	summary := input.Summary

	view := reportView{
		Meta:            input.Meta,
		HasRecurring:    summary.HasRecurring(),
		ShowSavings:     summary.Savings.IsPositive(),
		Savings:         pricing.FormatPrice(summary.Savings),
		SavingsRate:     summary.SavingsRate.Mul(hundredRate).StringFixed(1) + "%",
		OneTimeTotal:    pricing.FormatPrice(summary.OneTimeFinal),
		MonthlyTotal:    pricing.FormatPrice(summary.MonthlyFinal),
		YearlyTotal:     pricing.FormatPrice(summary.YearlyTotal),
		TotalProject:    pricing.FormatPrice(summary.TotalProject),
		GeneratedAtText: input.Meta.GeneratedAt.Format("January 2, 2006"),
	}

	if pricing.GlobalDiscountActive(input.GlobalDiscount) {
		view.ShowGlobal = true
		view.GlobalLabel = globalDiscountLabel(input.GlobalDiscount)
	}

	for _, line := range summary.Lines {
		view.Lines = append(view.Lines, lineView{
			Name:        line.Item.Name,
			Description: line.Item.Description,
			Unit:        line.Item.Unit,
			Quantity:    line.Item.Quantity,
			UnitPrice:   pricing.FormatPrice(line.Item.UnitPrice),
			Discount:    lineDiscountLabel(line.Item),
			Total:       pricing.FormatPrice(line.Total),
			IsFree:      line.Item.IsFree,
			IsOneTime:   line.IsOneTime,
		})
	}
	for _, ct := range summary.CategoryTotals {
		view.Categories = append(view.Categories, categoryView{
			Slug:  ct.Slug,
			Total: pricing.FormatPrice(ct.Total),
		})
	}

	for _, definition := range input.ConfigFields {
		if !definition.IsActive {
			continue
		}
		field := configFieldView{Name: definition.Name}
		for _, sub := range definition.Fields {
			field.Labels = append(field.Labels, sub.Label)
		}
		view.ConfigFields = append(view.ConfigFields, field)
	}

	if input.Template != nil {
		view.TemplateName = input.Template.Name
		for i, section := range input.Template.Sections {
			sv := sectionView{
				Number: i + 1,
				Title:  section.Title,
			}
			// Section bodies are authored by trusted admins; HTML passes
			// through unescaped.
			if section.SectionType == enums.SectionTypeHTML && section.BodyHTML != nil {
				sv.IsHTML = true
				sv.HTML = template.HTML(*section.BodyHTML)
			} else if section.BodyText != nil {
				sv.Text = *section.BodyText
			}
			view.Sections = append(view.Sections, sv)
		}
	}

	return view
}

// lineDiscountLabel formats the per-line discount for the itemized table.
// Comped lines and zero discounts render as no discount.
func lineDiscountLabel(item pricing.SelectedItem) string {
	if item.IsFree || !item.Discount.IsPositive() {
		return ""
	}

	var amount string
	if item.DiscountType == enums.DiscountTypePercentage {
		amount = item.Discount.StringFixed(0) + "%"
	} else {
		amount = pricing.FormatPrice(item.Discount)
	}
	if item.DiscountApplication == enums.DiscountApplicationUnit {
		return amount + " per unit"
	}
	return amount
}

func globalDiscountLabel(global types.GlobalDiscount) string {
	var amount string
	if global.Type == enums.DiscountTypePercentage {
		amount = global.Value.StringFixed(0) + "%"
	} else {
		amount = pricing.FormatPrice(global.Value)
	}

	switch global.Application {
	case enums.GlobalDiscountMonthly:
		return amount + " off monthly charges"
	case enums.GlobalDiscountOneTime:
		return amount + " off one-time charges"
	default:
		return amount + " off all charges"
	}
}

var hundredRate = decimal.NewFromInt(100)
