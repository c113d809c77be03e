package reports

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/merchantiq/pricewise-backend/internal/pricing"
	"github.com/merchantiq/pricewise-backend/pkg/db/models"
	"github.com/merchantiq/pricewise-backend/pkg/enums"
	"github.com/merchantiq/pricewise-backend/pkg/types"
)

func testMeta() ReportMeta {
	return ReportMeta{
		ClientName:      "Acme Retail",
		ProjectName:     "Storefront Rollout",
		PreparedBy:      "Dana",
		CompanyName:     "PriceWise",
		ContactEmail:    "sales@pricewise.example",
		PlatformVersion: "1.4.0",
		GeneratedAt:     time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC),
	}
}

func oneTimeSummary() pricing.Summary {
	return pricing.Summary{
		Lines: []pricing.LineResult{
			{
				Item: pricing.SelectedItem{
					Name:      "Terminal Setup",
					Unit:      "location",
					Quantity:  2,
					UnitPrice: decimal.NewFromInt(250),
				},
				Total:     decimal.NewFromInt(500),
				IsOneTime: true,
			},
		},
		OneTimeFinal: decimal.NewFromInt(500),
		TotalProject: decimal.NewFromInt(500),
	}
}

func recurringSummary() pricing.Summary {
	summary := oneTimeSummary()
	summary.Lines = append(summary.Lines, pricing.LineResult{
		Item: pricing.SelectedItem{
			Name:      "Gateway",
			Unit:      "month",
			Quantity:  1,
			UnitPrice: decimal.NewFromInt(99),
		},
		Total: decimal.NewFromInt(99),
	})
	summary.MonthlyFinal = decimal.NewFromInt(99)
	summary.YearlyTotal = decimal.NewFromInt(1188)
	summary.TotalProject = decimal.NewFromInt(1688)
	return summary
}

func TestRenderLegacyHidesRecurringRowsWhenOneTimeOnly(t *testing.T) {
	html, err := NewAssembler().Render(AssembleInput{
		Meta:    testMeta(),
		Summary: oneTimeSummary(),
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(html, "Monthly Charges") || strings.Contains(html, "Yearly Charges") {
		t.Fatal("recurring rows should be hidden for one-time-only selections")
	}
	if !strings.Contains(html, "One-Time Charges") {
		t.Fatal("missing one-time total row")
	}
}

func TestRenderLegacyShowsRecurringRows(t *testing.T) {
	html, err := NewAssembler().Render(AssembleInput{
		Meta:    testMeta(),
		Summary: recurringSummary(),
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(html, "Monthly Charges") || !strings.Contains(html, "Yearly Charges") {
		t.Fatal("expected monthly and yearly rows")
	}
}

func TestRenderCustomNumbersSectionsInOrder(t *testing.T) {
	intro := "<p>Welcome aboard.</p>"
	terms := "Net 30 payment terms apply."
	template := &models.ReportTemplate{
		Name: "Enterprise Proposal",
		Sections: []models.TemplateSection{
			{SectionType: enums.SectionTypeHTML, Title: "Introduction", BodyHTML: &intro},
			{SectionType: enums.SectionTypeText, Title: "Terms", BodyText: &terms},
		},
	}

	html, err := NewAssembler().Render(AssembleInput{
		Meta:     testMeta(),
		Template: template,
		Summary:  recurringSummary(),
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	first := strings.Index(html, "1. Introduction")
	second := strings.Index(html, "2. Terms")
	if first == -1 || second == -1 || second < first {
		t.Fatalf("sections out of order: intro at %d, terms at %d", first, second)
	}
	if !strings.Contains(html, "Table of Contents") {
		t.Fatal("missing table of contents")
	}
}

func TestRenderSectionBodiesHTMLRawTextEscaped(t *testing.T) {
	body := "<ul><li>Dedicated support</li></ul>"
	note := "Use <b> sparingly"
	template := &models.ReportTemplate{
		Name: "Proposal",
		Sections: []models.TemplateSection{
			{SectionType: enums.SectionTypeHTML, Title: "Perks", BodyHTML: &body},
			{SectionType: enums.SectionTypeText, Title: "Note", BodyText: &note},
		},
	}

	html, err := NewAssembler().Render(AssembleInput{
		Meta:     testMeta(),
		Template: template,
		Summary:  oneTimeSummary(),
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(html, "<ul><li>Dedicated support</li></ul>") {
		t.Fatal("html section body should pass through unescaped")
	}
	if !strings.Contains(html, "Use &lt;b&gt; sparingly") {
		t.Fatal("text section body should be escaped")
	}
}

func TestRenderGlobalDiscountLabel(t *testing.T) {
	html, err := NewAssembler().Render(AssembleInput{
		Meta:    testMeta(),
		Summary: recurringSummary(),
		GlobalDiscount: types.GlobalDiscount{
			Value:       decimal.NewFromInt(10),
			Type:        enums.DiscountTypePercentage,
			Application: enums.GlobalDiscountMonthly,
		},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(html, "10% off monthly charges") {
		t.Fatal("expected global discount label")
	}
}

func TestRenderOmitsGlobalDiscountWhenInactive(t *testing.T) {
	html, err := NewAssembler().Render(AssembleInput{
		Meta:    testMeta(),
		Summary: oneTimeSummary(),
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(html, "Global discount") {
		t.Fatal("global discount paragraph should be omitted")
	}
}

func TestRenderMarksFreeLines(t *testing.T) {
	summary := oneTimeSummary()
	summary.Lines[0].Item.IsFree = true
	summary.Lines[0].Total = decimal.Zero

	html, err := NewAssembler().Render(AssembleInput{
		Meta:     testMeta(),
		Template: &models.ReportTemplate{Name: "Proposal"},
		Summary:  summary,
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(html, `<span class="free">FREE</span>`) {
		t.Fatal("expected FREE badge on comped line")
	}
}

func TestRenderLegacyOmitsItemizedTable(t *testing.T) {
	html, err := NewAssembler().Render(AssembleInput{
		Meta:    testMeta(),
		Summary: recurringSummary(),
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(html, "Itemized Pricing") {
		t.Fatal("legacy layout should not include the itemized table")
	}
	if strings.Contains(html, "Terminal Setup") {
		t.Fatal("legacy layout should stick to the summary rows")
	}
	if !strings.Contains(html, "One-Time Charges") || !strings.Contains(html, "Monthly Charges") {
		t.Fatal("expected summary rows")
	}
}

func TestRenderItemizedTableShowsDescriptionAndDiscount(t *testing.T) {
	summary := oneTimeSummary()
	summary.Lines = append(summary.Lines, pricing.LineResult{
		Item: pricing.SelectedItem{
			Name:                "Gateway",
			Description:         "Monthly gateway subscription",
			Unit:                "month",
			Quantity:            1,
			UnitPrice:           decimal.NewFromInt(100),
			Discount:            decimal.NewFromInt(25),
			DiscountType:        enums.DiscountTypePercentage,
			DiscountApplication: enums.DiscountApplicationUnit,
		},
		Total: decimal.NewFromInt(75),
	})

	html, err := NewAssembler().Render(AssembleInput{
		Meta:     testMeta(),
		Template: &models.ReportTemplate{Name: "Proposal"},
		Summary:  summary,
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(html, "Monthly gateway subscription") {
		t.Fatal("expected line description in the itemized table")
	}
	if !strings.Contains(html, "25% per unit") {
		t.Fatal("expected per-line discount label")
	}
	// undiscounted lines show a dash instead of an empty cell
	if !strings.Contains(html, "&mdash;") {
		t.Fatal("expected placeholder for undiscounted lines")
	}
}

func TestLineDiscountLabel(t *testing.T) {
	fixed := pricing.SelectedItem{
		Discount:            decimal.NewFromInt(50),
		DiscountType:        enums.DiscountTypeFixed,
		DiscountApplication: enums.DiscountApplicationTotal,
	}
	if got := lineDiscountLabel(fixed); got != "$50.00" {
		t.Fatalf("fixed discount label = %q", got)
	}

	comped := fixed
	comped.IsFree = true
	if got := lineDiscountLabel(comped); got != "" {
		t.Fatalf("comped line should have no discount label, got %q", got)
	}

	if got := lineDiscountLabel(pricing.SelectedItem{}); got != "" {
		t.Fatalf("zero discount should have no label, got %q", got)
	}
}

func TestRenderIncludesOnlyActiveConfigFields(t *testing.T) {
	template := &models.ReportTemplate{Name: "Proposal"}
	html, err := NewAssembler().Render(AssembleInput{
		Meta:     testMeta(),
		Template: template,
		Summary:  oneTimeSummary(),
		ConfigFields: []models.ConfigurationDefinition{
			{Name: "Gateway Credentials", IsActive: true, Fields: []models.ConfigurationField{{Label: "Merchant ID"}}},
			{Name: "Retired Block", IsActive: false},
		},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(html, "Gateway Credentials") || !strings.Contains(html, "Merchant ID") {
		t.Fatal("expected active configuration definition")
	}
	if strings.Contains(html, "Retired Block") {
		t.Fatal("inactive configuration definition should be omitted")
	}
}
