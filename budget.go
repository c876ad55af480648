package pageport

import (
	"fmt"
	"strconv"
)

// Size units.
const (
	KiB int64 = 1024
	MiB int64 = 1024 * KiB
)

// Budget holds maximum byte sizes per asset category.
type Budget struct {
	HTML       int64 `json:"html" yaml:"html"`
	CSSFile    int64 `json:"cssFile" yaml:"css_file"`
	CSSTotal   int64 `json:"cssTotal" yaml:"css_total"`
	JSFile     int64 `json:"jsFile" yaml:"js_file"`
	JSTotal    int64 `json:"jsTotal" yaml:"js_total"`
	ImageFile  int64 `json:"imageFile" yaml:"image_file"`
	ImageTotal int64 `json:"imageTotal" yaml:"image_total"`
	Total      int64 `json:"total" yaml:"total"`

	// AllowOverride lets an export proceed despite violations.
	AllowOverride bool `json:"allowOverride" yaml:"allow_override"`
}

// DefaultBudget returns the default size budget.
func DefaultBudget() Budget {
	return Budget{
		HTML:       500 * KiB,
		CSSFile:    100 * KiB,
		CSSTotal:   300 * KiB,
		JSFile:     150 * KiB,
		JSTotal:    500 * KiB,
		ImageFile:  500 * KiB,
		ImageTotal: 5 * MiB,
		Total:      10 * MiB,
	}
}

// Merge returns b with every zero limit replaced by the default value.
func (b Budget) Merge(def Budget) Budget {
	pick := func(v, d int64) int64 {
		if v > 0 {
			return v
		}
		return d
	}
	return Budget{
		HTML:          pick(b.HTML, def.HTML),
		CSSFile:       pick(b.CSSFile, def.CSSFile),
		CSSTotal:      pick(b.CSSTotal, def.CSSTotal),
		JSFile:        pick(b.JSFile, def.JSFile),
		JSTotal:       pick(b.JSTotal, def.JSTotal),
		ImageFile:     pick(b.ImageFile, def.ImageFile),
		ImageTotal:    pick(b.ImageTotal, def.ImageTotal),
		Total:         pick(b.Total, def.Total),
		AllowOverride: b.AllowOverride || def.AllowOverride,
	}
}

// BudgetCategory names the asset category a violation applies to.
type BudgetCategory string

// Budget categories.
const (
	CategoryHTML       BudgetCategory = "html"
	CategoryCSSFile    BudgetCategory = "css-file"
	CategoryCSSTotal   BudgetCategory = "css-total"
	CategoryJSFile     BudgetCategory = "js-file"
	CategoryJSTotal    BudgetCategory = "js-total"
	CategoryImageFile  BudgetCategory = "image-file"
	CategoryImageTotal BudgetCategory = "image-total"
	CategoryTotal      BudgetCategory = "total"
)

// Severity grades a violation or dependency finding.
type Severity string

// Severities.
const (
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// BudgetViolation records one category exceeding its budget.
type BudgetViolation struct {
	Category       BudgetCategory `json:"category"`
	Item           string         `json:"item"`
	Current        int64          `json:"current"`
	Budget         int64          `json:"budget"`
	ExceededBytes  int64          `json:"exceededBytes"`
	Severity       Severity       `json:"severity"`
	Recommendation string         `json:"recommendation"`
}

// BudgetImage is one image considered by the budget validator.
type BudgetImage struct {
	Path string
	Size int64
}

// BudgetInput is the unmodified content measured by the budget validator.
type BudgetInput struct {
	HTML   string
	CSS    []string
	JS     []string
	Images []BudgetImage
}

// BudgetSizes are the measured byte totals.
type BudgetSizes struct {
	HTML   int64 `json:"html"`
	CSS    int64 `json:"css"`
	JS     int64 `json:"js"`
	Images int64 `json:"images"`
	Total  int64 `json:"total"`
}

// BudgetReport is the outcome of budget validation.
type BudgetReport struct {
	Budget           Budget            `json:"budget"`
	Sizes            BudgetSizes       `json:"sizes"`
	Violations       []BudgetViolation `json:"violations"`
	CanExport        bool              `json:"canExport"`
	RequiresOverride bool              `json:"requiresOverride"`
}

// CriticalCount returns the number of critical violations.
func (r *BudgetReport) CriticalCount() int {
	n := 0
	for _, v := range r.Violations {
		if v.Severity == SeverityCritical {
			n++
		}
	}
	return n
}

// ValidateBudget measures in against b. It is a pure function and must be
// given pre-transform content so sizes reflect the captured input.
//
// A violation is critical when the current size exceeds 1.5× its budget
// (2× for individual CSS and JS files), otherwise a warning.
func ValidateBudget(in BudgetInput, b Budget) *BudgetReport {
	r := &BudgetReport{Budget: b}

	check := func(cat BudgetCategory, item string, current, budget int64, factor float64) {
		if budget <= 0 || current <= budget {
			return
		}
		sev := SeverityWarning
		if float64(current) > float64(budget)*factor {
			sev = SeverityCritical
		}
		r.Violations = append(r.Violations, BudgetViolation{
			Category:       cat,
			Item:           item,
			Current:        current,
			Budget:         budget,
			ExceededBytes:  current - budget,
			Severity:       sev,
			Recommendation: recommendation(cat),
		})
	}

	r.Sizes.HTML = int64(len(in.HTML))
	check(CategoryHTML, "html", r.Sizes.HTML, b.HTML, 1.5)

	for i, css := range in.CSS {
		n := int64(len(css))
		r.Sizes.CSS += n
		check(CategoryCSSFile, "css["+strconv.Itoa(i)+"]", n, b.CSSFile, 2)
	}
	check(CategoryCSSTotal, "css", r.Sizes.CSS, b.CSSTotal, 1.5)

	for i, js := range in.JS {
		n := int64(len(js))
		r.Sizes.JS += n
		check(CategoryJSFile, "js["+strconv.Itoa(i)+"]", n, b.JSFile, 2)
	}
	check(CategoryJSTotal, "js", r.Sizes.JS, b.JSTotal, 1.5)

	for _, img := range in.Images {
		r.Sizes.Images += img.Size
		check(CategoryImageFile, img.Path, img.Size, b.ImageFile, 1.5)
	}
	check(CategoryImageTotal, "images", r.Sizes.Images, b.ImageTotal, 1.5)

	r.Sizes.Total = r.Sizes.HTML + r.Sizes.CSS + r.Sizes.JS + r.Sizes.Images
	check(CategoryTotal, "page", r.Sizes.Total, b.Total, 1.5)

	r.CanExport = len(r.Violations) == 0 || b.AllowOverride
	r.RequiresOverride = len(r.Violations) > 0 && b.AllowOverride
	return r
}

func recommendation(cat BudgetCategory) string {
	switch cat {
	case CategoryHTML:
		return "Remove hidden or duplicated markup and inline data blobs before exporting."
	case CategoryCSSFile:
		return "Split the stylesheet or purge unused selectors."
	case CategoryCSSTotal:
		return "Purge unused CSS across stylesheets and drop framework bundles the page does not use."
	case CategoryJSFile:
		return "Remove unused libraries or defer non-critical code."
	case CategoryJSTotal:
		return "Drop tracking and builder runtime scripts; the exported page does not need them."
	case CategoryImageFile:
		return "Compress the image or convert it to WebP/AVIF."
	case CategoryImageTotal:
		return "Compress images and lazy-load those below the fold."
	case CategoryTotal:
		return "Reduce overall page weight; consider exporting without large media."
	}
	return ""
}

// FormatBytes renders a byte count using binary units.
func FormatBytes(n int64) string {
	switch {
	case n >= MiB:
		return fmt.Sprintf("%.2f MiB", float64(n)/float64(MiB))
	case n >= KiB:
		return fmt.Sprintf("%.1f KiB", float64(n)/float64(KiB))
	}
	return fmt.Sprintf("%d B", n)
}
