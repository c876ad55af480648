package builder

import (
	"context"

	"github.com/fwojciec/pageport"
)

var _ pageport.Builder = (*Crocoblock)(nil)

// CrocoblockTemplatePath holds the importable Elementor template using
// JetElements widgets.
const CrocoblockTemplatePath = "crocoblock-template.json"

// Crocoblock renders an Elementor template that prefers JetElements widgets
// where one exists for the widget kind.
type Crocoblock struct{}

// NewCrocoblock creates a Crocoblock builder.
func NewCrocoblock() *Crocoblock {
	return &Crocoblock{}
}

// ID returns BuilderCrocoblock.
func (c *Crocoblock) ID() pageport.BuilderID {
	return pageport.BuilderCrocoblock
}

// Generate writes crocoblock-template.json.
func (c *Crocoblock) Generate(ctx context.Context, in *pageport.BuildInput) ([]pageport.File, error) {
	return elementorFiles(ctx, in, CrocoblockTemplatePath, crocoblockWidget)
}

// Instructions explains how to import the template.
func (c *Crocoblock) Instructions() string {
	return `Crocoblock (JetElements for Elementor) import

1. Install and activate Elementor and JetElements.
2. Go to Templates > Saved Templates > Import Templates and choose
   crocoblock-template.json.
3. Edit a page with Elementor and insert the template from My Templates.
4. Paste assets/custom.css into Site Settings > Custom CSS if present.`
}

func crocoblockWidget(w *pageport.Widget) (string, map[string]any) {
	switch p := w.Props.(type) {
	case pageport.ButtonProps:
		return "jet-button", map[string]any{
			"button_label_normal": p.Text,
			"button_url":          elementorURL(p.URL),
		}
	case pageport.IconBoxProps:
		s := map[string]any{
			"title_text":       p.Title,
			"description_text": p.Description,
		}
		if p.Image != "" {
			s["image"] = map[string]any{"url": p.Image, "id": ""}
		} else {
			s["selected_icon"] = map[string]any{"value": p.Icon, "library": iconLibrary(p.Icon)}
		}
		return "jet-services", s
	case pageport.TestimonialProps:
		item := map[string]any{
			"_id":           shortID(w.ID),
			"item_comment":  p.Content,
			"item_name":     p.Author,
			"item_position": p.Role,
		}
		if p.Image != "" {
			item["item_image"] = map[string]any{"url": p.Image, "id": ""}
		}
		return "jet-testimonials", map[string]any{"item_list": []any{item}}
	}
	return elementorWidget(w)
}
