package builder

import (
	"context"
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/fwojciec/pageport"
)

var _ pageport.Builder = (*Divi)(nil)

// Divi output files.
const (
	DiviLayoutPath = "divi-layout.txt"
	DiviJSONPath   = "divi-layout.json"
)

// Divi renders the document as et_pb shortcodes and wraps them in the
// Divi Library portability format.
type Divi struct{}

// NewDivi creates a Divi builder.
func NewDivi() *Divi {
	return &Divi{}
}

// ID returns BuilderDivi.
func (d *Divi) ID() pageport.BuilderID {
	return pageport.BuilderDivi
}

// Generate writes divi-layout.txt and divi-layout.json.
func (d *Divi) Generate(ctx context.Context, in *pageport.BuildInput) ([]pageport.File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var sc shortcode
	for _, s := range sections(in) {
		diviSection(&sc, s)
	}
	layout := sc.String()

	portable, err := marshalJSON(map[string]any{
		"context":       "et_builder",
		"data":          map[string]string{"1": layout},
		"presets":       []any{},
		"global_colors": []any{},
		"images":        []any{},
		"thumbnails":    []any{},
	})
	if err != nil {
		return nil, err
	}

	files := []pageport.File{
		{Path: DiviLayoutPath, Group: pageport.GroupMarkup, Content: []byte(layout)},
		{Path: DiviJSONPath, Group: pageport.GroupMarkup, Content: portable},
	}
	return append(files, customAssets(in)...), nil
}

// Instructions explains how to import the layout.
func (d *Divi) Instructions() string {
	return `Divi import

1. In WordPress, go to Divi > Divi Library and click Import & Export.
2. On the Import tab choose divi-layout.json and import it.
3. Edit a page with the Divi Builder and load the layout from
   Add From Library > Your Saved Layouts.
4. Alternatively, paste the contents of divi-layout.txt into the Text tab
   of the classic editor and enable the Divi Builder.
5. Paste assets/custom.css into Divi > Theme Options > Custom CSS if present.`
}

// diviFractions are the column types Divi accepts.
var diviFractions = []struct {
	name string
	size int
}{
	{"4_4", 100}, {"3_4", 75}, {"2_3", 67}, {"3_5", 60}, {"1_2", 50},
	{"2_5", 40}, {"1_3", 33}, {"1_4", 25}, {"1_5", 20}, {"1_6", 17},
}

// diviColumnType returns the closest Divi fraction for a percentage.
func diviColumnType(size int) string {
	best, diff := diviFractions[0].name, 101
	for _, f := range diviFractions {
		d := f.size - size
		if d < 0 {
			d = -d
		}
		if d < diff {
			best, diff = f.name, d
		}
	}
	return best
}

// diviPadding converts a CSS padding shorthand to Divi's
// top|right|bottom|left|linked|linked form.
func diviPadding(css string) string {
	box := paddingBox(css)
	if box == nil {
		return ""
	}
	return fmt.Sprintf("%dpx|%dpx|%dpx|%dpx|false|false", box["top"], box["right"], box["bottom"], box["left"])
}

func diviSection(sc *shortcode, s *pageport.Section) {
	st := s.Settings
	sc.open("et_pb_section",
		"fb_built", "1",
		"background_color", st.Background,
		"custom_padding", diviPadding(st.Padding),
		"module_class", st.CSSClass,
		"box_shadow_style", boolOn(st.Shadow != nil, "preset1"),
		"box_shadow_color", shadowColor(st.Shadow),
	)
	sc.newline()

	types := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		types[i] = diviColumnType(c.Size)
	}
	sc.open("et_pb_row", "column_structure", strings.Join(types, ","))
	sc.newline()
	for i, c := range s.Columns {
		sc.open("et_pb_column", "type", types[i])
		sc.newline()
		for _, w := range c.Widgets {
			diviModule(sc, w, st.TextColor)
		}
		sc.close("et_pb_column")
	}
	sc.close("et_pb_row")
	sc.close("et_pb_section")
}

func boolOn(ok bool, v string) string {
	if ok {
		return v
	}
	return ""
}

func shadowColor(s *pageport.Shadow) string {
	if s == nil {
		return ""
	}
	return s.Color
}

func diviModule(sc *shortcode, w *pageport.Widget, textColor string) {
	switch p := w.Props.(type) {
	case pageport.HeadingProps:
		level := pageport.ClampHeadingLevel(p.Level)
		sc.element("et_pb_text", fmt.Sprintf("<h%d>%s</h%d>", level, html.EscapeString(p.Text), level),
			"text_orientation", p.Align,
			"header_text_color", firstNonEmpty(p.Color, textColor),
		)
	case pageport.TextProps:
		sc.element("et_pb_text", "<p>"+p.HTML+"</p>",
			"text_orientation", p.Align,
			"text_text_color", firstNonEmpty(p.Color, textColor),
		)
	case pageport.ImageProps:
		sc.open("et_pb_image", "src", p.Src, "alt", p.Alt, "url", p.Link, "max_width", pxOrEmpty(p.Width))
		sc.close("et_pb_image")
	case pageport.ButtonProps:
		custom := ""
		if p.Background != "" || p.Color != "" {
			custom = "on"
		}
		sc.open("et_pb_button",
			"button_text", p.Text,
			"button_url", p.URL,
			"button_alignment", p.Align,
			"custom_button", custom,
			"button_bg_color", p.Background,
			"button_text_color", p.Color,
		)
		sc.close("et_pb_button")
	case pageport.IconBoxProps:
		useIcon := ""
		if p.Image == "" && p.Icon != "" {
			useIcon = "on"
		}
		sc.open("et_pb_blurb", "title", p.Title, "image", p.Image, "use_icon", useIcon, "font_icon", p.Icon)
		sc.text(p.Description)
		sc.close("et_pb_blurb")
	case pageport.TestimonialProps:
		sc.open("et_pb_testimonial", "author", p.Author, "job_title", p.Role, "portrait_url", p.Image)
		sc.text(p.Content)
		sc.close("et_pb_testimonial")
	case pageport.CounterProps:
		sc.open("et_pb_number_counter", "title", p.Title, "number", strconv.Itoa(p.End), "percent_sign", boolOn(p.Suffix == "%", "on"))
		sc.close("et_pb_number_counter")
	case pageport.VideoProps:
		sc.open("et_pb_video", "src", p.URL)
		sc.close("et_pb_video")
	case pageport.ListProps, pageport.QuoteProps:
		sc.element("et_pb_text", renderWidget(w))
	case pageport.DividerProps:
		sc.open("et_pb_divider",
			"show_divider", "on",
			"color", p.Color,
			"divider_style", firstStyle(p.Style),
			"divider_weight", px(max(p.Weight, 1)),
		)
		sc.close("et_pb_divider")
	case pageport.SpacerProps:
		sc.open("et_pb_divider", "show_divider", "off", "height", px(p.Height))
		sc.close("et_pb_divider")
	default:
		sc.element("et_pb_code", renderWidget(w))
	}
}

func pxOrEmpty(n int) string {
	if n <= 0 {
		return ""
	}
	return px(n)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
