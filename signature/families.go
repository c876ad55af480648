package signature

import "regexp"

func patterns(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		out[i] = regexp.MustCompile(e)
	}
	return out
}

// defaultFamilies lists the known foreign platforms. Builder families come
// first so their more specific patterns win over generic commerce/form
// plugins.
func defaultFamilies() []*Family {
	return []*Family{
		{
			ID:         "elementor",
			Name:       "Elementor",
			Classes:    patterns(`^elementor(-|$)`, `^e-con(-|$)`, `^e-flex$`, `^e-grid$`),
			Shortcodes: []string{"elementor-template", "elementor_"},
			Assets: patterns(
				`(?i)/plugins/elementor(-pro)?/`,
				`(?i)elementor(-pro)?-frontend`,
				`elementorFrontend(Config)?`,
				`elementorModules`,
				`--e-global-`,
			),
			Functions: patterns(`^elementor_`, `^Elementor\\`),
		},
		{
			ID:         "divi",
			Name:       "Divi",
			Classes:    patterns(`^et_pb_`, `^et-db$`, `^et_builder`, `^et-l(--|$)`, `^et_section_`),
			Shortcodes: []string{"et_pb_"},
			Assets: patterns(
				`(?i)/themes/divi/`,
				`(?i)/plugins/divi-builder/`,
				`(?i)et-builder`,
				`ET_Builder`,
				`et_pb_custom`,
			),
			Functions: patterns(`^et_pb_`, `^et_builder_`, `^et_core_`),
		},
		{
			ID:         "beaver-builder",
			Name:       "Beaver Builder",
			Classes:    patterns(`^fl-(builder|row|col|module|node|rich-text|photo|button|heading)`),
			Shortcodes: []string{"fl_builder_insert_layout", "fl_"},
			Assets: patterns(
				`(?i)/plugins/bb-plugin/`,
				`(?i)/plugins/beaver-builder`,
				`(?i)fl-builder-layout`,
				`FLBuilder`,
			),
			Functions: patterns(`^FLBuilder`, `^fl_builder_`),
		},
		{
			ID:         "wpbakery",
			Name:       "WPBakery Page Builder",
			Classes:    patterns(`^vc_`, `^wpb_`, `^wpb-`),
			Shortcodes: []string{"vc_"},
			Assets: patterns(
				`(?i)/plugins/js_composer/`,
				`vc_js`,
				`(?i)js_composer`,
			),
			Functions: patterns(`^vc_`, `^wpb_`),
		},
		{
			ID:         "oxygen",
			Name:       "Oxygen Builder",
			Classes:    patterns(`^ct-`, `^oxy-`),
			Shortcodes: []string{"ct_", "oxy_"},
			Assets: patterns(
				`(?i)/plugins/oxygen/`,
				`(?i)/uploads/oxygen/`,
				`(?i)oxygen-universal`,
			),
			Functions: patterns(`^oxygen_`, `^ct_`, `^oxy_`),
		},
		{
			ID:         "bricks",
			Name:       "Bricks Builder",
			Classes:    patterns(`^brxe-`, `^brx-`, `^bricks-`),
			Shortcodes: []string{"bricks_template"},
			Assets: patterns(
				`(?i)/themes/bricks/`,
				`(?i)bricks-frontend`,
				`bricksData`,
			),
			Functions: patterns(`^bricks_`),
		},
		{
			ID:         "brizy",
			Name:       "Brizy",
			Classes:    patterns(`^brz(-|$)`, `^brz[A-Z]`),
			Shortcodes: []string{"brizy_"},
			Assets: patterns(
				`(?i)/plugins/brizy(-pro)?/`,
				`(?i)brizy-preview`,
				`__BRIZY`,
			),
			Functions: patterns(`^brizy_`),
		},
		{
			ID:         "kadence",
			Name:       "Kadence Blocks",
			Classes:    patterns(`^kb-`, `^kt-`, `^wp-block-kadence-`, `^kadence-`),
			Shortcodes: []string{"kadence_"},
			Assets: patterns(
				`(?i)/plugins/kadence-blocks(-pro)?/`,
				`(?i)kadence-blocks`,
				`kadence_blocks_`,
			),
			Functions: patterns(`^kadence_`),
		},
		{
			ID:         "optimizepress",
			Name:       "OptimizePress",
			Classes:    patterns(`^op3?-`, `^op3$`),
			Shortcodes: []string{"op_", "op3_"},
			Assets: patterns(
				`(?i)/plugins/op-builder/`,
				`(?i)/plugins/optimizepress`,
				`OP3\.`,
			),
			Functions: patterns(`^op3?_`),
		},
		{
			ID:         "crocoblock",
			Name:       "Crocoblock (JetPlugins)",
			Classes:    patterns(`^jet-`),
			Shortcodes: []string{"jet_engine", "jet_"},
			Assets: patterns(
				`(?i)/plugins/jet-[a-z-]+/`,
				`JetEngine`,
				`JetElements`,
			),
			Functions: patterns(`^jet_`),
		},
		{
			ID:         "woocommerce",
			Name:       "WooCommerce",
			Classes:    patterns(`^woocommerce`, `^wc-block`, `^wc_`),
			Shortcodes: []string{"woocommerce_", "products", "product_page", "add_to_cart"},
			Assets: patterns(
				`(?i)/plugins/woocommerce/`,
				`wc_add_to_cart_params`,
			),
			Functions: patterns(`^wc_`, `^woocommerce_`, `^WC$`),
		},
		{
			ID:         "contact-form-7",
			Name:       "Contact Form 7",
			Classes:    patterns(`^wpcf7`),
			Shortcodes: []string{"contact-form-7", "contact-form"},
			Assets: patterns(
				`(?i)/plugins/contact-form-7/`,
				`wpcf7`,
			),
			Functions: patterns(`^wpcf7_`),
		},
		{
			ID:         "slider-revolution",
			Name:       "Slider Revolution",
			Classes:    patterns(`^rev_slider`, `^rs-`, `^tp-`),
			Shortcodes: []string{"rev_slider"},
			Assets: patterns(
				`(?i)/plugins/revslider/`,
				`revapi\d*`,
			),
			Functions: patterns(`^rev_`),
		},
		{
			ID:         "gravity-forms",
			Name:       "Gravity Forms",
			Classes:    patterns(`^gform`, `^gfield`),
			Shortcodes: []string{"gravityform"},
			Assets: patterns(
				`(?i)/plugins/gravityforms/`,
				`gformInit`,
			),
			Functions: patterns(`^gform_`, `^GFAPI`),
		},
		{
			ID:        "advanced-custom-fields",
			Name:      "Advanced Custom Fields",
			Assets:    patterns(`(?i)/plugins/advanced-custom-fields(-pro)?/`),
			Functions: patterns(`^get_field$`, `^the_field$`, `^get_sub_field$`, `^have_rows$`, `^acf_`),
		},
		{
			ID:      "wix",
			Name:    "Wix",
			Classes: patterns(`^wixui-`, `^wix-`, `^comp-[a-z0-9]{6,}$`),
			Assets: patterns(
				`(?i)static\.wixstatic\.com`,
				`(?i)static\.parastorage\.com`,
			),
		},
		{
			ID:      "squarespace",
			Name:    "Squarespace",
			Classes: patterns(`^sqs-`),
			Assets: patterns(
				`(?i)static\d*\.squarespace\.com`,
				`(?i)assets\.squarespace\.com`,
				`(?i)sqspcdn\.com`,
			),
		},
		{
			ID:      "webflow",
			Name:    "Webflow",
			Classes: patterns(`^w-(nav|container|row|col|button|form|embed|inline-block|richtext|slider|tab|dropdown|layout)`),
			Assets: patterns(
				`(?i)webflow\.[a-z0-9]+\.js`,
				`(?i)assets\.website-files\.com`,
				`(?i)uploads-ssl\.webflow\.com`,
				`Webflow\.push`,
			),
		},
	}
}
