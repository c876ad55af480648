package goquery_test

import (
	"context"
	"errors"
	"testing"

	"github.com/fwojciec/pageport"
	"github.com/fwojciec/pageport/goquery"
	"github.com/fwojciec/pageport/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEliminateBlocks(t *testing.T) {
	t.Parallel()

	t.Run("cleans inner markup attributes and class names recursively", func(t *testing.T) {
		t.Parallel()

		in := []pageport.Block{{
			Name:  "core/group",
			Attrs: map[string]any{"className": "elementor-section hero", "tagName": "header"},
			InnerBlocks: []pageport.Block{{
				Name:      "core/paragraph",
				Attrs:     map[string]any{"content": "[et_pb_text]Hi[/et_pb_text]"},
				InnerHTML: `<p class="et_pb_text_inner lead">[et_pb_text]Hi[/et_pb_text]</p>`,
			}},
		}}

		out, r, err := goquery.EliminateBlocks(context.Background(), goquery.NewEliminator(nil), in)

		require.NoError(t, err)
		assert.Equal(t, "blocks", r.Target)
		require.Len(t, out, 1)
		assert.Equal(t, "hero", out[0].Attrs["className"])
		assert.Equal(t, "header", out[0].Attrs["tagName"])
		require.Len(t, out[0].InnerBlocks, 1)
		assert.Equal(t, "Hi", out[0].InnerBlocks[0].Attrs["content"])
		assert.Equal(t, `<p class="lead">Hi</p>`, out[0].InnerBlocks[0].InnerHTML)
		assert.Equal(t, map[string]int{"elementor": 1, "divi": 5}, families(r.RemovedItems))
		assert.Less(t, r.NewSize, r.OriginalSize)

		assert.Equal(t, "elementor-section hero", in[0].Attrs["className"])
		assert.Equal(t, `<p class="et_pb_text_inner lead">[et_pb_text]Hi[/et_pb_text]</p>`, in[0].InnerBlocks[0].InnerHTML)
	})

	t.Run("drops className when every token is foreign", func(t *testing.T) {
		t.Parallel()

		in := []pageport.Block{{Name: "core/group", Attrs: map[string]any{"className": "et_pb_section"}}}

		out, r, err := goquery.EliminateBlocks(context.Background(), goquery.NewEliminator(nil), in)

		require.NoError(t, err)
		assert.NotContains(t, out[0].Attrs, "className")
		assert.Len(t, r.RemovedItems, 1)
	})

	t.Run("clean blocks are unchanged", func(t *testing.T) {
		t.Parallel()

		in := []pageport.Block{{Name: "core/paragraph", Attrs: map[string]any{"className": "lead"}, InnerHTML: "<p>Hi</p>"}}

		out, r, err := goquery.EliminateBlocks(context.Background(), goquery.NewEliminator(nil), in)

		require.NoError(t, err)
		assert.Equal(t, in, out)
		assert.Empty(t, r.RemovedItems)
	})

	t.Run("eliminator failure is returned", func(t *testing.T) {
		t.Parallel()

		e := &mock.Eliminator{
			EliminateHTMLFn: func(_ context.Context, _ string) (*pageport.EliminationResult, error) {
				return nil, errors.New("boom")
			},
		}

		_, _, err := goquery.EliminateBlocks(context.Background(), e, []pageport.Block{{Name: "core/html", InnerHTML: "<b>x</b>"}})

		require.Error(t, err)
	})
}
