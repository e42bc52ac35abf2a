package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/usestring/rugsearch/internal/app"
	"github.com/usestring/rugsearch/internal/assets"
	"github.com/usestring/rugsearch/internal/mode"
	"github.com/usestring/rugsearch/internal/rank"
	"github.com/usestring/rugsearch/internal/render"
	"github.com/usestring/rugsearch/internal/session"
	"github.com/usestring/rugsearch/internal/upload"
	"github.com/usestring/rugsearch/pkg/types"
)

type searchFlags struct {
	mode        string
	image       string
	maxPrice    string
	minPrice    string
	sort        string
	json        bool
	jq          string
	checkImages bool
}

// jsonOutput is what --json prints.
type jsonOutput struct {
	Mode        types.SearchMode     `json:"mode"`
	Results     []types.SearchResult `json:"results"`
	ParsedQuery *types.ParsedQuery   `json:"parsed_query,omitempty"`
	Images      map[string]bool      `json:"images,omitempty"`
}

// NewSearchCommand runs one search and prints the results.
func NewSearchCommand(g *globals) *cobra.Command {
	var f searchFlags

	cmd := &cobra.Command{
		Use:   "search [text]",
		Short: "Search rugs by room image, text, or both",
		Long: `Search rugs by room image, text, or both.

The clip mode needs --image and uses text as an optional refinement. The sbert
and structured modes need text; structured also prints the facets the backend
parsed from it. Prices that are not numbers are ignored.`,
		Example: `  rugsearch search --image room.jpg "warm traditional"
  rugsearch search --mode structured "8x10 beige traditional rug" --max-price 20000
  rugsearch search --mode sbert "jute runner" --sort price --jq '.results[].title'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, g, f, strings.Join(args, " "))
		},
	}

	cmd.Flags().StringVarP(&f.mode, "mode", "m", "", "Search mode: clip, sbert, structured (default DEFAULT_MODE)")
	cmd.Flags().StringVarP(&f.image, "image", "i", "", "Room image file")
	cmd.Flags().StringVar(&f.maxPrice, "max-price", "", "Price ceiling")
	cmd.Flags().StringVar(&f.minPrice, "min-price", "", "Price floor")
	cmd.Flags().StringVarP(&f.sort, "sort", "s", "", "Sort by score or price (default DEFAULT_SORT)")
	cmd.Flags().BoolVar(&f.json, "json", false, "Print results as JSON")
	cmd.Flags().StringVar(&f.jq, "jq", "", "Print the output of a jq expression over {results, parsed_query}")
	cmd.Flags().BoolVar(&f.checkImages, "check-images", false, "Fetch result images and report which ones load")
	return cmd
}

func runSearch(cmd *cobra.Command, g *globals, f searchFlags, text string) error {
	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()
	ctx := cmd.Context()

	sessionOpts := []session.Option{
		session.WithNotifier(session.NotifierFunc(func(n session.Notice) {
			fmt.Fprintln(errOut, "! "+n.Message)
		})),
		session.WithObserver(func(s session.Snapshot) {
			if s.Loading && !f.json && f.jq == "" {
				p, _ := mode.ProfileFor(s.Mode)
				fmt.Fprintln(errOut, render.ResultsHeader(0, true)+"  ["+p.Badge+"]")
			}
		}),
	}
	if f.mode != "" {
		m, err := mode.Parse(f.mode)
		if err != nil {
			return err
		}
		sessionOpts = append(sessionOpts, session.WithMode(m))
	}
	if f.sort != "" {
		k, err := rank.ParseSortKey(f.sort)
		if err != nil {
			return err
		}
		sessionOpts = append(sessionOpts, session.WithSortKey(k))
	}

	a, err := app.New(g.cfg, app.WithSessionOptions(sessionOpts...))
	if err != nil {
		return err
	}
	defer a.Close()

	if f.jq != "" {
		if err := a.Query.ValidateExpression(f.jq); err != nil {
			return err
		}
	}

	if f.image != "" {
		file, err := upload.ReadFile(f.image)
		if err != nil {
			return err
		}
		if err := a.Session.SelectImage(file); err != nil {
			return err
		}
	}
	a.Session.SetTextQuery(text)
	a.Session.SetMaxPrice(f.maxPrice)
	a.Session.SetMinPrice(f.minPrice)

	if err := a.Session.Submit(ctx); err != nil {
		var verr *mode.ValidationError
		if errors.As(err, &verr) || errors.Is(err, session.ErrSearchFailed) {
			// The notice is already on stderr.
			return &ExitError{Code: 1, Err: err}
		}
		return err
	}
	snap := a.Session.Snapshot()

	var avail assets.Availability
	if f.checkImages {
		if avail, err = a.Assets.Prefetch(ctx, snap.Results); err != nil {
			return err
		}
	}

	switch {
	case f.jq != "":
		return printJQ(out, errOut, a, snap, f.jq)
	case f.json:
		return printJSON(out, snap, avail)
	default:
		return render.Page(out, render.View{
			Badge:    a.Session.Profile().Badge,
			Results:  snap.Results,
			Chips:    snap.VisibleParsedQuery().Chips(),
			Images:   avail,
			ImageURL: a.Client.ImageURL,
		})
	}
}

func printJQ(out, errOut io.Writer, a *app.App, snap session.Snapshot, expr string) error {
	resp := &types.SearchResponse{Results: snap.Results, ParsedQuery: snap.VisibleParsedQuery()}
	result, err := a.Query.QueryResponse(resp, expr, 0)
	if err != nil {
		return err
	}
	for _, v := range result.Values {
		data, err := json.Marshal(v)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
	}
	for _, e := range result.Errors {
		fmt.Fprintln(errOut, "jq: "+e)
	}
	if len(result.Errors) > 0 {
		return &ExitError{Code: 5}
	}
	return nil
}

func printJSON(out io.Writer, snap session.Snapshot, avail assets.Availability) error {
	doc := jsonOutput{
		Mode:        snap.Mode,
		Results:     snap.Results,
		ParsedQuery: snap.VisibleParsedQuery(),
	}
	if avail != nil {
		doc.Images = make(map[string]bool, len(avail))
		for path := range avail {
			doc.Images[path] = avail.Available(path)
		}
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}
