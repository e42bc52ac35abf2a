package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/usestring/rugsearch/internal/assets"
	"github.com/usestring/rugsearch/pkg/types"
)

// SkeletonRows is the number of placeholder rows drawn while loading.
const SkeletonRows = 8

const skeletonCell = "░░░░░░"

// View is everything one results page shows.
type View struct {
	Badge    string
	Loading  bool
	Results  []types.SearchResult
	Chips    []string
	Notice   string
	Images   assets.Availability // nil when availability was not checked
	ImageURL func(path string) string
}

// Page writes the results page for v.
func Page(w io.Writer, v View) error {
	header := ResultsHeader(len(v.Results), v.Loading)
	if v.Badge != "" {
		header += "  [" + v.Badge + "]"
	}
	if _, err := fmt.Fprintln(w, header); err != nil {
		return err
	}
	if v.Notice != "" {
		fmt.Fprintln(w, "! "+v.Notice)
	}
	if len(v.Chips) > 0 {
		chips := make([]string, len(v.Chips))
		for i, c := range v.Chips {
			chips[i] = "(" + c + ")"
		}
		fmt.Fprintln(w, strings.Join(chips, " "))
	}

	if !v.Loading && len(v.Results) == 0 {
		_, err := fmt.Fprintln(w, EmptyState)
		return err
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"#", "TITLE", "PRICE", "SCORE", "WHY", "IMAGE"})
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoWrapText(true)
	table.SetColWidth(40)
	table.SetBorder(false)
	table.SetHeaderLine(false)
	table.SetTablePadding("  ")
	table.SetNoWhiteSpace(true)

	if v.Loading {
		for i := 0; i < SkeletonRows; i++ {
			table.Append([]string{strconv.Itoa(i + 1), skeletonCell, skeletonCell, skeletonCell, skeletonCell, skeletonCell})
		}
	} else {
		for i, r := range v.Results {
			table.Append(Row(i+1, r, v.Images, v.ImageURL))
		}
	}
	table.Render()
	return nil
}

// Row formats one result as table cells.
func Row(n int, r types.SearchResult, images assets.Availability, imageURL func(string) string) []string {
	return []string{
		strconv.Itoa(n),
		FormatTitle(r.Title),
		FormatPrice(r.Price),
		FormatScore(r.Score),
		r.Why,
		ImageCell(r, images, imageURL),
	}
}

// ImageCell shows the image location, or the placeholder when the image is
// missing or failed to load.
func ImageCell(r types.SearchResult, images assets.Availability, imageURL func(string) string) string {
	if r.Image == "" || (images != nil && !images.Available(r.Image)) {
		return fmt.Sprintf("Image unavailable (%s)", assets.Placeholder(r.Title))
	}
	if imageURL != nil {
		return imageURL(r.Image)
	}
	return r.Image
}
