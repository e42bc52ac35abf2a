package tools

import (
	"github.com/usestring/rugsearch/internal/assets"
	"github.com/usestring/rugsearch/internal/render"
	"github.com/usestring/rugsearch/internal/session"
	"github.com/usestring/rugsearch/pkg/types"
)

// ResultInfo is one ranked result as tools report it.
type ResultInfo struct {
	Rank           int      `json:"rank"`
	Title          string   `json:"title"`
	Price          *float64 `json:"price,omitempty"`
	PriceDisplay   string   `json:"price_display"`
	Score          *float64 `json:"score,omitempty"`
	ScoreDisplay   string   `json:"score_display"`
	Why            string   `json:"why,omitempty"`
	Image          string   `json:"image,omitempty"`
	ImageURL       string   `json:"image_url,omitempty"`
	ImageAvailable *bool    `json:"image_available,omitempty"` // Set when images were checked
	Placeholder    string   `json:"placeholder"`
	Model          string   `json:"model,omitempty"`
}

// StateOutput is the session state as tools report it.
type StateOutput struct {
	Mode        string             `json:"mode"`
	ModeLabel   string             `json:"mode_label"`
	TextQuery   string             `json:"text_query"`
	MaxPrice    string             `json:"max_price"`
	MinPrice    string             `json:"min_price"`
	Sort        string             `json:"sort"`
	HasImage    bool               `json:"has_image"`
	ImageName   string             `json:"image_name,omitempty"`
	PreviewPath string             `json:"preview_path,omitempty"`
	Loading     bool               `json:"loading"`
	LastOutcome string             `json:"last_outcome"`
	LastError   string             `json:"last_error,omitempty"`
	ResultCount int                `json:"result_count"`
	Results     []ResultInfo       `json:"results,omitempty"`
	ParsedQuery *types.ParsedQuery `json:"parsed_query,omitempty"` // Only in structured mode
	Chips       []string           `json:"chips,omitempty"`
}

func (d *Deps) resultInfos(results []types.SearchResult, avail assets.Availability) []ResultInfo {
	out := make([]ResultInfo, len(results))
	for i, r := range results {
		info := ResultInfo{
			Rank:         i + 1,
			Title:        render.FormatTitle(r.Title),
			Price:        r.Price,
			PriceDisplay: render.FormatPrice(r.Price),
			Score:        r.Score,
			ScoreDisplay: render.FormatScore(r.Score),
			Why:          r.Why,
			Image:        r.Image,
			Placeholder:  assets.Placeholder(r.Title),
			Model:        r.Model,
		}
		if r.Image != "" && d.Client != nil {
			info.ImageURL = d.Client.ImageURL(r.Image)
		}
		if avail != nil {
			ok := avail.Available(r.Image)
			info.ImageAvailable = &ok
		}
		out[i] = info
	}
	return out
}

func (d *Deps) stateOutput(s session.Snapshot, avail assets.Availability) StateOutput {
	label := string(s.Mode)
	if p := d.Session.Profile(); p.Mode == s.Mode {
		label = p.Label
	}
	visible := s.VisibleParsedQuery()
	return StateOutput{
		Mode:        string(s.Mode),
		ModeLabel:   label,
		TextQuery:   s.TextQuery,
		MaxPrice:    s.MaxPriceRaw,
		MinPrice:    s.MinPriceRaw,
		Sort:        string(s.SortKey),
		HasImage:    s.HasImage,
		ImageName:   s.ImageName,
		PreviewPath: s.PreviewPath,
		Loading:     s.Loading,
		LastOutcome: string(s.LastOutcome),
		LastError:   s.LastError,
		ResultCount: len(s.Results),
		Results:     d.resultInfos(s.Results, avail),
		ParsedQuery: visible,
		Chips:       visible.Chips(),
	}
}
