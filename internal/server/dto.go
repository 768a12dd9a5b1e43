package server

import (
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	md2card "github.com/alnah/go-md2card"
	"github.com/alnah/go-md2card/internal/imagestore"
	"github.com/alnah/go-md2card/internal/search"
)

const maxMarkdownRunes = 1 << 20

var httpSchemePattern = regexp.MustCompile(`^https?://`)

type backgroundDTO struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Direction string `json:"direction,omitempty"`
}

type renderRequest struct {
	Markdown   string         `json:"markdown"`
	Theme      string         `json:"theme,omitempty"`
	Width      int            `json:"width,omitempty"`
	Height     int            `json:"height,omitempty"`
	Background *backgroundDTO `json:"background,omitempty"`
	CSS        string         `json:"css,omitempty"`
}

// Validate checks the request shape. Color syntax is left to the converter.
func (r renderRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Markdown, validation.Required, validation.RuneLength(0, maxMarkdownRunes)),
		validation.Field(&r.Theme, validation.RuneLength(0, 64)),
		validation.Field(&r.Width, validation.When(r.Width != 0,
			validation.Min(md2card.MinCardSide), validation.Max(md2card.MaxCardSide))),
		validation.Field(&r.Height, validation.When(r.Height != 0,
			validation.Min(md2card.MinCardSide), validation.Max(md2card.MaxCardSide))),
		validation.Field(&r.Background),
	)
}

// Validate requires both gradient colors.
func (b backgroundDTO) Validate() error {
	return validation.ValidateStruct(&b,
		validation.Field(&b.From, validation.Required),
		validation.Field(&b.To, validation.Required),
	)
}

// input maps the request to an HTML-only conversion.
func (r renderRequest) input() md2card.Input {
	in := md2card.Input{
		Markdown: r.Markdown,
		Theme:    r.Theme,
		CSS:      r.CSS,
		HTMLOnly: true,
	}
	if r.Width != 0 || r.Height != 0 {
		in.Size = &md2card.CardSize{Width: r.Width, Height: r.Height}
	}
	if r.Background != nil {
		in.Background = &md2card.Background{
			Color1:    r.Background.From,
			Color2:    r.Background.To,
			Direction: r.Background.Direction,
		}
	}
	return in
}

type cardDTO struct {
	Kind       string   `json:"kind"`
	Label      string   `json:"label"`
	Emoji      string   `json:"emoji,omitempty"`
	Title      string   `json:"title,omitempty"`
	Subtitle   string   `json:"subtitle,omitempty"`
	HTML       string   `json:"html,omitempty"`
	Tags       []string `json:"tags,omitempty"`
	Page       string   `json:"page,omitempty"`
	PageNumber int      `json:"page_number,omitempty"`
}

type warningDTO struct {
	ID    string `json:"id"`
	Error string `json:"error"`
}

type renderResponse struct {
	Committed bool         `json:"committed"`
	Cards     []cardDTO    `json:"cards"`
	HTML      string       `json:"html"`
	Warnings  []warningDTO `json:"warnings"`
}

func newRenderResponse(res *md2card.ConvertResult, committed bool) renderResponse {
	out := renderResponse{
		Committed: committed,
		Cards:     make([]cardDTO, 0, len(res.Cards)),
		HTML:      string(res.HTML),
		Warnings:  make([]warningDTO, 0, len(res.Warnings)),
	}
	for _, c := range res.Cards {
		out.Cards = append(out.Cards, cardDTO{
			Kind:       c.Kind.String(),
			Label:      c.Label(),
			Emoji:      c.Emoji,
			Title:      c.Title,
			Subtitle:   c.Subtitle,
			HTML:       c.HTML,
			Tags:       c.Tags,
			Page:       c.PageIndicator(),
			PageNumber: c.PageNumber,
		})
	}
	for _, w := range res.Warnings {
		out.Warnings = append(out.Warnings, warningDTO{ID: w.ID, Error: w.Err.Error()})
	}
	return out
}

type imageDTO struct {
	ID        string    `json:"id"`
	Reference string    `json:"reference"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at,omitzero"`
}

type uploadResponse struct {
	imageDTO
	Evicted []string `json:"evicted,omitempty"`
}

type listImagesResponse struct {
	Images []imageDTO `json:"images"`
}

func newImageDTO(e imagestore.Entry) imageDTO {
	return imageDTO{
		ID:        e.ID,
		Reference: imagestore.Reference(e.ID),
		Size:      e.Size,
		CreatedAt: e.CreatedAt,
	}
}

type searchResponse struct {
	Keyword string          `json:"keyword"`
	Results []search.Result `json:"results"`
}

type importRequest struct {
	URL string `json:"url"`
}

// Validate requires an absolute http(s) URL.
func (r importRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.URL, validation.Required, is.URL,
			validation.Match(httpSchemePattern).Error("must be an http or https URL")),
	)
}
