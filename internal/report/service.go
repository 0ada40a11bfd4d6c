// Package report renders a child's growth and screening status as a PDF and
// delivers it to a Telegram chat.
package report

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/signintech/gopdf"

	"child-health-tracker/internal/growth"
	"child-health-tracker/internal/screening"
)

var ErrDeliveryDisabled = errors.New("report delivery is not configured")

type TelegramClient interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
	SendDocument(ctx context.Context, chatID int64, fileData []byte, fileName, caption string) error
}

type GrowthSource interface {
	Summary(ctx context.Context, id uuid.UUID, asOf time.Time) (*growth.Summary, error)
	Insight(ctx context.Context, id uuid.UUID, m growth.Metric) (growth.Insight, error)
}

type ScreeningSource interface {
	Results(ctx context.Context, profileID uuid.UUID) ([]screening.Result, error)
	Assessment(ctx context.Context, profileID uuid.UUID, stageID string) (*screening.Assessment, error)
}

// Content is everything a report shows.
type Content struct {
	GeneratedAt time.Time
	Summary     growth.Summary
	Insights    []growth.Insight
	Assessments []screening.Assessment
}

type Service struct {
	growth    GrowthSource
	screening ScreeningSource
	tgClient  TelegramClient
	chatID    int64
	fontPaths []string
	logger    zerolog.Logger

	render func(lines []Line) ([]byte, error)
}

// NewService builds the report service. tg may be nil, in which case reports
// can be rendered but not delivered.
func NewService(gs GrowthSource, ss ScreeningSource, tg TelegramClient, chatID int64, fontPath string, logger zerolog.Logger) *Service {
	s := &Service{
		growth:    gs,
		screening: ss,
		tgClient:  tg,
		chatID:    chatID,
		fontPaths: fontCandidates(fontPath),
		logger:    logger,
	}
	s.render = s.renderPDF
	return s
}

func (s *Service) Collect(ctx context.Context, profileID uuid.UUID, now time.Time) (*Content, error) {
	sum, err := s.growth.Summary(ctx, profileID, now)
	if err != nil {
		return nil, err
	}

	c := &Content{GeneratedAt: now, Summary: *sum}
	for _, m := range []growth.Metric{growth.MetricHeight, growth.MetricWeight, growth.MetricHead} {
		ins, err := s.growth.Insight(ctx, profileID, m)
		if err != nil {
			return nil, fmt.Errorf("%s insight: %w", m, err)
		}
		c.Insights = append(c.Insights, ins)
	}

	results, err := s.screening.Results(ctx, profileID)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	for _, r := range results {
		a, err := s.screening.Assessment(ctx, profileID, r.StageID)
		if err != nil {
			return nil, fmt.Errorf("assessment %s: %w", r.StageID, err)
		}
		c.Assessments = append(c.Assessments, *a)
	}
	return c, nil
}

// Render produces the PDF for a profile.
func (s *Service) Render(ctx context.Context, profileID uuid.UUID) ([]byte, error) {
	c, err := s.Collect(ctx, profileID, time.Now())
	if err != nil {
		return nil, err
	}
	return s.render(BuildLines(*c))
}

// Send renders the report, uploads it to the configured chat and follows it
// with a short text summary.
func (s *Service) Send(ctx context.Context, profileID uuid.UUID) error {
	if s.tgClient == nil || s.chatID == 0 {
		return ErrDeliveryDisabled
	}
	c, err := s.Collect(ctx, profileID, time.Now())
	if err != nil {
		return err
	}
	pdf, err := s.render(BuildLines(*c))
	if err != nil {
		return err
	}

	fileName := fmt.Sprintf("growth_report_%s.pdf", c.GeneratedAt.Format("20060102"))
	caption := fmt.Sprintf("%s 성장 리포트", c.Summary.Profile.Name)
	if err := s.tgClient.SendDocument(ctx, s.chatID, pdf, fileName, caption); err != nil {
		s.logger.Error().Err(err).Str("profile_id", profileID.String()).Msg("failed to send report")
		return err
	}
	if err := s.tgClient.SendMessage(ctx, s.chatID, SummaryText(*c)); err != nil {
		s.logger.Error().Err(err).Str("profile_id", profileID.String()).Msg("failed to send report summary")
		return err
	}
	s.logger.Info().Str("profile_id", profileID.String()).Int64("chat_id", s.chatID).Msg("report sent")
	return nil
}

func fontCandidates(configured string) []string {
	paths := []string{
		"/usr/share/fonts/truetype/nanum/NanumGothic.ttf",
		"/usr/share/fonts/nanum/NanumGothic.ttf",
		"/usr/share/fonts/TTF/NanumGothic.ttf",
	}
	if configured != "" {
		paths = append([]string{configured}, paths...)
	}
	return paths
}

func (s *Service) renderPDF(lines []Line) ([]byte, error) {
	pdf := gopdf.GoPdf{}
	pdf.Start(gopdf.Config{PageSize: *gopdf.PageSizeA4})
	pdf.AddPage()

	var fontErr error
	fontLoaded := false
	for _, path := range s.fontPaths {
		if err := pdf.AddTTFFont("report", path); err == nil {
			s.logger.Debug().Str("path", path).Msg("loaded report font")
			fontLoaded = true
			break
		} else {
			fontErr = err
		}
	}
	if !fontLoaded {
		return nil, fmt.Errorf("failed to load a Korean font for the PDF (set REPORT_FONT_PATH): %w", fontErr)
	}

	const (
		left   = 40.0
		width  = 515.0
		bottom = 800.0
	)
	pdf.SetLeftMargin(left)
	pdf.SetY(40)

	for _, l := range lines {
		if err := pdf.SetFont("report", "", l.Size); err != nil {
			return nil, err
		}
		wrapped := []string{""}
		if l.Text != "" {
			var err error
			if wrapped, err = pdf.SplitText(l.Text, width); err != nil {
				return nil, err
			}
		}
		for _, w := range wrapped {
			if pdf.GetY()+l.Size > bottom {
				pdf.AddPage()
				pdf.SetY(40)
			}
			pdf.SetX(left)
			if err := pdf.Cell(nil, w); err != nil {
				return nil, err
			}
			pdf.Br(l.Size + 4)
		}
		pdf.Br(l.Gap)
	}

	var buf bytes.Buffer
	if _, err := pdf.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write PDF: %w", err)
	}
	return buf.Bytes(), nil
}
