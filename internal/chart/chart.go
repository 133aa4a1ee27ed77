package chart

import (
	"bytes"
	"fmt"
	"os"

	"mestre-tatu/internal/config"
	"mestre-tatu/internal/domain"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/rs/zerolog"
)

const (
	chartWidth  = 1200
	chartHeight = 630
	marginX     = 80.0
	marginTop   = 110.0
	marginBot   = 90.0
)

// The palette mirrors the session dashboard the bot has always shipped.
var barColors = []struct {
	action domain.Action
	label  string
	r      float64
	g      float64
	b      float64
}{
	{domain.ActionDamageDealt, "Dano Causado", 0.827, 0.184, 0.184}, // #D32F2F
	{domain.ActionDamageTaken, "Dano Recebido", 1.0, 0.757, 0.027},  // #FFC107
	{domain.ActionHealing, "Cura", 0.298, 0.686, 0.314},             // #4CAF50
}

// Renderer draws the per-session bar chart. It is an optional collaborator:
// without a configured TTF font the bot simply answers text-only.
type Renderer struct {
	font   *truetype.Font
	logger zerolog.Logger
}

func NewRenderer(cfg *config.Config, logger zerolog.Logger) *Renderer {
	r := &Renderer{logger: logger}
	if cfg.ChartFont == "" {
		logger.Info().Msg("CHART_FONT not set, session charts disabled")
		return r
	}

	data, err := os.ReadFile(cfg.ChartFont)
	if err != nil {
		logger.Warn().Err(err).Str("path", cfg.ChartFont).Msg("failed to read chart font, charts disabled")
		return r
	}
	font, err := truetype.Parse(data)
	if err != nil {
		logger.Warn().Err(err).Str("path", cfg.ChartFont).Msg("failed to parse chart font, charts disabled")
		return r
	}

	r.font = font
	logger.Info().Str("path", cfg.ChartFont).Msg("session charts enabled")
	return r
}

// Enabled reports whether chart rendering is available.
func (r *Renderer) Enabled() bool {
	return r.font != nil
}

// SessionChart renders damage dealt, damage taken and healing per player as
// grouped bars and returns the PNG bytes.
func (r *Renderer) SessionChart(summary *domain.SessionSummary) ([]byte, error) {
	if r.font == nil {
		return nil, fmt.Errorf("chart rendering is disabled")
	}
	if len(summary.Players) == 0 {
		return nil, fmt.Errorf("no data to chart")
	}

	dc := gg.NewContext(chartWidth, chartHeight)

	dc.SetRGB(0.118, 0.118, 0.118) // #1E1E1E
	dc.Clear()
	dc.SetRGB(0.169, 0.176, 0.192) // #2B2D31
	dc.DrawRectangle(marginX, marginTop, chartWidth-2*marginX, chartHeight-marginTop-marginBot)
	dc.Fill()

	titleFace := truetype.NewFace(r.font, &truetype.Options{Size: 34})
	labelFace := truetype.NewFace(r.font, &truetype.Options{Size: 20})
	valueFace := truetype.NewFace(r.font, &truetype.Options{Size: 16})

	dc.SetFontFace(titleFace)
	dc.SetRGB(1, 1, 1)
	dc.DrawStringAnchored(
		fmt.Sprintf("Dashboard da Sessão %d", summary.SessionNumber),
		chartWidth/2, marginTop/2, 0.5, 0.5,
	)

	maxVal := 1
	for _, p := range summary.Players {
		for _, c := range barColors {
			if v := p.Totals[c.action]; v > maxVal {
				maxVal = v
			}
		}
	}

	plotW := float64(chartWidth) - 2*marginX
	plotH := float64(chartHeight) - marginTop - marginBot
	groupW := plotW / float64(len(summary.Players))
	barW := groupW / float64(len(barColors)+1)
	baseY := float64(chartHeight) - marginBot

	for i, p := range summary.Players {
		groupX := marginX + float64(i)*groupW + barW/2

		for j, c := range barColors {
			v := p.Totals[c.action]
			h := plotH * float64(v) / float64(maxVal)
			x := groupX + float64(j)*barW

			dc.SetRGB(c.r, c.g, c.b)
			dc.DrawRectangle(x, baseY-h, barW*0.85, h)
			dc.Fill()

			if v > 0 {
				dc.SetFontFace(valueFace)
				dc.SetRGB(1, 1, 1)
				dc.DrawStringAnchored(fmt.Sprintf("%d", v), x+barW*0.42, baseY-h-12, 0.5, 0.5)
			}
		}

		dc.SetFontFace(labelFace)
		dc.SetRGB(0.9, 0.9, 0.9)
		dc.DrawStringAnchored(p.PlayerName, groupX+groupW/2-barW/2, baseY+24, 0.5, 0.5)
	}

	// legend
	legendX := marginX
	legendY := float64(chartHeight) - marginBot/3
	dc.SetFontFace(labelFace)
	for _, c := range barColors {
		dc.SetRGB(c.r, c.g, c.b)
		dc.DrawRectangle(legendX, legendY-8, 16, 16)
		dc.Fill()
		dc.SetRGB(0.9, 0.9, 0.9)
		dc.DrawStringAnchored(c.label, legendX+26, legendY, 0, 0.5)
		w, _ := dc.MeasureString(c.label)
		legendX += 26 + w + 40
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode chart: %w", err)
	}
	return buf.Bytes(), nil
}
