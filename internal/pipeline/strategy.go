package pipeline

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/skycastlabs/radarloop/internal/domain"
)

// sourceStrategy is one way of obtaining the region's radar animation.
// Strategies are tried in configured preference order; the chain stops at
// the first animated result, while non-animated results are kept as the
// best effort so far.
type sourceStrategy struct {
	name string
	run  func(ctx context.Context) (domain.AnimationOutput, bool)
}

func (p *Pipeline) strategies(locs []domain.Location, report *domain.RunReport) []sourceStrategy {
	var ss []sourceStrategy
	if p.cfg.AnimationURL != "" {
		ss = append(ss, sourceStrategy{name: "prerendered", run: p.fetchPrerendered})
	}
	if p.cfg.StaticRadarURL != "" {
		ss = append(ss, sourceStrategy{name: "static", run: p.fetchStatic})
	}
	ss = append(ss, sourceStrategy{name: "frames", run: func(ctx context.Context) (domain.AnimationOutput, bool) {
		return p.buildFromFrames(ctx, locs, report)
	}})
	return ss
}

// fetchPrerendered downloads an explicitly configured animation URL. It is
// accepted only when the response content type resolves to an animated
// format; anything else falls through to the next strategy.
func (p *Pipeline) fetchPrerendered(ctx context.Context) (domain.AnimationOutput, bool) {
	data, contentType, err := p.download(ctx, p.cfg.AnimationURL)
	if err != nil {
		p.logger.Warn("prerendered animation fetch failed", "url", p.cfg.AnimationURL, "error", err)
		return domain.AnimationOutput{}, false
	}
	if !isAnimatedContentType(contentType) {
		p.logger.Warn("prerendered animation URL returned a non-animated format",
			"url", p.cfg.AnimationURL,
			"content_type", contentType,
		)
		return domain.AnimationOutput{}, false
	}
	return p.saveAnimated(data, contentType)
}

// fetchStatic downloads the configured "latest image" radar URL. Some
// services serve an animated GIF here, in which case it counts as a full
// animation; a plain still is kept as a degraded result while the chain
// continues.
func (p *Pipeline) fetchStatic(ctx context.Context) (domain.AnimationOutput, bool) {
	data, contentType, err := p.download(ctx, p.cfg.StaticRadarURL)
	if err != nil {
		p.logger.Warn("static radar fetch failed", "url", p.cfg.StaticRadarURL, "error", err)
		return domain.AnimationOutput{}, false
	}
	if isAnimatedContentType(contentType) {
		return p.saveAnimated(data, contentType)
	}

	path := filepath.Join(p.cfg.OutputDir, fmt.Sprintf("radar_%s_latest%s", p.cfg.Region, extForContentType(contentType)))
	if err := p.writeOutput(path, data); err != nil {
		p.logger.Warn("write static radar image", "path", path, "error", err)
		return domain.AnimationOutput{}, false
	}
	return domain.AnimationOutput{FramePaths: []string{path}}, true
}

func (p *Pipeline) saveAnimated(data []byte, contentType string) (domain.AnimationOutput, bool) {
	path := filepath.Join(p.cfg.OutputDir, "radar_"+p.cfg.Region+extForContentType(contentType))
	if err := p.writeOutput(path, data); err != nil {
		p.logger.Warn("write animation", "path", path, "error", err)
		return domain.AnimationOutput{}, false
	}

	out := domain.AnimationOutput{Success: true}
	if strings.HasPrefix(contentType, "video/") {
		out.VideoPath = path
	} else {
		out.GIFPath = path
	}
	return out, true
}

func (p *Pipeline) download(ctx context.Context, url string) (data []byte, contentType string, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("create request: %w", err)
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("status %d", resp.StatusCode)
	}
	data, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("read body: %w", err)
	}
	return data, resp.Header.Get("Content-Type"), nil
}

func (p *Pipeline) writeOutput(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// isAnimatedContentType reports whether a MIME type names a format that can
// carry multiple frames.
func isAnimatedContentType(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	switch mt {
	case "image/gif", "image/webp", "image/apng":
		return true
	}
	return strings.HasPrefix(mt, "video/")
}

func extForContentType(contentType string) string {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ".bin"
	}
	switch mt {
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	case "image/apng", "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "video/mp4":
		return ".mp4"
	case "video/webm":
		return ".webm"
	default:
		if exts, _ := mime.ExtensionsByType(mt); len(exts) > 0 {
			return exts[0]
		}
		return ".bin"
	}
}
