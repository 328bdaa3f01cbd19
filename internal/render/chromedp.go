// Package render drives headless Chrome sessions over category listing pages.
package render

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// loadMoreSelector is the class signature of the listing's pagination control.
const loadMoreSelector = "._CONTENT_LIST_LOAD_MORE_BUTTON"

// clickLoadMoreJS activates the pagination control when present and reports
// whether a click happened, so an absent control ends the loop without a wait.
const clickLoadMoreJS = `(function() {
	var btn = document.querySelector("` + loadMoreSelector + `");
	if (!btn) { return false; }
	btn.click();
	return true;
})()`

// Config controls the listing renderer.
type Config struct {
	UserAgent   string
	NavTimeout  time.Duration
	MaxLoadMore int
	SettleDelay time.Duration
	ExecPath    string
}

func (c Config) withDefaults() Config {
	if c.NavTimeout <= 0 {
		c.NavTimeout = 25 * time.Second
	}
	if c.MaxLoadMore <= 0 {
		c.MaxLoadMore = 10
	}
	if c.SettleDelay <= 0 {
		c.SettleDelay = time.Second
	}
	return c
}

// ChromedpRenderer implements news.Renderer using headless Chrome. One
// browser process is shared; each listing render runs in its own tab.
type ChromedpRenderer struct {
	cfg             Config
	allocatorCancel context.CancelFunc
	browserCtx      context.Context
	browserCancel   context.CancelFunc
	logger          *zap.Logger
}

// NewChromedp launches the shared browser and warms it up.
func NewChromedp(cfg Config, logger *zap.Logger) (*ChromedpRenderer, error) {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ExecPath))
	}

	allocatorCtx, allocatorCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocatorCtx)
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocatorCancel()
		return nil, fmt.Errorf("chromedp warmup: %w", err)
	}

	return &ChromedpRenderer{
		cfg:             cfg,
		allocatorCancel: allocatorCancel,
		browserCtx:      browserCtx,
		browserCancel:   browserCancel,
		logger:          logger,
	}, nil
}

// Close tears down the browser and allocator contexts.
func (r *ChromedpRenderer) Close() {
	if r == nil {
		return
	}
	r.browserCancel()
	r.allocatorCancel()
}

// RenderListing opens the listing URL, exhausts the "load more" control up to
// the configured bound, and returns the final DOM snapshot.
func (r *ChromedpRenderer) RenderListing(ctx context.Context, url string) (string, error) {
	tabCtx, cancelTab := chromedp.NewContext(r.browserCtx)
	defer cancelTab()

	taskCtx, cancelTask := context.WithTimeout(tabCtx, r.cfg.NavTimeout)
	defer cancelTask()

	stopForward := forwardCancel(ctx, cancelTask)
	defer stopForward()

	tasks := chromedp.Tasks{network.Enable()}
	if r.cfg.UserAgent != "" {
		tasks = append(tasks, emulation.SetUserAgentOverride(r.cfg.UserAgent))
	}
	tasks = append(tasks,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
	if err := chromedp.Run(taskCtx, tasks); err != nil {
		return "", fmt.Errorf("navigate %s: %w", url, err)
	}

	clicks, err := r.exhaustPagination(taskCtx)
	if err != nil {
		return "", err
	}
	r.logger.Debug("pagination exhausted", zap.String("url", url), zap.Int("clicks", clicks))

	var html string
	if err := chromedp.Run(taskCtx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("snapshot dom: %w", err)
	}
	return html, nil
}

// exhaustPagination clicks the load-more control until it disappears or the
// bound is reached, pausing after each click so injected items can settle.
func (r *ChromedpRenderer) exhaustPagination(ctx context.Context) (int, error) {
	clicks := 0
	for i := 0; i < r.cfg.MaxLoadMore; i++ {
		var clicked bool
		if err := chromedp.Run(ctx, chromedp.Evaluate(clickLoadMoreJS, &clicked)); err != nil {
			return clicks, fmt.Errorf("click load more: %w", err)
		}
		if !clicked {
			break
		}
		clicks++
		if err := chromedp.Run(ctx, chromedp.Sleep(r.cfg.SettleDelay)); err != nil {
			return clicks, fmt.Errorf("settle wait: %w", err)
		}
	}
	return clicks, nil
}

func forwardCancel(parent context.Context, cancel context.CancelFunc) func() {
	if parent == nil {
		return func() {}
	}
	done := make(chan struct{})
	go func() {
		select {
		case <-parent.Done():
			cancel()
		case <-done:
		}
	}()
	return func() { close(done) }
}
