// Package bridge is the sole write path into the Photos application. Every
// mutation goes through AppleScript automation of the running app, one call
// at a time: the automation surface is a single-instance GUI target and is
// not safe to drive concurrently. Calls are slow (hundreds of milliseconds
// each) and there is no batch or transactional primitive.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrNotRunning indicates the Photos application is not available for
// automation calls.
var ErrNotRunning = errors.New("Photos is not running")

// Runner executes an AppleScript and returns its stdout.
type Runner interface {
	Run(ctx context.Context, script string) (string, error)
}

// Photos is the automation client. All calls are funneled through a FIFO
// queue so no two scripts ever execute concurrently, regardless of how many
// callers issue operations.
type Photos struct {
	runner Runner
	queue  *Queue
}

// NewPhotos creates a client that executes scripts through osascript.
// callDelay is an optional pause between consecutive calls, to avoid
// overwhelming the automation target.
func NewPhotos(osascriptPath string, callDelay time.Duration) *Photos {
	return NewPhotosWithRunner(&osascriptRunner{path: osascriptPath}, callDelay)
}

// NewPhotosWithRunner creates a client with a custom script runner.
func NewPhotosWithRunner(runner Runner, callDelay time.Duration) *Photos {
	return &Photos{
		runner: runner,
		queue:  NewQueue(callDelay),
	}
}

// Close stops the call queue. Pending operations fail with a closed-queue
// error.
func (p *Photos) Close() {
	p.queue.Stop()
}

// run executes a script through the serialized queue.
func (p *Photos) run(ctx context.Context, name, script string) (string, error) {
	return p.queue.Do(ctx, name, func(ctx context.Context) (string, error) {
		return p.runner.Run(ctx, script)
	})
}

// EnsureRunning launches Photos if needed and waits until it responds to
// automation. Must be awaited before the first call of any mutation sequence.
func (p *Photos) EnsureRunning(ctx context.Context) error {
	_, err := p.run(ctx, "ensure running", scriptEnsureRunning())
	if err != nil {
		return fmt.Errorf("could not ensure Photos is running: %w", err)
	}
	return nil
}

// GetKeywords returns the keywords on a single media item.
func (p *Photos) GetKeywords(ctx context.Context, itemID string) ([]string, error) {
	out, err := p.run(ctx, "get keywords", scriptGetKeywords(itemID))
	if err != nil {
		return nil, fmt.Errorf("could not get keywords: %w", err)
	}
	return parseKeywordLines(out), nil
}

// SetKeywords replaces the keywords on a single media item.
func (p *Photos) SetKeywords(ctx context.Context, itemID string, keywords []string) error {
	if _, err := p.run(ctx, "set keywords", scriptSetKeywords(itemID, keywords)); err != nil {
		return fmt.Errorf("could not set keywords: %w", err)
	}
	return nil
}

// AddKeywords adds keywords to a media item, skipping any it already has.
// The skip happens inside the script so the call is idempotent even when the
// caller's view of the item is stale.
func (p *Photos) AddKeywords(ctx context.Context, itemID string, keywords []string) error {
	if len(keywords) == 0 {
		return nil
	}
	if _, err := p.run(ctx, "add keywords", scriptAddKeywords(itemID, keywords)); err != nil {
		return fmt.Errorf("could not add keywords: %w", err)
	}
	return nil
}

// RemoveKeywords removes keywords from a media item. Removing a keyword the
// item does not have is a no-op.
func (p *Photos) RemoveKeywords(ctx context.Context, itemID string, keywords []string) error {
	if len(keywords) == 0 {
		return nil
	}
	if _, err := p.run(ctx, "remove keywords", scriptRemoveKeywords(itemID, keywords)); err != nil {
		return fmt.Errorf("could not remove keywords: %w", err)
	}
	return nil
}

// AddToAlbum adds a media item to an album. Photos itself does not guarantee
// idempotence here; callers guard against duplicate adds.
func (p *Photos) AddToAlbum(ctx context.Context, albumID, itemID string) error {
	if _, err := p.run(ctx, "add to album", scriptAddToAlbum(albumID, itemID)); err != nil {
		return fmt.Errorf("could not add to album: %w", err)
	}
	return nil
}

// RemoveFromAlbum removes a media item from an album. Photos may error when
// the item is not a member.
func (p *Photos) RemoveFromAlbum(ctx context.Context, albumID, itemID string) error {
	if _, err := p.run(ctx, "remove from album", scriptRemoveFromAlbum(albumID, itemID)); err != nil {
		return fmt.Errorf("could not remove from album: %w", err)
	}
	return nil
}

// CreateAlbum creates a new album and returns its identifier.
func (p *Photos) CreateAlbum(ctx context.Context, name string) (string, error) {
	out, err := p.run(ctx, "create album", scriptCreateAlbum(name))
	if err != nil {
		return "", fmt.Errorf("could not create album: %w", err)
	}
	id := strings.TrimSpace(out)
	if id == "" {
		return "", errors.New("create album returned no identifier")
	}
	return id, nil
}

// RenameAlbum changes an album's title.
func (p *Photos) RenameAlbum(ctx context.Context, albumID, title string) error {
	if _, err := p.run(ctx, "rename album", scriptRenameAlbum(albumID, title)); err != nil {
		return fmt.Errorf("could not rename album: %w", err)
	}
	return nil
}

// DeleteAlbum deletes an album container. The items in it stay in the
// library.
func (p *Photos) DeleteAlbum(ctx context.Context, albumID string) error {
	if _, err := p.run(ctx, "delete album", scriptDeleteAlbum(albumID)); err != nil {
		return fmt.Errorf("could not delete album: %w", err)
	}
	return nil
}

// parseKeywordLines splits linefeed-delimited script output into keywords.
func parseKeywordLines(out string) []string {
	var keywords []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			keywords = append(keywords, line)
		}
	}
	return keywords
}
