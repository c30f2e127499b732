package render

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

// fakeSession simulates a page whose content grows in response to
// scroll steps.
type fakeSession struct {
	// growthSteps is how many scroll steps still produce new content.
	growthSteps int

	// everChanging makes every snapshot unique, simulating live content.
	everChanging bool

	// scrollErr, when set, is returned by ScrollStep.
	scrollErr error

	scrolls   int
	snapshots int
	loaded    int
}

func (s *fakeSession) ScrollStep() error {
	if s.scrollErr != nil {
		return s.scrollErr
	}
	s.scrolls++
	if s.loaded < s.growthSteps {
		s.loaded++
	}
	return nil
}

func (s *fakeSession) Snapshot() (string, error) {
	s.snapshots++
	if s.everChanging {
		return fmt.Sprintf("<html><body>tick %d</body></html>", s.snapshots), nil
	}
	return fmt.Sprintf("<html><body>chunks: %d</body></html>", s.loaded), nil
}

func (s *fakeSession) Title() string    { return "Fake Page" }
func (s *fakeSession) FinalURL() string { return "http://example.com/" }
func (s *fakeSession) Close() error     { return nil }

// TestDetectorScrollCount tests the exact scroll accounting: a page
// that grows for three steps with a threshold of two consecutive
// no-change steps sees exactly five scroll attempts.
func TestDetectorScrollCount(t *testing.T) {
	t.Parallel()

	session := &fakeSession{growthSteps: 3}
	detector := NewDetector(
		WithStableSteps(2),
		WithStepTimeout(time.Millisecond),
	)

	verdict, err := detector.Settle(context.Background(), session)
	if err != nil {
		t.Fatalf("Settle() returned error: %v", err)
	}

	if !verdict.Stable {
		t.Error("expected stable verdict")
	}
	if verdict.ScrollSteps != 5 {
		t.Errorf("ScrollSteps = %d, want 5 (3 growth + 2 confirming)", verdict.ScrollSteps)
	}
	if session.scrolls != 5 {
		t.Errorf("session saw %d scrolls, want 5", session.scrolls)
	}
	if verdict.Markup == "" {
		t.Error("verdict should carry the final snapshot")
	}
}

// TestDetectorStaticPage tests that a page with no dynamic content
// stabilizes after just the confirming steps.
func TestDetectorStaticPage(t *testing.T) {
	t.Parallel()

	session := &fakeSession{growthSteps: 0}
	detector := NewDetector(
		WithStableSteps(2),
		WithStepTimeout(time.Millisecond),
	)

	verdict, err := detector.Settle(context.Background(), session)
	if err != nil {
		t.Fatalf("Settle() returned error: %v", err)
	}

	if !verdict.Stable {
		t.Error("expected stable verdict")
	}
	if verdict.ScrollSteps != 2 {
		t.Errorf("ScrollSteps = %d, want 2", verdict.ScrollSteps)
	}
}

// TestDetectorStepCap tests that perpetually changing content is cut
// off at the scroll cap with an unstable verdict, not an error.
func TestDetectorStepCap(t *testing.T) {
	t.Parallel()

	session := &fakeSession{everChanging: true}
	detector := NewDetector(
		WithStableSteps(2),
		WithMaxScrollSteps(4),
		WithStepTimeout(time.Millisecond),
	)

	verdict, err := detector.Settle(context.Background(), session)
	if err != nil {
		t.Fatalf("Settle() returned error: %v", err)
	}

	if verdict.Stable {
		t.Error("expected unstable verdict for perpetually changing content")
	}
	if verdict.ScrollSteps != 4 {
		t.Errorf("ScrollSteps = %d, want the cap of 4", verdict.ScrollSteps)
	}
	if verdict.Markup == "" {
		t.Error("unstable verdict should still carry a best-effort snapshot")
	}
}

// TestDetectorDeadlineWins tests that the per-page deadline terminates
// the protocol regardless of fingerprint changes, degrading to a
// best-effort snapshot instead of an error.
func TestDetectorDeadlineWins(t *testing.T) {
	t.Parallel()

	session := &fakeSession{everChanging: true}
	detector := NewDetector(
		WithStableSteps(2),
		WithMaxScrollSteps(10000),
		WithStepTimeout(50*time.Millisecond),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Millisecond)
	defer cancel()

	start := time.Now()
	verdict, err := detector.Settle(ctx, session)
	elapsed := time.Since(start)

	if err != nil {
		t.Fatalf("Settle() returned error: %v", err)
	}
	if verdict.Stable {
		t.Error("expected unstable verdict after deadline")
	}
	if verdict.Markup == "" {
		t.Error("deadline expiry should still return the last good snapshot")
	}
	// Generous slack: the point is termination near the deadline, not
	// after thousands of step timeouts.
	if elapsed > time.Second {
		t.Errorf("Settle() took %s, expected termination near the 120ms deadline", elapsed)
	}
}

// TestDetectorScrollError tests that a genuine session failure outside
// the deadline is surfaced as an error.
func TestDetectorScrollError(t *testing.T) {
	t.Parallel()

	session := &fakeSession{scrollErr: errors.New("tab crashed")}
	detector := NewDetector(WithStepTimeout(time.Millisecond))

	if _, err := detector.Settle(context.Background(), session); err == nil {
		t.Fatal("expected error from failing scroll step")
	}
}

// TestParseCookieHeader tests cookie-header parsing for site profiles.
func TestParseCookieHeader(t *testing.T) {
	t.Parallel()

	cookies := ParseCookieHeader("session=abc123; theme=dark; malformed; =novalue")
	if len(cookies) != 2 {
		t.Fatalf("expected 2 cookies, got %d: %v", len(cookies), cookies)
	}
	if cookies[0].Name != "session" || cookies[0].Value != "abc123" {
		t.Errorf("first cookie = %+v, want session=abc123", cookies[0])
	}
	if cookies[1].Name != "theme" || cookies[1].Value != "dark" {
		t.Errorf("second cookie = %+v, want theme=dark", cookies[1])
	}
}
