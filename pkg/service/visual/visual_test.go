package visual_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/NofaBC/TechSupport-AI/pkg/domain/types"
	"github.com/NofaBC/TechSupport-AI/pkg/service/visual"
	"github.com/m-mizutani/gt"
)

func TestCreateSession(t *testing.T) {
	svc := visual.New(visual.WithBaseURL("https://support.example.com"))
	ctx := context.Background()

	session, err := svc.CreateSession(ctx, "t1", "case-1", types.VisualModeScreen, 0)
	gt.NoError(t, err)
	gt.Equal(t, session.Status, types.VisualSessionPending)
	gt.Bool(t, session.Token != "").True()
	gt.Bool(t, strings.HasPrefix(session.JoinURL, "https://support.example.com/join/")).True()
	gt.Bool(t, session.ExpiresAt.After(time.Now())).True()
}

func TestCreateSessionRejectsBadMode(t *testing.T) {
	svc := visual.New()
	_, err := svc.CreateSession(context.Background(), "t1", "case-1", types.VisualMode("hologram"), 0)
	gt.Error(t, err)
}

func TestSessionLifecycle(t *testing.T) {
	svc := visual.New()
	ctx := context.Background()

	session, err := svc.CreateSession(ctx, "t1", "case-1", types.VisualModeCamera, time.Hour)
	gt.NoError(t, err)

	active, err := svc.UpdateStatus(ctx, "t1", session.ID, types.VisualSessionActive)
	gt.NoError(t, err)
	gt.Equal(t, active.Status, types.VisualSessionActive)

	ended, err := svc.UpdateStatus(ctx, "t1", session.ID, types.VisualSessionEnded)
	gt.NoError(t, err)
	gt.Equal(t, ended.Status, types.VisualSessionEnded)

	// Ended is terminal
	_, err = svc.UpdateStatus(ctx, "t1", session.ID, types.VisualSessionActive)
	gt.Error(t, err)
}

func TestSessionExpiresOnRead(t *testing.T) {
	current := time.Now()
	svc := visual.New(visual.WithClock(func() time.Time { return current }))
	ctx := context.Background()

	session, err := svc.CreateSession(ctx, "t1", "case-1", types.VisualModeScreen, time.Minute)
	gt.NoError(t, err)

	current = current.Add(2 * time.Minute)
	got, err := svc.GetSession(ctx, "t1", session.ID)
	gt.NoError(t, err)
	gt.Equal(t, got.Status, types.VisualSessionExpired)
}

func TestSessionConcurrentGetAndUpdate(t *testing.T) {
	svc := visual.New()
	ctx := context.Background()

	session, err := svc.CreateSession(ctx, "t1", "case-1", types.VisualModeScreen, time.Hour)
	gt.NoError(t, err).Required()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for range 200 {
			got, err := svc.GetSession(ctx, "t1", session.ID)
			gt.NoError(t, err)
			gt.Bool(t, got.Status == types.VisualSessionPending ||
				got.Status == types.VisualSessionActive ||
				got.Status == types.VisualSessionEnded).True()
		}
	}()
	go func() {
		defer wg.Done()
		_, err := svc.UpdateStatus(ctx, "t1", session.ID, types.VisualSessionActive)
		gt.NoError(t, err)
		_, err = svc.UpdateStatus(ctx, "t1", session.ID, types.VisualSessionEnded)
		gt.NoError(t, err)
	}()
	wg.Wait()
}

func TestSessionTenantScoped(t *testing.T) {
	svc := visual.New()
	ctx := context.Background()

	session, err := svc.CreateSession(ctx, "t1", "case-1", types.VisualModeScreen, time.Hour)
	gt.NoError(t, err)

	_, err = svc.GetSession(ctx, "t2", session.ID)
	gt.Error(t, err)
}
