package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/qrmenu/go-catalog-backend/internal/domain"
)

func TestCreateVenue_GetVenue_Roundtrip(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	v := &domain.Venue{ID: "v1", Name: "Çiya Sofrası", City: "İstanbul", District: "Kadıköy"}
	if err := CreateVenue(ctx, db, v); err != nil {
		t.Fatalf("create: %v", err)
	}
	if v.CreatedAt.IsZero() || v.UpdatedAt.IsZero() {
		t.Fatalf("timestamps not set: %+v", v)
	}

	got, err := GetVenue(ctx, db, "v1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "Çiya Sofrası" || got.ItemCount != 0 || got.LastSyncedAt != nil {
		t.Fatalf("unexpected venue: %+v", got)
	}
}

func TestGetVenue_Missing_ReturnsNotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := GetVenue(context.Background(), db, "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListVenuesPage_And_Count(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	for _, id := range []string{"v1", "v2", "v3"} {
		if err := CreateVenue(ctx, db, &domain.Venue{ID: id, Name: "N " + id}); err != nil {
			t.Fatalf("create %s: %v", id, err)
		}
	}

	total, err := CountVenues(ctx, db)
	if err != nil || total != 3 {
		t.Fatalf("count = (%d, %v), want 3", total, err)
	}

	page, err := ListVenuesPage(ctx, db, 0, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("expected 2 venues, got %d", len(page))
	}

	rest, err := ListVenuesPage(ctx, db, 2, 2)
	if err != nil || len(rest) != 1 {
		t.Fatalf("expected 1 venue on second page, got (%d, %v)", len(rest), err)
	}
}

func TestTouchVenueSync_SetsTimestamp(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if err := CreateVenue(ctx, db, &domain.Venue{ID: "v1", Name: "N"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	now := time.Now().UTC().Truncate(time.Second)
	if err := TouchVenueSync(ctx, db, "v1", now); err != nil {
		t.Fatalf("touch: %v", err)
	}

	got, err := GetVenue(ctx, db, "v1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.LastSyncedAt == nil || !got.LastSyncedAt.Equal(now) {
		t.Fatalf("last_synced_at = %v, want %v", got.LastSyncedAt, now)
	}
}

func TestTouchVenueSync_Missing_ReturnsNotFound(t *testing.T) {
	db := newTestDB(t)

	err := TouchVenueSync(context.Background(), db, "nope", time.Now().UTC())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSetVenueItemCount_Overwrites(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if err := CreateVenue(ctx, db, &domain.Venue{ID: "v1", Name: "N"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := SetVenueItemCount(ctx, db, "v1", 7); err != nil {
		t.Fatalf("set count: %v", err)
	}
	got, _ := GetVenue(ctx, db, "v1")
	if got.ItemCount != 7 {
		t.Fatalf("item_count = %d, want 7", got.ItemCount)
	}
	// Full overwrite, not increment.
	if err := SetVenueItemCount(ctx, db, "v1", 2); err != nil {
		t.Fatalf("set count: %v", err)
	}
	got, _ = GetVenue(ctx, db, "v1")
	if got.ItemCount != 2 {
		t.Fatalf("item_count = %d, want 2", got.ItemCount)
	}
}
