package repo

import (
	"context"
	"errors"
	"testing"

	"github.com/qrmenu/go-catalog-backend/internal/domain"
)

func TestCreateItem_GetItem_Roundtrip(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	it := &domain.Item{
		ID: "i1", Name: "Adana Kebap", Price: 185.5, Currency: "TRY",
		VenueID: "v1", Status: domain.StatusPending,
		PreviousPrices: []domain.PriceEntry{{Price: 170}},
	}
	if err := CreateItem(ctx, db, it); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := GetItem(ctx, db, "i1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "Adana Kebap" || got.Status != domain.StatusPending {
		t.Fatalf("unexpected item: %+v", got)
	}
	if len(got.PreviousPrices) != 1 || got.PreviousPrices[0].Price != 170 {
		t.Fatalf("price history did not roundtrip: %+v", got.PreviousPrices)
	}
}

func TestGetItem_Missing_ReturnsNotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := GetItem(context.Background(), db, "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSaveItem_PersistsMutations(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	it := &domain.Item{ID: "i1", Name: "A", Price: 10, VenueID: "v1", Status: domain.StatusPending}
	if err := CreateItem(ctx, db, it); err != nil {
		t.Fatalf("create: %v", err)
	}

	it.Status = domain.StatusApproved
	it.ReportCount = 2
	it.PreviousPrices = append(it.PreviousPrices, domain.PriceEntry{Price: 10})
	if err := SaveItem(ctx, db, it); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, _ := GetItem(ctx, db, "i1")
	if got.Status != domain.StatusApproved || got.ReportCount != 2 || len(got.PreviousPrices) != 1 {
		t.Fatalf("mutations not persisted: %+v", got)
	}
}

func TestListItemsByVenue_StatusFilter(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	mk := func(id, venue, status string) {
		if err := CreateItem(ctx, db, &domain.Item{ID: id, Name: id, Price: 1, VenueID: venue, Status: status}); err != nil {
			t.Fatalf("create %s: %v", id, err)
		}
	}
	mk("i1", "v1", domain.StatusApproved)
	mk("i2", "v1", domain.StatusPending)
	mk("i3", "v1", domain.StatusApproved)
	mk("i4", "v2", domain.StatusApproved)

	all, err := ListItemsByVenue(ctx, db, "v1", "", 0, 10)
	if err != nil || len(all) != 3 {
		t.Fatalf("all v1 items = (%d, %v), want 3", len(all), err)
	}

	approved, err := ListItemsByVenue(ctx, db, "v1", domain.StatusApproved, 0, 10)
	if err != nil || len(approved) != 2 {
		t.Fatalf("approved v1 items = (%d, %v), want 2", len(approved), err)
	}

	total, err := CountItemsByVenue(ctx, db, "v1", domain.StatusPending)
	if err != nil || total != 1 {
		t.Fatalf("pending count = (%d, %v), want 1", total, err)
	}
}

func TestCountApprovedItems(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	mk := func(id, venue, status string) {
		if err := CreateItem(ctx, db, &domain.Item{ID: id, Name: id, Price: 1, VenueID: venue, Status: status}); err != nil {
			t.Fatalf("create %s: %v", id, err)
		}
	}
	mk("i1", "v1", domain.StatusApproved)
	mk("i2", "v1", domain.StatusFlagged)
	mk("i3", "v1", domain.StatusApproved)
	mk("i4", "v2", domain.StatusApproved)

	n, err := CountApprovedItems(ctx, db, "v1")
	if err != nil || n != 2 {
		t.Fatalf("approved count = (%d, %v), want 2", n, err)
	}
}

func TestListApprovedItems_Pages(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		if err := CreateItem(ctx, db, &domain.Item{ID: id, Name: id, Price: 1, VenueID: "v1", Status: domain.StatusApproved}); err != nil {
			t.Fatalf("create %s: %v", id, err)
		}
	}
	if err := CreateItem(ctx, db, &domain.Item{ID: "d", Name: "d", Price: 1, VenueID: "v1", Status: domain.StatusRejected}); err != nil {
		t.Fatalf("create d: %v", err)
	}

	first, err := ListApprovedItems(ctx, db, 0, 2)
	if err != nil || len(first) != 2 {
		t.Fatalf("first page = (%d, %v), want 2", len(first), err)
	}
	second, err := ListApprovedItems(ctx, db, 2, 2)
	if err != nil || len(second) != 1 {
		t.Fatalf("second page = (%d, %v), want 1", len(second), err)
	}
}

func TestSearchApprovedItems_AllTermsMustMatch(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	mk := func(id, text, status string) {
		if err := CreateItem(ctx, db, &domain.Item{
			ID: id, Name: id, Price: 1, VenueID: "v1",
			Status: status, SearchableText: text,
		}); err != nil {
			t.Fatalf("create %s: %v", id, err)
		}
	}
	mk("i1", "adana kebap çiya sofrası istanbul kadıköy", domain.StatusApproved)
	mk("i2", "urfa kebap başka yer istanbul", domain.StatusApproved)
	mk("i3", "adana kebap gizli mekan", domain.StatusPending)

	got, err := SearchApprovedItems(ctx, db, "adana kebap", 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 1 || got[0].ID != "i1" {
		t.Fatalf("expected only i1 (all terms, approved only), got %+v", got)
	}

	// Single term hits both approved rows.
	got, err = SearchApprovedItems(ctx, db, "kebap", 10)
	if err != nil || len(got) != 2 {
		t.Fatalf("expected 2 hits for kebap, got (%d, %v)", len(got), err)
	}
}
