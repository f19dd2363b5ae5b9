package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/qrmenu/go-catalog-backend/internal/domain"
	"github.com/qrmenu/go-catalog-backend/internal/repo"
)

func TestCreateVenue_TitleCasesFields(t *testing.T) {
	db := newSvcDB(t)
	svc := &VenueService{DB: db}
	ctx := context.Background()

	v, err := svc.CreateVenue(ctx, CreateVenueRequest{
		Name:     "  çiya sofrası ",
		City:     "istanbul",
		District: "kadıköy",
		Address:  " Güneşli Bahçe Sk. 43 ",
		CallerID: "u1",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if v.ID == "" {
		t.Fatalf("id must be generated")
	}
	if v.Name != "Çiya Sofrası" || v.City != "İstanbul" || v.District != "Kadıköy" {
		t.Fatalf("fields must be title-cased with Turkish rules: %+v", v)
	}
	if v.Address != "Güneşli Bahçe Sk. 43" || v.ContributedBy != "u1" {
		t.Fatalf("unexpected venue: %+v", v)
	}

	got, err := repo.GetVenue(ctx, db, v.ID)
	if err != nil || got.Name != "Çiya Sofrası" {
		t.Fatalf("venue not persisted: (%+v, %v)", got, err)
	}
}

func TestCreateVenue_Validation(t *testing.T) {
	db := newSvcDB(t)
	svc := &VenueService{DB: db}
	ctx := context.Background()

	if _, err := svc.CreateVenue(ctx, CreateVenueRequest{Name: "X"}); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
	if _, err := svc.CreateVenue(ctx, CreateVenueRequest{Name: "   ", CallerID: "u1"}); !errors.Is(err, ErrVenueNameRequired) {
		t.Fatalf("expected ErrVenueNameRequired, got %v", err)
	}
}

func TestCreateVenue_DuplicateID(t *testing.T) {
	db := newSvcDB(t)
	svc := &VenueService{DB: db}
	ctx := context.Background()

	if _, err := svc.CreateVenue(ctx, CreateVenueRequest{ID: "v1", Name: "A", CallerID: "u1"}); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := svc.CreateVenue(ctx, CreateVenueRequest{ID: "v1", Name: "B", CallerID: "u1"}); !errors.Is(err, ErrVenueExists) {
		t.Fatalf("expected ErrVenueExists, got %v", err)
	}
}

func TestListVenues_Paging(t *testing.T) {
	db := newSvcDB(t)
	svc := &VenueService{DB: db}
	ctx := context.Background()

	for _, id := range []string{"v1", "v2", "v3"} {
		seedVenue(t, db, id, "V "+id)
	}
	venues, total, err := svc.ListVenues(ctx, 1, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 3 || len(venues) != 2 {
		t.Fatalf("got (%d venues, total %d), want (2, 3)", len(venues), total)
	}
}

func TestStageItem_DefaultsAndValidation(t *testing.T) {
	db := newSvcDB(t)
	svc := &VenueService{DB: db}
	ctx := context.Background()

	seedVenue(t, db, "v1", "Çiya")

	if _, err := svc.StageItem(ctx, StageItemRequest{VenueID: "v1", Name: "X", Price: 10}); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
	if _, err := svc.StageItem(ctx, StageItemRequest{VenueID: "ghost", Name: "X", Price: 10, CallerID: "u1"}); !errors.Is(err, ErrVenueNotFound) {
		t.Fatalf("expected ErrVenueNotFound, got %v", err)
	}

	st, err := svc.StageItem(ctx, StageItemRequest{
		VenueID:  "v1",
		Name:     "  Mercimek Çorbası ",
		Price:    45,
		Currency: " try ",
		RawText:  "MERCIMEK CORBASI 45",
		CallerID: "u1",
	})
	if err != nil {
		t.Fatalf("stage: %v", err)
	}
	if st.ID == "" || st.Name != "Mercimek Çorbası" || st.Currency != "TRY" || st.SubmittedBy != "u1" {
		t.Fatalf("unexpected staging record: %+v", st)
	}

	// Empty currency also falls back to TRY.
	st2, err := svc.StageItem(ctx, StageItemRequest{VenueID: "v1", Name: "Ayran", Price: 25, CallerID: "u1"})
	if err != nil || st2.Currency != "TRY" {
		t.Fatalf("currency default: (%+v, %v)", st2, err)
	}
}

func TestListStaging_OldestFirst(t *testing.T) {
	db := newSvcDB(t)
	svc := &VenueService{DB: db}
	ctx := context.Background()

	seedVenue(t, db, "v1", "Çiya")
	seedStaging(t, db, "s1", "v1", "A", 10)
	// Backdate s0 so it sorts before s1 regardless of insert order.
	seedStaging(t, db, "s0", "v1", "B", 20)
	if err := db.Model(&domain.StagingItem{}).Where("id = ?", "s0").
		Update("created_at", time.Now().UTC().Add(-time.Hour)).Error; err != nil {
		t.Fatalf("backdate: %v", err)
	}

	if _, err := svc.ListStaging(ctx, "ghost", 0, 10); !errors.Is(err, ErrVenueNotFound) {
		t.Fatalf("expected ErrVenueNotFound, got %v", err)
	}
	got, err := svc.ListStaging(ctx, "v1", 0, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 || got[0].ID != "s0" || got[1].ID != "s1" {
		t.Fatalf("expected oldest first, got %+v", got)
	}
}

func TestSweepExpiredStaging(t *testing.T) {
	db := newSvcDB(t)
	svc := &VenueService{DB: db, StagingTTL: time.Hour}
	ctx := context.Background()
	now := time.Now().UTC()

	seedVenue(t, db, "v1", "Çiya")
	seedStaging(t, db, "old1", "v1", "A", 10)
	seedStaging(t, db, "old2", "v1", "B", 10)
	seedStaging(t, db, "fresh", "v1", "C", 10)
	for _, id := range []string{"old1", "old2"} {
		if err := db.Model(&domain.StagingItem{}).Where("id = ?", id).
			Update("created_at", now.Add(-2*time.Hour)).Error; err != nil {
			t.Fatalf("backdate %s: %v", id, err)
		}
	}

	removed, err := svc.SweepExpiredStaging(ctx, now)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if removed != 2 {
		t.Fatalf("removed = %d, want 2", removed)
	}
	if _, err := repo.GetStagingItem(ctx, db, "fresh"); err != nil {
		t.Fatalf("fresh record must survive: %v", err)
	}

	// Idempotent: a second pass removes nothing.
	removed, err = svc.SweepExpiredStaging(ctx, now)
	if err != nil || removed != 0 {
		t.Fatalf("second sweep: (%d, %v), want (0, nil)", removed, err)
	}
}
