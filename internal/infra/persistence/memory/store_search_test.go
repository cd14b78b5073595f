package memory

import (
	"context"
	"testing"

	"assetcore/pkg/domain"
)

func seedSearchFixtures(t *testing.T, store *Store) {
	t.Helper()
	ctx := context.Background()
	rows := []Record{
		{
			domain.FieldAssetTag:      "IT-1000",
			domain.FieldSerialNumber:  "SN-ALPHA-1",
			domain.FieldCategory:      "Laptop",
			domain.FieldBrand:         "Dell",
			domain.FieldStatus:        string(domain.StatusAvailable),
			domain.FieldPurchasePrice: 1299.5,
		},
		{
			domain.FieldAssetTag:      "IT-1001",
			domain.FieldSerialNumber:  "SN-BETA-2",
			domain.FieldCategory:      "Laptop",
			domain.FieldBrand:         "Lenovo",
			domain.FieldStatus:        string(domain.StatusAssigned),
			domain.FieldAssignedTo:    "e",
			domain.FieldPurchasePrice: 899.0,
		},
		{
			domain.FieldAssetTag:     "IT-1002",
			domain.FieldSerialNumber: "SN-GAMMA-3",
			domain.FieldCategory:     "Monitor",
			domain.FieldBrand:        "Dell",
			domain.FieldStatus:       string(domain.StatusAvailable),
		},
	}
	for _, row := range rows {
		if _, err := store.Insert(ctx, domain.CollectionAssets, row); err != nil {
			t.Fatalf("seed insert: %v", err)
		}
	}
}

func searchTags(t *testing.T, store *Store, filters Record, freeText string) []string {
	t.Helper()
	rows, err := store.Search(context.Background(), domain.CollectionAssets, filters, freeText)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	tags := make([]string, len(rows))
	for i, row := range rows {
		tags[i] = row.String(domain.FieldAssetTag)
	}
	return tags
}

func TestSearchStringFiltersMatchSubstringsCaseInsensitively(t *testing.T) {
	store := newTestStore()
	seedSearchFixtures(t, store)
	tags := searchTags(t, store, Record{domain.FieldBrand: "dell"}, "")
	if len(tags) != 2 || tags[0] != "IT-1000" || tags[1] != "IT-1002" {
		t.Fatalf("brand filter = %v", tags)
	}
	tags = searchTags(t, store, Record{domain.FieldSerialNumber: "beta"}, "")
	if len(tags) != 1 || tags[0] != "IT-1001" {
		t.Fatalf("substring filter = %v", tags)
	}
}

func TestSearchStatusFilterMatchesGetAllSubset(t *testing.T) {
	store := newTestStore()
	seedSearchFixtures(t, store)
	all, err := store.GetAll(context.Background(), domain.CollectionAssets)
	if err != nil {
		t.Fatalf("get all: %v", err)
	}
	var want []string
	for _, row := range all {
		if row.String(domain.FieldStatus) == string(domain.StatusAvailable) {
			want = append(want, row.String(domain.FieldAssetTag))
		}
	}
	got := searchTags(t, store, Record{domain.FieldStatus: "Available"}, "")
	if len(got) != len(want) {
		t.Fatalf("status filter = %v want %v", got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("status filter = %v want %v", got, want)
		}
	}
}

func TestSearchNonStringFiltersMatchExactly(t *testing.T) {
	store := newTestStore()
	seedSearchFixtures(t, store)
	tags := searchTags(t, store, Record{domain.FieldPurchasePrice: 899.0}, "")
	if len(tags) != 1 || tags[0] != "IT-1001" {
		t.Fatalf("exact numeric filter = %v", tags)
	}
	if tags := searchTags(t, store, Record{domain.FieldPurchasePrice: 899.5}, ""); len(tags) != 0 {
		t.Fatalf("near-miss numeric filter = %v", tags)
	}
	// Integer filters normalize to the stored float representation.
	if tags := searchTags(t, store, Record{domain.FieldPurchasePrice: 899}, ""); len(tags) != 1 {
		t.Fatalf("normalized numeric filter = %v", tags)
	}
}

func TestSearchFiltersCombineWithAnd(t *testing.T) {
	store := newTestStore()
	seedSearchFixtures(t, store)
	tags := searchTags(t, store, Record{
		domain.FieldBrand:  "Dell",
		domain.FieldStatus: string(domain.StatusAvailable),
	}, "")
	if len(tags) != 2 {
		t.Fatalf("AND filter = %v", tags)
	}
	tags = searchTags(t, store, Record{
		domain.FieldBrand:    "Dell",
		domain.FieldCategory: "Monitor",
	}, "")
	if len(tags) != 1 || tags[0] != "IT-1002" {
		t.Fatalf("AND filter = %v", tags)
	}
}

func TestSearchFreeTextMatchesAnyColumn(t *testing.T) {
	store := newTestStore()
	seedSearchFixtures(t, store)
	tags := searchTags(t, store, nil, "gamma")
	if len(tags) != 1 || tags[0] != "IT-1002" {
		t.Fatalf("free text = %v", tags)
	}
	tags = searchTags(t, store, Record{domain.FieldBrand: "Dell"}, "laptop")
	if len(tags) != 1 || tags[0] != "IT-1000" {
		t.Fatalf("free text with filters = %v", tags)
	}
	if tags := searchTags(t, store, nil, "absent-token"); len(tags) != 0 {
		t.Fatalf("unmatched free text = %v", tags)
	}
}

func TestSearchRejectsUnknownFilterColumn(t *testing.T) {
	store := newTestStore()
	seedSearchFixtures(t, store)
	if _, err := store.Search(context.Background(), domain.CollectionAssets, Record{"color": "red"}, ""); !isNotFound(err, "column") {
		t.Fatalf("unknown filter column error = %v", err)
	}
	if _, err := store.Search(context.Background(), "inventory", nil, ""); !isNotFound(err, "collection") {
		t.Fatalf("unknown collection error = %v", err)
	}
}
